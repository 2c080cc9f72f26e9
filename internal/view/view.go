// Package view builds the view trees of the site's pages and renders them
// to HTML.
package view

import (
	"html/template"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/jishaal/old.jishaal.com/internal/model"
	"github.com/jishaal/old.jishaal.com/internal/tags"
)

// TagLink is a link to a tag's listing page.
type TagLink struct {
	Name string
	Href string
}

// ArticleSummary is the short form of a post shown in listings.
type ArticleSummary struct {
	// Key identifies the entry within a list. It is the route path.
	Key     string
	Title   string
	Href    string
	Date    time.Time
	Spoiler string
	Tags    []TagLink
}

// TagPage lists the posts filed under one tag.
type TagPage struct {
	Name    string
	Heading string
	Entries []ArticleSummary
}

// NewTagPage builds the listing for tag name. routes must already be
// filtered to those carrying the tag; they are listed in the given order.
func NewTagPage(name, blogRoot string, routes []*model.Route) TagPage {
	entries := make([]ArticleSummary, 0, len(routes))
	for _, r := range routes {
		entries = append(entries, NewArticleSummary(blogRoot, r))
	}
	return TagPage{
		Name:    name,
		Heading: name + " posts",
		Entries: entries,
	}
}

// NewArticleSummary summarises r for a listing. An untitled route shows its path.
func NewArticleSummary(blogRoot string, r *model.Route) ArticleSummary {
	s := ArticleSummary{
		Key:   r.Path,
		Title: r.Title(),
		Href:  RouteHref(blogRoot, r),
		Date:  r.Date(),
	}
	if s.Title == "" {
		s.Title = r.Path
	}
	if r.Meta != nil {
		s.Spoiler = r.Meta.Spoiler
	}
	for _, t := range r.Tags() {
		s.Tags = append(s.Tags, TagLink{Name: t, Href: TagHref(blogRoot, t)})
	}
	return s
}

// RouteHref returns the link to r. Absolute hrefs are used as is, relative
// ones are resolved against blogRoot.
func RouteHref(blogRoot string, r *model.Route) string {
	href := r.URL.Href
	if href == "" {
		href = r.Path
	}
	if strings.HasPrefix(href, "/") || strings.Contains(href, "://") {
		return href
	}
	joined := path.Join("/", blogRoot, href)
	if strings.HasSuffix(href, "/") {
		joined += "/"
	}
	return joined
}

// TagHref returns the address of tag's listing page.
func TagHref(blogRoot, tag string) string {
	return TagsHref(blogRoot) + tags.Slug(tag) + "/"
}

// TagsHref returns the address of the tags overview page.
func TagsHref(blogRoot string) string {
	return strings.TrimSuffix(blogRoot, "/") + "/tags/"
}

// TagEntry is one row of the tags overview.
type TagEntry struct {
	Name  string
	Href  string
	Count int
}

// TagsPage is the overview of every tag.
type TagsPage struct {
	Tags []TagEntry
}

// NewTagsPage builds the overview from counts, keeping their order.
func NewTagsPage(blogRoot string, counts []tags.TagCount) TagsPage {
	entries := make([]TagEntry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, TagEntry{Name: c.Tag, Href: TagHref(blogRoot, c.Tag), Count: c.Count})
	}
	return TagsPage{Tags: entries}
}

// PostPage is a single post with its body.
type PostPage struct {
	Summary ArticleSummary
	Body    template.HTML
	IsPost  bool
}

// NewPostPage builds the page of a single post or standalone page.
func NewPostPage(blogRoot string, p *model.Post) PostPage {
	return PostPage{
		Summary: NewArticleSummary(blogRoot, p.Route),
		Body:    p.ContentHTML,
		IsPost:  p.Type == model.TypePost,
	}
}

// IndexPage is one page of the paginated post index.
type IndexPage struct {
	Number     int
	TotalPages int
	Href       string
	PrevHref   string
	NextHref   string
	Entries    []ArticleSummary
	Bio        Bio
}

// IndexHref returns the address of index page n, counting from 1.
func IndexHref(n int) string {
	if n <= 1 {
		return "/"
	}
	return "/page/" + strconv.Itoa(n) + "/"
}

// Paginate splits routes into index pages of pageSize entries. At least
// one page is always returned, so an empty site still has a home page.
func Paginate(blogRoot string, routes []*model.Route, pageSize int, bio Bio) []IndexPage {
	if pageSize <= 0 {
		pageSize = len(routes)
	}
	total := 1
	if pageSize > 0 && len(routes) > 0 {
		total = (len(routes) + pageSize - 1) / pageSize
	}

	pages := make([]IndexPage, 0, total)
	for n := 1; n <= total; n++ {
		start := (n - 1) * pageSize
		end := min(start+pageSize, len(routes))

		p := IndexPage{
			Number:     n,
			TotalPages: total,
			Href:       IndexHref(n),
			Entries:    make([]ArticleSummary, 0, end-start),
			Bio:        bio,
		}
		if n > 1 {
			p.PrevHref = IndexHref(n - 1)
		}
		if n < total {
			p.NextHref = IndexHref(n + 1)
		}
		for _, r := range routes[start:end] {
			p.Entries = append(p.Entries, NewArticleSummary(blogRoot, r))
		}
		pages = append(pages, p)
	}
	return pages
}
