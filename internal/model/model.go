package model

import (
	"html/template"
	"time"
)

// URL is the public address of a page.
type URL struct {
	Href string `yaml:"href" json:"href"`
}

// RouteMeta holds the optional descriptive metadata of a route.
type RouteMeta struct {
	Title   string    `yaml:"title,omitempty" json:"title,omitempty"`
	Tags    []string  `yaml:"tags,omitempty" json:"tags,omitempty"`
	Spoiler string    `yaml:"spoiler,omitempty" json:"spoiler,omitempty"`
	Date    time.Time `yaml:"date,omitempty" json:"date,omitempty"`
}

// Route is a single addressable content page.
type Route struct {
	Path string     `yaml:"-" json:"-"`
	URL  URL        `yaml:"url" json:"url"`
	Meta *RouteMeta `yaml:"meta,omitempty" json:"meta,omitempty"`
}

// Title returns the route title, or an empty string when the route has no meta.
func (r *Route) Title() string {
	if r == nil || r.Meta == nil {
		return ""
	}
	return r.Meta.Title
}

// Tags returns the route's tag list. A route without meta has no tags.
func (r *Route) Tags() []string {
	if r == nil || r.Meta == nil {
		return nil
	}
	return r.Meta.Tags
}

// Date returns the route's publication date, or the zero time.
func (r *Route) Date() time.Time {
	if r == nil || r.Meta == nil {
		return time.Time{}
	}
	return r.Meta.Date
}

// HasTag reports whether the route is tagged with tag.
func (r *Route) HasTag(tag string) bool {
	for _, t := range r.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// SiteMap maps each route path to its route. Consumers treat it as an
// immutable snapshot.
type SiteMap struct {
	Pages map[string]*Route `yaml:"pages" json:"pages"`
}

// NewSiteMap builds a SiteMap from routes, keyed by their paths.
func NewSiteMap(routes ...*Route) *SiteMap {
	sm := &SiteMap{Pages: make(map[string]*Route, len(routes))}
	for _, r := range routes {
		sm.Pages[r.Path] = r
	}
	return sm
}

// Routes returns every route in the site map. The order is unspecified.
func (sm *SiteMap) Routes() []*Route {
	if sm == nil {
		return nil
	}
	routes := make([]*Route, 0, len(sm.Pages))
	for _, r := range sm.Pages {
		if r == nil {
			continue
		}
		routes = append(routes, r)
	}
	return routes
}

// Content types assigned by the content loader.
const (
	TypePost = "posts"
	TypePage = "page"
)

// Post is a route together with its rendered body.
type Post struct {
	Route       *Route
	Type        string
	SourcePath  string
	ContentHTML template.HTML
}

// SiteMetadata describes the site as a whole.
type SiteMetadata struct {
	Title         string `mapstructure:"title"`
	Author        string `mapstructure:"author"`
	Description   string `mapstructure:"description"`
	IndexPageSize int    `mapstructure:"indexPageSize"`
	Bio           Bio    `mapstructure:"bio"`
}

// Bio holds the author details shown alongside the post index.
type Bio struct {
	AuthorURL   string `mapstructure:"authorURL"`
	Role        string `mapstructure:"role"`
	Employer    string `mapstructure:"employer"`
	EmployerURL string `mapstructure:"employerURL"`
	Blurb       string `mapstructure:"blurb"`
	Location    string `mapstructure:"location"`
	Picture     string `mapstructure:"picture"`
}
