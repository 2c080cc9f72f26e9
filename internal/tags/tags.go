// Package tags derives the tag vocabulary of a site map and the routes
// filed under each tag.
package tags

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

// TagCount pairs a tag with the number of routes that carry it.
type TagCount struct {
	Tag   string
	Count int
}

// Vocabulary returns every distinct tag used by any route in sm.
//
// Routes without meta or tags contribute nothing. Tags repeated within a
// single route are counted once. The result is sorted so that equal site
// maps always produce equal slices, whatever their insertion order.
func Vocabulary(sm *model.SiteMap) []string {
	seen := make(map[string]struct{})
	for _, r := range sm.Routes() {
		for _, tag := range r.Tags() {
			seen[tag] = struct{}{}
		}
	}

	vocab := make([]string, 0, len(seen))
	for tag := range seen {
		vocab = append(vocab, tag)
	}
	sort.Strings(vocab)
	return vocab
}

// RoutesWithTag returns the routes of sm tagged with tag, newest first.
// Routes with the same date are ordered by path.
func RoutesWithTag(sm *model.SiteMap, tag string) []*model.Route {
	var routes []*model.Route
	for _, r := range sm.Routes() {
		if r.HasTag(tag) {
			routes = append(routes, r)
		}
	}
	SortRoutes(routes)
	return routes
}

// Index maps every tag in the vocabulary of sm to its routes, as returned
// by RoutesWithTag.
func Index(sm *model.SiteMap) map[string][]*model.Route {
	idx := make(map[string][]*model.Route)
	for _, r := range sm.Routes() {
		for _, tag := range dedup(r.Tags()) {
			idx[tag] = append(idx[tag], r)
		}
	}
	for _, routes := range idx {
		SortRoutes(routes)
	}
	return idx
}

// Counts returns the number of routes per tag, in vocabulary order.
func Counts(sm *model.SiteMap) []TagCount {
	idx := Index(sm)
	counts := make([]TagCount, 0, len(idx))
	for _, tag := range Vocabulary(sm) {
		counts = append(counts, TagCount{Tag: tag, Count: len(idx[tag])})
	}
	return counts
}

// SortRoutes orders routes newest first, falling back to path order.
// Undated routes sort after dated ones.
func SortRoutes(routes []*model.Route) {
	sort.SliceStable(routes, func(i, j int) bool {
		di, dj := routes[i].Date(), routes[j].Date()
		switch {
		case di.Equal(dj):
			return routes[i].Path < routes[j].Path
		case di.IsZero():
			return false
		case dj.IsZero():
			return true
		default:
			return di.After(dj)
		}
	})
}

// Slug turns a tag into a URL path segment: "Redux Saga" becomes "redux-saga".
// Runs of anything other than letters and digits collapse to a single "-",
// so the result never contains a path separator or a dot. A tag with no
// letters or digits has an empty slug.
func Slug(tag string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(tag) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}

func dedup(tags []string) []string {
	if len(tags) < 2 {
		return tags
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
