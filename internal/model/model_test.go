package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

func TestRouteAccessorsWithoutMeta(t *testing.T) {
	t.Parallel()

	r := &model.Route{Path: "/about/"}

	assert.Empty(t, r.Title())
	assert.Nil(t, r.Tags())
	assert.True(t, r.Date().IsZero())
	assert.False(t, r.HasTag("css"))
}

func TestRouteHasTag(t *testing.T) {
	t.Parallel()

	r := &model.Route{
		Path: "/blog/2014-07-16-bem/",
		Meta: &model.RouteMeta{
			Title: "Developer Sanity with BEM!",
			Tags:  []string{"css", "bem", "sass"},
			Date:  time.Date(2014, 7, 16, 0, 0, 0, 0, time.UTC),
		},
	}

	assert.True(t, r.HasTag("bem"))
	assert.False(t, r.HasTag("BEM"))
	assert.Equal(t, "Developer Sanity with BEM!", r.Title())
}

func TestSiteMapRoutes(t *testing.T) {
	t.Parallel()

	a := &model.Route{Path: "/a"}
	b := &model.Route{Path: "/b"}
	sm := model.NewSiteMap(a, b)
	sm.Pages["/nil"] = nil

	assert.ElementsMatch(t, []*model.Route{a, b}, sm.Routes())

	var empty *model.SiteMap
	assert.Empty(t, empty.Routes())
}
