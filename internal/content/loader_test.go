package content_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jishaal/old.jishaal.com/internal/content"
	"github.com/jishaal/old.jishaal.com/internal/model"
	"github.com/jishaal/old.jishaal.com/internal/tags"
)

const bemPost = `---
title: Developer Sanity with BEM!
tags: [css, bem, sass]
spoiler: A brief look at using BEM methodology with CSS
date: "2014-07-16"
---
# Block Element Modifier

Some *markdown*.

<script>alert("x")</script>
`

const reduxPost = `---
title: "The three ‘R’s, Refactoring, React and Redux for robust async JS"
tags: javascript, redux, react, redux saga
spoiler: The final in a three-part series on frontend developement practices at Xero
date: 2017-01-05T09:30:00Z
---
Body.
`

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()

	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func newLoader(dir string, drafts bool) *content.Loader {
	return content.NewLoader(content.Options{
		Dir:           dir,
		BlogPath:      "/blog",
		IncludeDrafts: drafts,
	}, zerolog.Nop())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "posts/2014-07-16-bem/post.md", bemPost)
	writeFile(t, dir, "posts/2017-01-05-refactoring-react-redux-async/post.md", reduxPost)
	writeFile(t, dir, "about.md", "Hello there.\n")
	writeFile(t, dir, "notes.txt", "ignored")

	sm, posts, err := newLoader(dir, false).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	require.Len(t, sm.Pages, 3)

	bem := sm.Pages["/blog/2014-07-16-bem/"]
	require.NotNil(t, bem)
	assert.Equal(t, "/blog/2014-07-16-bem/", bem.URL.Href)
	assert.Equal(t, "Developer Sanity with BEM!", bem.Title())
	assert.Equal(t, []string{"css", "bem", "sass"}, bem.Tags())
	assert.Equal(t, "A brief look at using BEM methodology with CSS", bem.Meta.Spoiler)
	assert.True(t, time.Date(2014, 7, 16, 0, 0, 0, 0, time.UTC).Equal(bem.Date()))

	redux := sm.Pages["/blog/2017-01-05-refactoring-react-redux-async/"]
	require.NotNil(t, redux)
	assert.Equal(t, []string{"javascript", "redux", "react", "redux saga"}, redux.Tags())
	assert.Equal(t, 2017, redux.Date().Year())

	about := sm.Pages["/about/"]
	require.NotNil(t, about)
	assert.Equal(t, "About", about.Title())
	assert.Empty(t, about.Tags())

	assert.Equal(t,
		[]string{"bem", "css", "javascript", "react", "redux", "redux saga", "sass"},
		tags.Vocabulary(sm))
}

func TestLoadRendersAndSanitizesBody(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "posts/2014-07-16-bem/post.md", bemPost)

	_, posts, err := newLoader(dir, false).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, model.TypePost, post.Type)
	html := string(post.ContentHTML)
	assert.Contains(t, html, `<h1 id="block-element-modifier">Block Element Modifier</h1>`)
	assert.Contains(t, html, "<em>markdown</em>")
	assert.NotContains(t, html, "<script>")
}

func TestLoadDrafts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "posts/wip.md", "---\ntitle: WIP\ndraft: true\n---\nsoon")

	sm, _, err := newLoader(dir, false).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sm.Pages)

	sm, _, err = newLoader(dir, true).Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, sm.Pages, "/blog/wip/")
}

func TestLoadToleratesMalformedTags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "posts/odd.md", "---\ntags:\n  nested: true\n---\nbody")
	writeFile(t, dir, "posts/mixed.md", "---\ntags: [go, 3, \" \"]\n---\nbody")
	writeFile(t, dir, "posts/plain.md", "no frontmatter at all")

	sm, _, err := newLoader(dir, false).Load(context.Background())
	require.NoError(t, err)

	assert.Empty(t, sm.Pages["/blog/odd/"].Tags())
	assert.Equal(t, []string{"go"}, sm.Pages["/blog/mixed/"].Tags())
	assert.Equal(t, "Plain", sm.Pages["/blog/plain/"].Title())
	assert.Equal(t, []string{"go"}, tags.Vocabulary(sm))
}

func TestLoadDuplicateRoute(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "posts/bem.md", "one")
	writeFile(t, dir, "posts/bem/post.md", "two")

	_, _, err := newLoader(dir, false).Load(context.Background())
	require.ErrorIs(t, err, content.ErrDuplicateRoute)
}

func TestLoadMissingDir(t *testing.T) {
	t.Parallel()

	_, _, err := newLoader(filepath.Join(t.TempDir(), "nope"), false).Load(context.Background())
	require.ErrorIs(t, err, content.ErrNoContentDir)
}

func TestLoadCancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "about.md", "hi")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newLoader(dir, false).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "posts/2014-07-16-bem/post.md", bemPost)
	writeFile(t, dir, "about.md", "Hello there.\n")

	sm, _, err := newLoader(dir, false).Load(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, content.WriteSnapshot(&buf, sm))
	assert.Contains(t, buf.String(), "/blog/2014-07-16-bem/:")

	loaded, err := content.LoadSnapshot(&buf)
	require.NoError(t, err)
	require.Len(t, loaded.Pages, 2)

	bem := loaded.Pages["/blog/2014-07-16-bem/"]
	require.NotNil(t, bem)
	assert.Equal(t, "/blog/2014-07-16-bem/", bem.Path)
	assert.Equal(t, []string{"css", "bem", "sass"}, bem.Tags())
	assert.True(t, bem.Date().Equal(sm.Pages["/blog/2014-07-16-bem/"].Date()))
	assert.Equal(t, tags.Vocabulary(sm), tags.Vocabulary(loaded))
}

func TestLoadSnapshotHandwritten(t *testing.T) {
	t.Parallel()

	in := `pages:
  /a:
    meta:
      tags: [css, bem]
  /b:
    url:
      href: /b
  /c:
`
	sm, err := content.LoadSnapshot(bytes.NewBufferString(in))
	require.NoError(t, err)
	require.Len(t, sm.Pages, 3)
	assert.Equal(t, "/a", sm.Pages["/a"].URL.Href)
	assert.Nil(t, sm.Pages["/b"].Meta)
	assert.Equal(t, "/c", sm.Pages["/c"].Path)
	assert.Equal(t, []string{"bem", "css"}, tags.Vocabulary(sm))
}
