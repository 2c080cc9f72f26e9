package cmd

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

func TestSiteHandler(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog", "tags", "css"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))
	page := "<h1>css posts</h1>" + strings.Repeat(" ", 2048)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "tags", "css", "index.html"), []byte(page), 0o600))

	srv := httptest.NewServer(newSiteHandler(dir))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/blog/tags/css/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Contains(t, string(body), "css posts")

	resp, err = http.Get(srv.URL + "/empty/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSiteHandlerCompresses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	page := "<h1>jishaal.com</h1>" + strings.Repeat("<p>post</p>", 500)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o600))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()

	newSiteHandler(dir).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, page, string(got))
}

func TestRebuilderDebounces(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	rb := newRebuilder(20*time.Millisecond, func() error {
		builds.Add(1)
		return nil
	}, zerolog.Nop())
	defer rb.stop()

	for range 5 {
		rb.trigger()
	}

	assert.Eventually(t, func() bool { return builds.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), builds.Load())
}

func TestRebuilderStop(t *testing.T) {
	t.Parallel()

	var builds atomic.Int32
	rb := newRebuilder(20*time.Millisecond, func() error {
		builds.Add(1)
		return nil
	}, zerolog.Nop())

	rb.trigger()
	rb.stop()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, builds.Load())
}

func testSiteMap() *model.SiteMap {
	return model.NewSiteMap(
		&model.Route{
			Path: "/blog/2014-07-16-bem/",
			Meta: &model.RouteMeta{
				Title: "Developer Sanity with BEM!",
				Tags:  []string{"css", "bem", "sass"},
				Date:  time.Date(2014, 7, 16, 0, 0, 0, 0, time.UTC),
			},
		},
		&model.Route{
			Path: "/blog/modern-css/",
			Meta: &model.RouteMeta{Title: "Modern CSS", Tags: []string{"css"}},
		},
		&model.Route{Path: "/about/"},
	)
}

func TestPrintTagCounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printTagCounts(&buf, testSiteMap()))

	assert.Equal(t, "bem   1\ncss   2\nsass  1\n", buf.String())
}

func TestPrintTagRoutes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printTagRoutes(&buf, testSiteMap(), "css"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2014-07-16")
	assert.Contains(t, lines[0], "/blog/2014-07-16-bem/")
	assert.Contains(t, lines[1], "/blog/modern-css/")
	assert.Contains(t, lines[1], "Modern CSS")
}
