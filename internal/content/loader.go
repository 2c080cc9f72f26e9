// Package content turns a directory of markdown files into a site map.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

// postsDir is the content subdirectory whose files become blog posts.
const postsDir = "posts"

var (
	// ErrNoContentDir is returned when the content directory does not exist.
	ErrNoContentDir = errors.New("content directory not found")

	// ErrDuplicateRoute is returned when two files map to the same route path.
	ErrDuplicateRoute = errors.New("duplicate route path")
)

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Options controls how a Loader maps files to routes.
type Options struct {
	Dir           string
	BlogPath      string
	IncludeDrafts bool
}

// Loader reads markdown content from disk.
type Loader struct {
	opts   Options
	logger zerolog.Logger
	md     goldmark.Markdown
	policy *bluemonday.Policy
	title  cases.Caser
}

// NewLoader returns a Loader with the markdown renderer and sanitizer set up.
func NewLoader(opts Options, logger zerolog.Logger) *Loader {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &Loader{
		opts:   opts,
		logger: logger.With().Str("component", "content").Logger(),
		md:     md,
		policy: policy,
		title:  cases.Title(language.English),
	}
}

// Load walks the content directory and returns the resulting site map
// together with the rendered posts and pages, in walk order.
func (l *Loader) Load(ctx context.Context) (*model.SiteMap, []*model.Post, error) {
	if _, err := os.Stat(l.opts.Dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoContentDir, l.opts.Dir)
	}

	sm := &model.SiteMap{Pages: make(map[string]*model.Route)}
	var posts []*model.Post

	walkErr := filepath.WalkDir(l.opts.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path '%s' during walk: %w", p, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		post, err := l.loadFile(p)
		if err != nil {
			return err
		}
		if post == nil {
			return nil
		}

		if prev, ok := sm.Pages[post.Route.Path]; ok {
			return fmt.Errorf("%w: %s is produced by both %s and %s",
				ErrDuplicateRoute, post.Route.Path, sourceOf(posts, prev), p)
		}
		sm.Pages[post.Route.Path] = post.Route
		posts = append(posts, post)
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("error during content collection walk: %w", walkErr)
	}

	l.logger.Info().Int("routes", len(sm.Pages)).Msg("Content loaded")
	return sm, posts, nil
}

// loadFile returns nil, nil for drafts that are being skipped.
func (l *Loader) loadFile(p string) (*model.Post, error) {
	logger := l.logger.With().Str("path", p).Logger()
	logger.Debug().Msg("Processing file")

	fileBytes, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", p, err)
	}

	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(fileBytes), &fm)
	if err != nil {
		logger.Warn().Err(err).Msg("Could not parse frontmatter, treating as pure markdown")
		body = fileBytes
		fm = nil
	}
	if fm == nil {
		fm = make(map[string]any)
	}

	if draft, _ := fm["draft"].(bool); draft && !l.opts.IncludeDrafts {
		logger.Debug().Msg("Skipping draft")
		return nil, nil
	}

	var buf bytes.Buffer
	if err := l.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML for file '%s': %w", p, err)
	}

	rel, err := filepath.Rel(l.opts.Dir, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get relative path for %s: %w", p, err)
	}
	rel = filepath.ToSlash(rel)

	itemType := model.TypePage
	if strings.HasPrefix(rel, postsDir+"/") {
		itemType = model.TypePost
	}

	routePath := l.permalink(rel, itemType)
	meta := &model.RouteMeta{
		Title:   l.pageTitle(fm, rel),
		Tags:    parseTags(fm["tags"], logger),
		Spoiler: stringField(fm, "spoiler", "summary"),
		Date:    parseDate(fm["date"], logger),
	}

	return &model.Post{
		Route: &model.Route{
			Path: routePath,
			URL:  model.URL{Href: routePath},
			Meta: meta,
		},
		Type:        itemType,
		SourcePath:  p,
		ContentHTML: template.HTML(l.policy.SanitizeBytes(buf.Bytes())),
	}, nil
}

// permalink maps a content-relative file to its route path. Posts live
// under the blog path and take their slug from the enclosing directory
// when the file is a post.md or index.md.
func (l *Loader) permalink(rel, itemType string) string {
	noExt := strings.TrimSuffix(rel, path.Ext(rel))
	base := path.Base(noExt)
	dir := path.Dir(noExt)

	if itemType == model.TypePost {
		slug := base
		if (base == "post" || base == "index") && dir != postsDir {
			slug = path.Base(dir)
		}
		return l.opts.BlogPath + "/" + slug + "/"
	}

	if base == "index" {
		noExt = dir
	}
	if noExt == "." {
		return "/"
	}
	return path.Clean("/"+noExt) + "/"
}

func (l *Loader) pageTitle(fm map[string]any, rel string) string {
	if title := stringField(fm, "title"); title != "" {
		return title
	}
	noExt := strings.TrimSuffix(rel, path.Ext(rel))
	base := path.Base(noExt)
	if base == "post" || base == "index" {
		base = path.Base(path.Dir(noExt))
	}
	return l.title.String(strings.NewReplacer("-", " ", "_", " ").Replace(base))
}

func stringField(fm map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := fm[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// parseTags accepts a list of strings or a comma separated string. Any
// other shape contributes no tags.
func parseTags(raw any, logger zerolog.Logger) []string {
	var tagList []string
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		tagList = strings.Split(v, ",")
	case []string:
		tagList = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				logger.Warn().Interface("tag", item).Msg("Ignoring non-string tag")
				continue
			}
			tagList = append(tagList, s)
		}
	default:
		logger.Warn().Interface("tags", raw).Msg("Ignoring malformed tags")
		return nil
	}

	out := make([]string, 0, len(tagList))
	for _, t := range tagList {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseDate(raw any, logger zerolog.Logger) time.Time {
	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		for _, format := range dateFormats {
			if t, err := time.Parse(format, v); err == nil {
				return t
			}
		}
		logger.Warn().Str("date", v).Msg("Could not parse date, use YYYY-MM-DD or RFC3339")
	}
	return time.Time{}
}

func sourceOf(posts []*model.Post, r *model.Route) string {
	for _, p := range posts {
		if p.Route == r {
			return p.SourcePath
		}
	}
	return "unknown"
}
