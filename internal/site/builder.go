// Package site writes the complete static site to the output directory.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jishaal/old.jishaal.com/internal/config"
	"github.com/jishaal/old.jishaal.com/internal/content"
	"github.com/jishaal/old.jishaal.com/internal/model"
	"github.com/jishaal/old.jishaal.com/internal/tags"
	"github.com/jishaal/old.jishaal.com/internal/view"
)

// SnapshotFile is the name of the site map snapshot written to the output
// directory on every build.
const SnapshotFile = "sitemap.yaml"

var (
	ErrReservedPath = errors.New("route path is reserved for generated pages")
	ErrTagCollision = errors.New("tags map to the same page")
	ErrInvalidTag   = errors.New("tag has no letters or digits")
	ErrUnsafeOutput = errors.New("refusing to clean output directory")
	ErrOutsideRoot  = errors.New("path escapes the output directory")
)

// Result summarises a finished build.
type Result struct {
	Posts int
	Pages int
	Tags  int
	Files int
}

// Builder generates the site described by a Config.
type Builder struct {
	cfg    config.Config
	logger zerolog.Logger
}

// NewBuilder returns a Builder for cfg. The config is validated on every Build.
func NewBuilder(cfg config.Config, logger zerolog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: logger.With().Str("component", "site").Logger(),
	}
}

// Build regenerates the whole site from scratch.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	cfg := b.cfg
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b.logger.Info().
		Str("output", cfg.OutputDir).
		Str("content", cfg.ContentDir).
		Str("blog", cfg.BlogPath).
		Msg("Starting build")

	renderer, err := view.NewRenderer(cfg.Site, cfg.BlogPath, cfg.LayoutsDir)
	if err != nil {
		return nil, err
	}

	loader := content.NewLoader(content.Options{
		Dir:           cfg.ContentDir,
		BlogPath:      cfg.BlogPath,
		IncludeDrafts: cfg.IncludeDrafts,
	}, b.logger)
	sm, posts, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.checkPaths(sm); err != nil {
		return nil, err
	}
	vocab := tags.Vocabulary(sm)
	if err := checkSlugs(vocab); err != nil {
		return nil, err
	}

	if err := b.prepareOutput(); err != nil {
		return nil, err
	}

	res := &Result{Tags: len(vocab)}
	w := &writer{root: cfg.OutputDir}

	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := renderer.RenderPostPage(&buf, view.NewPostPage(cfg.BlogPath, p)); err != nil {
			return nil, fmt.Errorf("failed to render '%s': %w", p.SourcePath, err)
		}
		if err := w.write(p.Route.Path, buf.Bytes()); err != nil {
			return nil, err
		}
		if p.Type == model.TypePost {
			res.Posts++
		} else {
			res.Pages++
		}
	}

	if err := b.buildIndex(w, renderer, posts); err != nil {
		return nil, err
	}
	if err := b.buildTagPages(ctx, w, renderer, sm, vocab); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := renderer.RenderTagsPage(&buf, view.NewTagsPage(cfg.BlogPath, tags.Counts(sm))); err != nil {
		return nil, err
	}
	if err := w.write(view.TagsHref(cfg.BlogPath), buf.Bytes()); err != nil {
		return nil, err
	}

	buf.Reset()
	if err := content.WriteSnapshot(&buf, sm); err != nil {
		return nil, err
	}
	if err := w.writeFile(SnapshotFile, buf.Bytes()); err != nil {
		return nil, err
	}

	res.Files = int(w.files.Load())
	b.logger.Info().
		Int("posts", res.Posts).
		Int("pages", res.Pages).
		Int("tags", res.Tags).
		Int("files", res.Files).
		Msg("Build completed")
	return res, nil
}

func (b *Builder) buildIndex(w *writer, renderer *view.Renderer, posts []*model.Post) error {
	var routes []*model.Route
	for _, p := range posts {
		if p.Type == model.TypePost {
			routes = append(routes, p.Route)
		}
	}
	tags.SortRoutes(routes)

	pages := view.Paginate(b.cfg.BlogPath, routes, b.cfg.Site.IndexPageSize, view.NewBio(b.cfg.Site))
	for _, page := range pages {
		var buf bytes.Buffer
		if err := renderer.RenderIndexPage(&buf, page); err != nil {
			return fmt.Errorf("failed to render index page %d: %w", page.Number, err)
		}
		if err := w.write(page.Href, buf.Bytes()); err != nil {
			return err
		}
	}
	b.logger.Debug().Int("pages", len(pages)).Msg("Index generated")
	return nil
}

// buildTagPages renders one listing per tag. Tag pages are independent, so
// they are rendered in parallel, bounded by cfg.Concurrency.
func (b *Builder) buildTagPages(ctx context.Context, w *writer, renderer *view.Renderer, sm *model.SiteMap, vocab []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)

	for _, tag := range vocab {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			page := view.NewTagPage(tag, b.cfg.BlogPath, tags.RoutesWithTag(sm, tag))

			var buf bytes.Buffer
			if err := renderer.RenderTagPage(&buf, page); err != nil {
				return fmt.Errorf("failed to render tag '%s': %w", tag, err)
			}
			if err := w.write(view.TagHref(b.cfg.BlogPath, tag), buf.Bytes()); err != nil {
				return err
			}
			b.logger.Debug().Str("tag", tag).Int("posts", len(page.Entries)).Msg("Tag page generated")
			return nil
		})
	}
	return g.Wait()
}

// checkPaths rejects content routes that would be overwritten by a
// generated page.
func (b *Builder) checkPaths(sm *model.SiteMap) error {
	tagsRoot := view.TagsHref(b.cfg.BlogPath)
	for p := range sm.Pages {
		if p == "/" || strings.HasPrefix(p, "/page/") || strings.HasPrefix(p, tagsRoot) {
			return fmt.Errorf("%w: %s", ErrReservedPath, p)
		}
	}
	return nil
}

func checkSlugs(vocab []string) error {
	seen := make(map[string]string, len(vocab))
	for _, tag := range vocab {
		slug := tags.Slug(tag)
		if slug == "" {
			return fmt.Errorf("%w: '%s'", ErrInvalidTag, tag)
		}
		if prev, ok := seen[slug]; ok {
			return fmt.Errorf("%w: '%s' and '%s' both become '%s'", ErrTagCollision, prev, tag, slug)
		}
		seen[slug] = tag
	}
	return nil
}

// prepareOutput empties the output directory and copies the static assets
// into it.
func (b *Builder) prepareOutput() error {
	out := filepath.Clean(b.cfg.OutputDir)
	if out == "." || out == string(filepath.Separator) {
		return fmt.Errorf("%w: '%s'", ErrUnsafeOutput, b.cfg.OutputDir)
	}

	b.logger.Debug().Str("dir", out).Msg("Cleaning output directory")
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", out, err)
	}
	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", out, err)
	}

	if _, err := os.Stat(b.cfg.StaticDir); errors.Is(err, fs.ErrNotExist) {
		b.logger.Debug().Str("dir", b.cfg.StaticDir).Msg("Static assets directory not found, skipping copy")
		return nil
	}
	if err := copyDirContents(b.cfg.StaticDir, out); err != nil {
		return fmt.Errorf("failed to copy static assets: %w", err)
	}
	b.logger.Debug().Str("dir", b.cfg.StaticDir).Msg("Static assets copied")
	return nil
}

// writer writes pages below root. It is safe for concurrent use.
type writer struct {
	root  string
	files atomic.Int64
}

// write stores a page addressed by its URL path as <path>/index.html.
func (w *writer) write(urlPath string, data []byte) error {
	return w.writeFile(path.Join(strings.TrimPrefix(urlPath, "/"), "index.html"), data)
}

func (w *writer) writeFile(rel string, data []byte) error {
	outputPath := filepath.Join(w.root, filepath.FromSlash(rel))
	if r, err := filepath.Rel(filepath.Clean(w.root), outputPath); err != nil || r == "." ||
		r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: '%s'", ErrOutsideRoot, rel)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", outputPath, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}
	w.files.Add(1)
	return nil
}
