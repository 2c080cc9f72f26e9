package view

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

//go:embed templates
var embedded embed.FS

const (
	baseLayout = "base"

	layoutIndex = "index.html"
	layoutPost  = "post.html"
	layoutTag   = "tag.html"
	layoutTags  = "tags.html"
)

var (
	sharedFiles = []string{"base.html", "partials/summary.html", "partials/bio.html"}
	pageFiles   = []string{layoutIndex, layoutPost, layoutTag, layoutTags}
)

// pageData is the value every page template executes with.
type pageData struct {
	Site     model.SiteMetadata
	Title    string
	TagsHref string
	Page     any
}

// Renderer executes the page templates. It is safe for concurrent use.
type Renderer struct {
	blogRoot string
	site     model.SiteMetadata
	pages    map[string]*template.Template
}

// NewRenderer parses the embedded templates. Files in layoutsDir with the
// same relative name replace their embedded counterpart; a missing
// layoutsDir is not an error.
func NewRenderer(site model.SiteMetadata, blogRoot, layoutsDir string) (*Renderer, error) {
	templates, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}

	var src fs.FS = templates
	if layoutsDir != "" {
		if info, err := os.Stat(layoutsDir); err == nil && info.IsDir() {
			src = overlayFS{top: os.DirFS(layoutsDir), bottom: templates}
		}
	}

	base := template.New(baseLayout).Funcs(template.FuncMap{
		"formatDate": formatDate,
	})
	for _, name := range sharedFiles {
		if base, err = parseFile(base, src, name); err != nil {
			return nil, err
		}
	}

	r := &Renderer{
		blogRoot: blogRoot,
		site:     site,
		pages:    make(map[string]*template.Template, len(pageFiles)),
	}
	for _, name := range pageFiles {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base layout for %s: %w", name, err)
		}
		if r.pages[name], err = parseFile(t, src, name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func parseFile(t *template.Template, src fs.FS, name string) (*template.Template, error) {
	b, err := fs.ReadFile(src, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file '%s': %w", name, err)
	}
	if _, err := t.New(name).Parse(string(b)); err != nil {
		return nil, fmt.Errorf("failed to parse layout file '%s': %w", name, err)
	}
	return t, nil
}

func (r *Renderer) execute(w io.Writer, layout, title string, page any) error {
	t, ok := r.pages[layout]
	if !ok {
		return fmt.Errorf("layout '%s' not found", layout)
	}
	data := pageData{
		Site:     r.site,
		Title:    title,
		TagsHref: TagsHref(r.blogRoot),
		Page:     page,
	}
	if err := t.ExecuteTemplate(w, baseLayout, data); err != nil {
		return fmt.Errorf("failed to execute template '%s': %w", layout, err)
	}
	return nil
}

// RenderTagPage writes the listing page of a single tag.
func (r *Renderer) RenderTagPage(w io.Writer, p TagPage) error {
	return r.execute(w, layoutTag, p.Heading, p)
}

// RenderTagsPage writes the tags overview.
func (r *Renderer) RenderTagsPage(w io.Writer, p TagsPage) error {
	return r.execute(w, layoutTags, "Tags", p)
}

// RenderIndexPage writes one page of the post index.
func (r *Renderer) RenderIndexPage(w io.Writer, p IndexPage) error {
	title := ""
	if p.Number > 1 {
		title = fmt.Sprintf("Page %d", p.Number)
	}
	return r.execute(w, layoutIndex, title, p)
}

// RenderPostPage writes a single post.
func (r *Renderer) RenderPostPage(w io.Writer, p PostPage) error {
	return r.execute(w, layoutPost, p.Summary.Title, p)
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// overlayFS serves files from top, falling back to bottom.
type overlayFS struct {
	top, bottom fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.top.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.bottom.Open(name)
}
