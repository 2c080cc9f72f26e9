package content

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

// WriteSnapshot encodes sm as YAML so that a later build can reuse it
// without reading the content directory.
func WriteSnapshot(w io.Writer, sm *model.SiteMap) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sm); err != nil {
		return fmt.Errorf("failed to encode site map: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush site map: %w", err)
	}
	return nil
}

// LoadSnapshot decodes a site map written by WriteSnapshot. Route paths are
// restored from the map keys.
func LoadSnapshot(r io.Reader) (*model.SiteMap, error) {
	var sm model.SiteMap
	if err := yaml.NewDecoder(r).Decode(&sm); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode site map: %w", err)
	}
	if sm.Pages == nil {
		sm.Pages = make(map[string]*model.Route)
	}
	for p, route := range sm.Pages {
		if route == nil {
			route = &model.Route{}
			sm.Pages[p] = route
		}
		route.Path = p
		if route.URL.Href == "" {
			route.URL.Href = p
		}
	}
	return &sm, nil
}
