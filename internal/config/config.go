package config

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/spf13/viper"

	"github.com/jishaal/old.jishaal.com/internal/model"
)

var (
	ErrInvalidPageSize    = errors.New("indexPageSize must be positive")
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
)

type Config struct {
	OutputDir     string             `mapstructure:"outputDir"`
	ContentDir    string             `mapstructure:"contentDir"`
	StaticDir     string             `mapstructure:"staticDir"`
	LayoutsDir    string             `mapstructure:"layoutsDir"`
	BaseURL       string             `mapstructure:"baseURL"`
	BlogPath      string             `mapstructure:"blogPath"`
	IncludeDrafts bool               `mapstructure:"includeDrafts"`
	Concurrency   int                `mapstructure:"concurrency"`
	Log           LogConfig          `mapstructure:"log"`
	Site          model.SiteMetadata `mapstructure:"site"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("outputDir", "public")
	v.SetDefault("contentDir", "content")
	v.SetDefault("staticDir", "static")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("baseURL", "")
	v.SetDefault("blogPath", "/blog")
	v.SetDefault("includeDrafts", false)
	v.SetDefault("concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("site.title", "jishaal.com")
	v.SetDefault("site.author", "Jishaal Kalyan")
	v.SetDefault("site.description", "The personal site of Jishaal Kalyan, a frontend developer from Auckland, New Zealand")
	v.SetDefault("site.indexPageSize", 10)
	v.SetDefault("site.bio.authorURL", "https://twitter.com/jishaal/")
	v.SetDefault("site.bio.role", "Senior Frontend Developer")
	v.SetDefault("site.bio.employer", "Xero")
	v.SetDefault("site.bio.employerURL", "https://xero.com/")
	v.SetDefault("site.bio.blurb", "Passionate about using technology to create delightful experiences for people.")
	v.SetDefault("site.bio.location", "Auckland, New Zealand")
	v.SetDefault("site.bio.picture", "/me.png")
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.BlogPath = NormalizeBlogPath(cfg.BlogPath)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Site.IndexPageSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.Site.IndexPageSize)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidConcurrency, c.Concurrency)
	}
	return nil
}

// NormalizeBlogPath returns p with a leading slash and no trailing slash.
// The site root is represented by the empty string.
func NormalizeBlogPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return ""
	}
	return strings.TrimSuffix(path.Clean("/"+p), "/")
}
