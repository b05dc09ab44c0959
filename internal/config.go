package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shajara/internal/cache"
	"github.com/starford/shajara/internal/treeservice"
	"github.com/starford/shajara/internal/treeview"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var slugRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app" toml:"app"`
	Sources  SourcesConfig     `yaml:"sources" toml:"sources"`
	SQLite   SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth" toml:"auth"`
	Tree     TreeConfig        `yaml:"tree" toml:"tree"`
	Cache    CacheConfig       `yaml:"cache" toml:"cache"`
	Families []FamilyConfig    `yaml:"families" toml:"families"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Sources.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Tree.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Families))
	for i := range c.Families {
		f := &c.Families[i]
		if err := f.Validate(); err != nil {
			return fmt.Errorf("families[%d]: %w", i, err)
		}
		slug := strings.ToLower(f.Slug)
		if seen[slug] {
			return fmt.Errorf("families[%d]: duplicate slug %q", i, f.Slug)
		}
		seen[slug] = true
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level" toml:"log_level"`
	LogFormat string     `yaml:"log_format" toml:"log_format"`
	HTTP      HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatJSON
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatJSON, LogFormatText)),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourcesConfig holds the path to the directory of GEDCOM files.
type SourcesConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the sources configuration.
func (c *SourcesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// TreeConfig holds tree rendering limits.
type TreeConfig struct {
	DefaultDepth   int  `yaml:"default_depth" toml:"default_depth"`
	MaxDepthLimit  int  `yaml:"max_depth_limit" toml:"max_depth_limit"`
	ExcludePrivate bool `yaml:"exclude_private" toml:"exclude_private"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DefaultDepth, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxDepthLimit, validation.Required, validation.Min(1)),
	); err != nil {
		return err
	}
	if c.DefaultDepth > c.MaxDepthLimit {
		return fmt.Errorf("tree: default_depth %d exceeds max_depth_limit %d", c.DefaultDepth, c.MaxDepthLimit)
	}
	return nil
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	Backend string        `yaml:"backend" toml:"backend"`
	Size    int           `yaml:"size" toml:"size"`
	TTL     time.Duration `yaml:"ttl" toml:"ttl"`
	Redis   RedisConfig   `yaml:"redis" toml:"redis"`
}

// RedisConfig holds the Redis connection used by the "redis" cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = cache.BackendMemory
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(cache.BackendNone, cache.BackendMemory, cache.BackendRedis)),
		validation.Field(&c.Size, validation.Min(0)),
		validation.Field(&c.TTL, validation.Min(time.Duration(0))),
	); err != nil {
		return err
	}
	if c.Backend == cache.BackendRedis {
		return validation.ValidateStruct(&c.Redis,
			validation.Field(&c.Redis.Addr, validation.Required),
			validation.Field(&c.Redis.DB, validation.Min(0)),
		)
	}
	return nil
}

// Options converts the configuration into cache.Options.
func (c *CacheConfig) Options() cache.Options {
	return cache.Options{
		Backend: c.Backend,
		Size:    c.Size,
		Redis: cache.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		},
	}
}

// FamilyConfig binds a URL slug to a root individual inside a source file.
type FamilyConfig struct {
	Slug        string `yaml:"slug" toml:"slug"`
	RootID      string `yaml:"root_id" toml:"root_id"`
	DisplayName string `yaml:"display_name" toml:"display_name"`
	Source      string `yaml:"source" toml:"source"`
}

// Validate validates one family entry.
func (c *FamilyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Slug, validation.Required, validation.Match(slugRe)),
		validation.Field(&c.Source, validation.Required),
	)
}

// ServiceOptions converts the tree and family sections into
// treeservice.Options.
func (c *Config) ServiceOptions() treeservice.Options {
	fams := make([]treeservice.Family, len(c.Families))
	for i, f := range c.Families {
		fams[i] = treeservice.Family{
			Slug:        f.Slug,
			DisplayName: f.DisplayName,
			Source:      f.Source,
			RootID:      f.RootID,
		}
	}
	return treeservice.Options{
		Families:       fams,
		DefaultDepth:   c.Tree.DefaultDepth,
		MaxDepthLimit:  c.Tree.MaxDepthLimit,
		ExcludePrivate: c.Tree.ExcludePrivate,
		CacheTTL:       c.Cache.TTL,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatJSON,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Sources: SourcesConfig{
			Path: "./sources",
		},
		SQLite: SQLiteConfig{
			Path: "./shajara.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Tree: TreeConfig{
			DefaultDepth:   treeview.DefaultMaxDepth,
			MaxDepthLimit:  treeservice.DefaultMaxDepthLimit,
			ExcludePrivate: true,
		},
		Cache: CacheConfig{
			Backend: cache.BackendMemory,
			Size:    cache.DefaultSize,
			TTL:     time.Hour,
		},
	}
}
