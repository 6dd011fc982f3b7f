// Package config loads blockflow settings.
//
// Sources are layered in order, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML or YAML file (--config, or blockflow.toml / blockflow.yaml in
//     the working directory)
//  3. BLOCKFLOW_* environment variables, with "__" separating sections:
//     BLOCKFLOW_LAYOUT__NODE_WIDTH=240, BLOCKFLOW_STORE__DRIVER=sqlite
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/matzehuels/blockflow/pkg/cache"
	"github.com/matzehuels/blockflow/pkg/geom"
	"github.com/matzehuels/blockflow/pkg/interaction"
	"github.com/matzehuels/blockflow/pkg/layout"
	"github.com/matzehuels/blockflow/pkg/store"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "BLOCKFLOW_"

// DefaultAddr is the HTTP listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// searchNames are the config files looked up in the working directory when
// no path is given.
var searchNames = []string{"blockflow.toml", "blockflow.yaml", "blockflow.yml"}

// Config is the full application configuration.
type Config struct {
	Layout      layout.Config     `koanf:"layout"`
	Canvas      CanvasConfig      `koanf:"canvas"`
	Interaction InteractionConfig `koanf:"interaction"`
	Cache       CacheConfig       `koanf:"cache"`
	Store       store.Config      `koanf:"store"`
	Server      ServerConfig      `koanf:"server"`
}

// CanvasConfig places the canvas on screen and the root on the canvas.
type CanvasConfig struct {
	Left   float64     `koanf:"left"`
	Top    float64     `koanf:"top"`
	Width  float64     `koanf:"width"`
	Height float64     `koanf:"height"`
	Anchor *geom.Point `koanf:"anchor"`
}

// InteractionConfig holds the drag/attach settings.
type InteractionConfig struct {
	HandleClass    string `koanf:"handle_class"`
	CopyKey        string `koanf:"copy_key"`
	HighlightColor string `koanf:"highlight_color"`
}

// CacheConfig selects the artifact cache. A RedisURL wins over Dir.
type CacheConfig struct {
	Dir      string        `koanf:"dir"`
	RedisURL string        `koanf:"redis_url"`
	TTL      time.Duration `koanf:"ttl"`
	Disabled bool          `koanf:"disabled"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr        string   `koanf:"addr"`
	CORSOrigins []string `koanf:"cors"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultConfig(),
		Canvas: CanvasConfig{
			Width:  interaction.DefaultCanvasWidth,
			Height: interaction.DefaultCanvasHeight,
		},
		Interaction: InteractionConfig{
			HandleClass:    interaction.DefaultHandleClass,
			CopyKey:        interaction.DefaultCopyKey,
			HighlightColor: interaction.DefaultHighlightColor,
		},
		Cache: CacheConfig{TTL: cache.TTLArtifact},
		Store: store.Config{Driver: store.DriverFile},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
	}
}

// Load reads the configuration. An empty path searches the working
// directory; a named path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path == "" {
		path = discover()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps BLOCKFLOW_LAYOUT__NODE_WIDTH to layout.node_width.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func discover() string {
	for _, name := range searchNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Validate checks the values that the packages would otherwise reject later.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas: size must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache: ttl must not be negative")
	}
	switch c.Store.Driver {
	case "", store.DriverFile, store.DriverSQLite, store.DriverMongo:
	default:
		return fmt.Errorf("store: invalid driver %q: must be one of file, sqlite, mongo", c.Store.Driver)
	}
	return nil
}

// InteractionConfig assembles the settings for [interaction.New].
func (c *Config) InteractionConfig() interaction.Config {
	return interaction.Config{
		Layout:         c.Layout,
		HandleClass:    c.Interaction.HandleClass,
		CopyKey:        c.Interaction.CopyKey,
		HighlightColor: c.Interaction.HighlightColor,
		Canvas: geom.Rect{
			Left:   c.Canvas.Left,
			Top:    c.Canvas.Top,
			Width:  c.Canvas.Width,
			Height: c.Canvas.Height,
		},
		RootAnchor: c.Canvas.Anchor,
	}
}
