package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/blockflow/internal/config"
	"github.com/matzehuels/blockflow/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   func(dir string) string
	}{
		{
			name: "xdg default",
			want: func(dir string) string { return filepath.Join(dir, "cache", appName) },
		},
		{
			name:   "configured dir",
			config: "[cache]\ndir = \"/var/tmp/blockflow-cache\"\n",
			want:   func(string) string { return "/var/tmp/blockflow-cache" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, dir := newTestCLI(t, tt.config)
			out, err := execute(t, c, "cache", "path")
			if err != nil {
				t.Fatalf("cache path: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want(dir) {
				t.Errorf("cache path = %q, want %q", got, tt.want(dir))
			}
		})
	}
}

func TestCacheClearCommand(t *testing.T) {
	c, dir := newTestCLI(t, "")
	cacheDir := filepath.Join(dir, "cache", appName)

	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"layout:one", "layout:two", "artifact:svg"} {
		if err := fc.Set(ctx, key, []byte("x"), time.Hour); err != nil {
			t.Fatalf("Set(%s): %v", key, err)
		}
	}

	if _, err := execute(t, c, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, hit, _ := fc.Get(ctx, "layout:one"); hit {
		t.Error("entry survived cache clear")
	}

	// clearing an empty cache is fine
	if _, err := execute(t, c, "cache", "clear"); err != nil {
		t.Fatalf("second cache clear: %v", err)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.CacheConfig
		noCache bool
		want    string
	}{
		{"disabled by flag", config.CacheConfig{Dir: dir}, true, "null"},
		{"disabled by config", config.CacheConfig{Dir: dir, Disabled: true}, false, "null"},
		{"file", config.CacheConfig{Dir: dir}, false, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := newCache(ctx, tt.cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache: %v", err)
			}
			defer ch.Close()

			var got string
			switch ch.(type) {
			case cache.NullCache, *cache.NullCache:
				got = "null"
			case *cache.FileCache:
				got = "file"
			}
			if got != tt.want {
				t.Errorf("newCache() = %T, want %s", ch, tt.want)
			}
		})
	}
}
