// Package config assembles run settings from defaults, an optional YAML
// file, PARHASH_* environment variables, and finally command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"parhash/internal/alg"
	"parhash/internal/pipeline"
)

type Config struct {
	Algorithms      []string `yaml:"algorithms"`
	ChunkSize       int      `yaml:"chunk_size"`
	ChannelSize     int      `yaml:"channel_size"`
	ContinueOnError bool     `yaml:"continue_on_error"`
	FollowSymlinks  bool     `yaml:"follow_symlinks"`
	ShowHeaders     bool     `yaml:"show_headers"`
	Excludes        []string `yaml:"excludes"`
	Output          string   `yaml:"output"`
	Format          string   `yaml:"format"`
	JSON            bool     `yaml:"json"`
	NoProgress      bool     `yaml:"no_progress"`
}

// Default returns the settings a bare invocation runs with. Algorithms has
// no default: the caller must ask for at least one.
func Default() Config {
	return Config{
		ChunkSize:      pipeline.DefaultChunkSize,
		ChannelSize:    pipeline.DefaultChannelSize,
		FollowSymlinks: true,
	}
}

// LoadFile overlays settings from a YAML file onto c.
func LoadFile(path string, c Config) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// LoadEnv overlays PARHASH_* environment variables onto c. A .env file in
// the working directory is honored first.
func LoadEnv(c Config) Config {
	_ = godotenv.Load()

	if v := os.Getenv("PARHASH_ALGORITHMS"); v != "" {
		c.Algorithms = splitList(v)
	}
	c.ChunkSize = envInt("PARHASH_CHUNK_SIZE", c.ChunkSize)
	c.ChannelSize = envInt("PARHASH_CHANNEL_SIZE", c.ChannelSize)
	c.ContinueOnError = envBool("PARHASH_CONTINUE_ON_ERROR", c.ContinueOnError)
	c.FollowSymlinks = envBool("PARHASH_FOLLOW_SYMLINKS", c.FollowSymlinks)
	c.ShowHeaders = envBool("PARHASH_SHOW_HEADERS", c.ShowHeaders)
	c.JSON = envBool("PARHASH_JSON", c.JSON)
	c.NoProgress = envBool("PARHASH_NO_PROGRESS", c.NoProgress)
	if v := os.Getenv("PARHASH_EXCLUDES"); v != "" {
		c.Excludes = splitList(v)
	}
	if v := os.Getenv("PARHASH_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("PARHASH_FORMAT"); v != "" {
		c.Format = v
	}
	return c
}

// Validate checks the assembled configuration and resolves the algorithm
// list.
func (c Config) Validate() ([]alg.Spec, error) {
	if c.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChannelSize <= 0 {
		return nil, fmt.Errorf("channel size must be positive, got %d", c.ChannelSize)
	}
	return alg.ParseList(c.Algorithms)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
