package mapper

import (
	"fmt"
	"strings"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/syssam/graphmap/dialect"
	"github.com/syssam/graphmap/dialect/cypher"
)

// Config holds the store connection settings. Values come from an optional
// YAML file overridden by GRAPHMAP_* environment variables
// (GRAPHMAP_URI, GRAPHMAP_USERNAME, ...).
type Config struct {
	// URI is the bolt endpoint, e.g. "neo4j://localhost:7687".
	URI string `koanf:"uri"`

	// Username and Password authenticate against the store.
	Username string `koanf:"username"`
	Password string `koanf:"password"`

	// Database selects the database statements run against; empty uses the
	// server default.
	Database string `koanf:"database"`

	// SlowThreshold enables the statistics driver wrapper with slow-query
	// logging when positive.
	SlowThreshold time.Duration `koanf:"slow_threshold"`
}

// LoadConfig loads configuration from defaults, then the given YAML file
// (skipped when path is empty), then the environment.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	defaults := map[string]any{
		"uri":      "neo4j://localhost:7687",
		"username": "neo4j",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("graphmap: config defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("graphmap: config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("GRAPHMAP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "GRAPHMAP_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("graphmap: config env: %w", err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("graphmap: config: %w", err)
	}
	return &cfg, nil
}

// Open connects to the configured store, wrapping the driver with
// statistics collection when a slow threshold is set.
func (c *Config) Open() (dialect.Driver, error) {
	var opts []cypher.DriverOption
	if c.Database != "" {
		opts = append(opts, cypher.WithDatabase(c.Database))
	}
	drv, err := cypher.Open(c.URI, c.Username, c.Password, opts...)
	if err != nil {
		return nil, err
	}
	if c.SlowThreshold > 0 {
		return cypher.NewStatsDriver(drv,
			cypher.WithSlowThreshold(c.SlowThreshold),
			cypher.WithSlowQueryLog(),
		), nil
	}
	return drv, nil
}
