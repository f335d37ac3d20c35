// Package config defines the configuration structures for the ChemFP engine.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EngineConfig holds fingerprint computation parameters.  Radius and Length
// are the defaults applied when a request leaves them unset; requests may
// override both within the validated ranges.
type EngineConfig struct {
	DefaultRadius  int           `mapstructure:"default_radius"`
	DefaultLength  int           `mapstructure:"default_length"`
	MaxAtoms       int           `mapstructure:"max_atoms"`
	BatchWorkers   int           `mapstructure:"batch_workers"`
	ComputeTimeout time.Duration `mapstructure:"compute_timeout"`
}

// RedisConfig holds Redis connection parameters for the fingerprint cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MilvusConfig holds Milvus vector-store connection parameters for the
// binary-vector similarity index.
type MilvusConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Addr             string `mapstructure:"addr"`
	DBName           string `mapstructure:"db_name"`
	CollectionPrefix string `mapstructure:"collection_prefix"`
	IndexNList       int    `mapstructure:"index_nlist"`
	SearchNProbe     int    `mapstructure:"search_nprobe"`
	DefaultTopK      int    `mapstructure:"default_top_k"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration for the engine.  Every infrastructure
// component and service reads its settings from the relevant sub-struct.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Engine  EngineConfig      `mapstructure:"engine"`
	Redis   RedisConfig       `mapstructure:"redis"`
	Milvus  MilvusConfig      `mapstructure:"milvus"`
	Metrics MetricsConfig     `mapstructure:"metrics"`
	Log     logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error found; callers treat any error as fatal and refuse
// to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Engine.DefaultRadius < 0 || c.Engine.DefaultRadius > fingerprint.MaxRadius {
		return fmt.Errorf("config: engine.default_radius %d is out of range [0, %d]",
			c.Engine.DefaultRadius, fingerprint.MaxRadius)
	}
	if c.Engine.DefaultLength < 1 {
		return fmt.Errorf("config: engine.default_length must be positive, got %d", c.Engine.DefaultLength)
	}
	if c.Engine.MaxAtoms < 1 {
		return fmt.Errorf("config: engine.max_atoms must be positive, got %d", c.Engine.MaxAtoms)
	}
	if c.Engine.BatchWorkers < 1 {
		return fmt.Errorf("config: engine.batch_workers must be positive, got %d", c.Engine.BatchWorkers)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be non-negative, got %d", c.Redis.DB)
		}
	}

	if c.Milvus.Enabled && c.Milvus.Addr == "" {
		return fmt.Errorf("config: milvus.addr is required when milvus is enabled")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
