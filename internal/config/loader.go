package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every engine setting.
const envPrefix = "CHEMFP"

// newViper builds a pre-configured viper instance: YAML file type, CHEMFP_
// env prefix, automatic env binding, and a key replacer mapping "." to "_"
// so nested keys like "redis.addr" resolve to CHEMFP_REDIS_ADDR.
// configKeys lists every settable key.  Unmarshal only sees keys viper knows
// about, so each one is bound explicitly; AutomaticEnv alone does not surface
// env-only keys to Unmarshal.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.max_body_size", "server.shutdown_timeout",
	"engine.default_radius", "engine.default_length", "engine.max_atoms",
	"engine.batch_workers", "engine.compute_timeout",
	"redis.enabled", "redis.addr", "redis.password", "redis.db",
	"redis.pool_size", "redis.min_idle_conns", "redis.dial_timeout",
	"redis.read_timeout", "redis.write_timeout", "redis.default_ttl",
	"redis.key_prefix",
	"milvus.enabled", "milvus.addr", "milvus.db_name", "milvus.collection_prefix",
	"milvus.index_nlist", "milvus.search_nprobe", "milvus.default_top_k",
	"metrics.enabled", "metrics.path",
	"log.level", "log.format", "log.output_paths", "log.error_output_paths",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges CHEMFP_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from CHEMFP_* environment variables
// and defaults, with no config file.  This is the loading strategy for
// containerized deployments:
//
//	CHEMFP_<SECTION>_<FIELD>   e.g. CHEMFP_SERVER_PORT, CHEMFP_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes on disk.  Intended for hot-reloading settings
// that are safe to change at runtime, such as log level; callers decide which
// subset to apply.  A change that fails to parse or validate is skipped so
// the application never observes a broken config.
//
// Watch is non-blocking; viper manages the background goroutine.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read feeds the watcher; callers should have called Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error.  For use in main, where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
