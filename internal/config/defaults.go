package config

import "time"

// Default value constants.  Explicit configuration always wins; these apply
// only to zero-value fields after unmarshalling.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultRadius         = 2
	DefaultLength         = 1024
	DefaultMaxAtoms       = 512
	DefaultBatchWorkers   = 8
	DefaultComputeTimeout = 30 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "chemfp"

	DefaultMilvusAddr             = "localhost:19530"
	DefaultMilvusCollectionPrefix = "chemfp"
	DefaultMilvusNList            = 128
	DefaultMilvusNProbe           = 16
	DefaultMilvusTopK             = 10

	DefaultMetricsPath = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// It runs after unmarshalling and before Validate so optional-but-defaulted
// fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Engine.DefaultRadius == 0 {
		cfg.Engine.DefaultRadius = DefaultRadius
	}
	if cfg.Engine.DefaultLength == 0 {
		cfg.Engine.DefaultLength = DefaultLength
	}
	if cfg.Engine.MaxAtoms == 0 {
		cfg.Engine.MaxAtoms = DefaultMaxAtoms
	}
	if cfg.Engine.BatchWorkers == 0 {
		cfg.Engine.BatchWorkers = DefaultBatchWorkers
	}
	if cfg.Engine.ComputeTimeout == 0 {
		cfg.Engine.ComputeTimeout = DefaultComputeTimeout
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = DefaultMilvusAddr
	}
	if cfg.Milvus.CollectionPrefix == "" {
		cfg.Milvus.CollectionPrefix = DefaultMilvusCollectionPrefix
	}
	if cfg.Milvus.IndexNList == 0 {
		cfg.Milvus.IndexNList = DefaultMilvusNList
	}
	if cfg.Milvus.SearchNProbe == 0 {
		cfg.Milvus.SearchNProbe = DefaultMilvusNProbe
	}
	if cfg.Milvus.DefaultTopK == 0 {
		cfg.Milvus.DefaultTopK = DefaultMilvusTopK
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
