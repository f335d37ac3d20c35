// Package milvus provides the binary-vector similarity index for folded
// fingerprints.  Records are stored as Milvus BinaryVector entities and
// searched with Jaccard distance, which on bit vectors is 1 − Tanimoto.
package milvus

import (
	"context"
	"sync"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
)

// newMilvusClient is swapped out by tests.
var newMilvusClient = client.NewClient

// ErrConnectionFailed is returned when the initial connection cannot be
// established.
var ErrConnectionFailed = errors.New(errors.ErrCodeStoreUnavailable, "milvus connection failed")

// Client manages one Milvus connection.
type Client struct {
	mc     client.Client
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

// NewClient connects to the Milvus instance described by cfg.
func NewClient(ctx context.Context, cfg config.MilvusConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if cfg.Addr == "" {
		return nil, errors.InvalidParam("milvus address is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mc, err := newMilvusClient(connectCtx, client.Config{
		Address: cfg.Addr,
		DBName:  cfg.DBName,
	})
	if err != nil {
		return nil, ErrConnectionFailed.WithCause(err)
	}

	log.Named("milvus").Info("milvus connected", logging.String("addr", cfg.Addr))
	return &Client{mc: mc, logger: log.Named("milvus")}, nil
}

// Raw returns the underlying SDK client.
func (c *Client) Raw() client.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mc
}

// Ping verifies the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	mc := c.mc
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return errors.New(errors.ErrCodeStoreUnavailable, "milvus client is closed")
	}
	if _, err := mc.CheckHealth(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreUnavailable, "milvus health check failed")
	}
	return nil
}

// Close releases the connection.  Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.mc.Close()
}
