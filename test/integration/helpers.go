// Package integration holds tests that exercise the engine against real
// backing services.  Every test is skipped unless CHEMFP_INTEGRATION_TEST
// is set; the per-service address variables point the tests at running
// instances:
//
//	CHEMFP_INTEGRATION_TEST=1
//	CHEMFP_TEST_REDIS_ADDR=localhost:6379
//	CHEMFP_TEST_MILVUS_ADDR=localhost:19530
package integration

import (
	"os"
	"testing"
	"time"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

const (
	// EnvIntegrationEnabled controls whether integration tests run at all.
	EnvIntegrationEnabled = "CHEMFP_INTEGRATION_TEST"

	// EnvRedisAddr overrides the default Redis address.
	EnvRedisAddr = "CHEMFP_TEST_REDIS_ADDR"

	// EnvMilvusAddr overrides the default Milvus address.
	EnvMilvusAddr = "CHEMFP_TEST_MILVUS_ADDR"
)

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationEnabled) == "" {
		t.Skipf("skipping integration test: set %s=1 to enable", EnvIntegrationEnabled)
	}
}

func redisAddr() string {
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func milvusAddr() string {
	if addr := os.Getenv(EnvMilvusAddr); addr != "" {
		return addr
	}
	return "localhost:19530"
}

func redisTestConfig() config.RedisConfig {
	return config.RedisConfig{
		Enabled:     true,
		Addr:        redisAddr(),
		DialTimeout: 2 * time.Second,
		DefaultTTL:  time.Minute,
		KeyPrefix:   "chemfp-it",
	}
}

func milvusTestConfig() config.MilvusConfig {
	return config.MilvusConfig{
		Enabled:          true,
		Addr:             milvusAddr(),
		CollectionPrefix: "chemfp_it",
		IndexNList:       16,
		SearchNProbe:     8,
		DefaultTopK:      10,
	}
}

func testLogger() logging.Logger {
	return logging.NewNopLogger()
}

// ethanol is CH3-CH2-OH with hydrogens implicit.
func ethanolGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.New(chem.GraphSpec{
		Name: "ethanol",
		Atoms: []chem.AtomSpec{
			{Element: "C"},
			{Element: "C"},
			{Element: "O"},
		},
		Bonds: []chem.BondSpec{
			{A: 0, B: 1, Order: chem.BondSingle},
			{A: 1, B: 2, Order: chem.BondSingle},
		},
	})
	if err != nil {
		t.Fatalf("build ethanol graph: %v", err)
	}
	return g
}

// benzene is the aromatic six-ring.
func benzeneGraph(t *testing.T) *graph.Graph {
	t.Helper()
	atoms := make([]chem.AtomSpec, 6)
	bonds := make([]chem.BondSpec, 6)
	for i := 0; i < 6; i++ {
		atoms[i] = chem.AtomSpec{Element: "C", Aromatic: true}
		bonds[i] = chem.BondSpec{A: i, B: (i + 1) % 6, Order: chem.BondAromatic}
	}
	g, err := graph.New(chem.GraphSpec{Name: "benzene", Atoms: atoms, Bonds: bonds})
	if err != nil {
		t.Fatalf("build benzene graph: %v", err)
	}
	return g
}

func circularRecord(t *testing.T, g *graph.Graph, radius, length int) *fingerprint.Record {
	t.Helper()
	rec, err := fingerprint.ComputeCircular(g, radius, length)
	if err != nil {
		t.Fatalf("compute circular fingerprint: %v", err)
	}
	return rec
}
