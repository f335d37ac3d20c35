package fingerprint

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	domainfp "github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		DefaultRadius:  2,
		DefaultLength:  1024,
		MaxAtoms:       512,
		BatchWorkers:   4,
		ComputeTimeout: 5 * time.Second,
	}
}

func newTestService(cfg config.EngineConfig) Service {
	return NewService(cfg, nil, nil, logging.NewNopLogger(), prometheus.NewNopMetrics())
}

func ethanolSpec() chem.GraphSpec {
	return chem.GraphSpec{
		Name: "ethanol",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C", ImplicitHydrogens: 2},
			{Element: "O", ImplicitHydrogens: 1},
		},
		Bonds: []chem.BondSpec{
			{A: 0, B: 1, Order: chem.BondSingle},
			{A: 1, B: 2, Order: chem.BondSingle},
		},
	}
}

func propaneSpec() chem.GraphSpec {
	return chem.GraphSpec{
		Name: "propane",
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C", ImplicitHydrogens: 2},
			{Element: "C", ImplicitHydrogens: 3},
		},
		Bonds: []chem.BondSpec{
			{A: 0, B: 1, Order: chem.BondSingle},
			{A: 1, B: 2, Order: chem.BondSingle},
		},
	}
}

func intPtr(v int) *int { return &v }

func TestCompute_Defaults(t *testing.T) {
	svc := newTestService(testEngineConfig())

	dto, err := svc.Compute(context.Background(), &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)

	assert.Equal(t, chem.SchemeCircular, dto.Scheme)
	assert.Equal(t, 2, dto.Radius)
	assert.Equal(t, 1024, dto.Length)
	assert.Equal(t, "ethanol", dto.Molecule)
	assert.NotEmpty(t, dto.ID)
	assert.Positive(t, dto.NumOnBits)
}

func TestCompute_ExplicitParams(t *testing.T) {
	svc := newTestService(testEngineConfig())

	dto, err := svc.Compute(context.Background(), &ComputeInput{
		Graph:  ethanolSpec(),
		Scheme: "circular",
		Radius: intPtr(0),
		Length: intPtr(512),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, dto.Radius)
	assert.Equal(t, 512, dto.Length)
}

func TestCompute_Keyed(t *testing.T) {
	svc := newTestService(testEngineConfig())

	dto, err := svc.Compute(context.Background(), &ComputeInput{
		Graph:  ethanolSpec(),
		Scheme: "keyed",
	})
	require.NoError(t, err)

	assert.Equal(t, chem.SchemeKeyed, dto.Scheme)
	assert.Equal(t, 0, dto.Radius)
	assert.Equal(t, domainfp.KeyedLength, dto.Length)
	assert.Equal(t, "cfp-keys/1", dto.KeySet)
}

func TestCompute_KeyedRejectsParams(t *testing.T) {
	svc := newTestService(testEngineConfig())

	_, err := svc.Compute(context.Background(), &ComputeInput{
		Graph:  ethanolSpec(),
		Scheme: "keyed",
		Radius: intPtr(2),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))

	_, err = svc.Compute(context.Background(), &ComputeInput{
		Graph:  ethanolSpec(),
		Scheme: "keyed",
		Length: intPtr(1024),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestCompute_UnknownScheme(t *testing.T) {
	svc := newTestService(testEngineConfig())

	_, err := svc.Compute(context.Background(), &ComputeInput{
		Graph:  ethanolSpec(),
		Scheme: "spectral",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestCompute_MalformedGraph(t *testing.T) {
	svc := newTestService(testEngineConfig())

	_, err := svc.Compute(context.Background(), &ComputeInput{Graph: chem.GraphSpec{}})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedGraph(err))
}

func TestCompute_AtomLimit(t *testing.T) {
	cfg := testEngineConfig()
	cfg.MaxAtoms = 2
	svc := newTestService(cfg)

	_, err := svc.Compute(context.Background(), &ComputeInput{Graph: propaneSpec()})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))

	// Ethanol has exactly three heavy atoms too, but a two-atom molecule passes.
	_, err = svc.Compute(context.Background(), &ComputeInput{Graph: chem.GraphSpec{
		Atoms: []chem.AtomSpec{
			{Element: "C", ImplicitHydrogens: 3},
			{Element: "C", ImplicitHydrogens: 3},
		},
		Bonds: []chem.BondSpec{{A: 0, B: 1, Order: chem.BondSingle}},
	}})
	assert.NoError(t, err)
}

func TestCompute_WithCache(t *testing.T) {
	cache := redis.NewFingerprintCache(nil, config.RedisConfig{
		KeyPrefix:  "chemfp",
		DefaultTTL: time.Minute,
	}, logging.NewNopLogger(), nil)
	svc := NewService(testEngineConfig(), cache, nil, logging.NewNopLogger(), prometheus.NewNopMetrics())

	first, err := svc.Compute(context.Background(), &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)
	second, err := svc.Compute(context.Background(), &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)

	assert.Equal(t, first.Bits, second.Bits)
	assert.Equal(t, first.NumOnBits, second.NumOnBits)
}

func TestComputeBatch(t *testing.T) {
	svc := newTestService(testEngineConfig())

	result, err := svc.ComputeBatch(context.Background(), &BatchInput{
		Graphs: []chem.GraphSpec{
			ethanolSpec(),
			{}, // malformed: no atoms
			propaneSpec(),
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	require.NotNil(t, result.Items[0].Fingerprint)
	assert.Equal(t, "ethanol", result.Items[0].Fingerprint.Molecule)

	assert.Nil(t, result.Items[1].Fingerprint)
	assert.NotEmpty(t, result.Items[1].Error)
	assert.Equal(t, string(errors.CodeGraphEmpty), result.Items[1].ErrorCode)

	require.NotNil(t, result.Items[2].Fingerprint)
	assert.Equal(t, "propane", result.Items[2].Fingerprint.Molecule)
}

func TestComputeBatch_Empty(t *testing.T) {
	svc := newTestService(testEngineConfig())

	_, err := svc.ComputeBatch(context.Background(), &BatchInput{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(err))
}

func TestCompare_DefaultsToTanimoto(t *testing.T) {
	svc := newTestService(testEngineConfig())
	ctx := context.Background()

	dto, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)

	result, err := svc.Compare(ctx, &CompareInput{A: *dto, B: *dto})
	require.NoError(t, err)
	assert.Equal(t, "tanimoto", result.Metric)
	assert.Equal(t, 1.0, result.Score)
}

func TestCompare_Metrics(t *testing.T) {
	svc := newTestService(testEngineConfig())
	ctx := context.Background()

	a, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)
	b, err := svc.Compute(ctx, &ComputeInput{Graph: propaneSpec()})
	require.NoError(t, err)

	for _, metric := range []string{"tanimoto", "dice", "cosine"} {
		result, err := svc.Compare(ctx, &CompareInput{A: *a, B: *b, Metric: metric})
		require.NoError(t, err, metric)
		assert.Equal(t, metric, result.Metric)
		assert.GreaterOrEqual(t, result.Score, 0.0, metric)
		assert.LessOrEqual(t, result.Score, 1.0, metric)
	}
}

func TestCompare_UnknownMetric(t *testing.T) {
	svc := newTestService(testEngineConfig())
	ctx := context.Background()

	dto, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)

	_, err = svc.Compare(ctx, &CompareInput{A: *dto, B: *dto, Metric: "euclidean"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSimilarityMetric, errors.GetCode(err))
}

func TestCompare_IncompatibleSchemes(t *testing.T) {
	svc := newTestService(testEngineConfig())
	ctx := context.Background()

	circular, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)
	keyed, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec(), Scheme: "keyed"})
	require.NoError(t, err)

	_, err = svc.Compare(ctx, &CompareInput{A: *circular, B: *keyed})
	require.Error(t, err)
	assert.True(t, errors.IsIncompatibleFingerprint(err))
}

func TestKeys(t *testing.T) {
	svc := newTestService(testEngineConfig())

	info, err := svc.Keys(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "cfp-keys/1", info.Version)
	assert.Equal(t, domainfp.KeyedLength, info.Length)
	require.NotEmpty(t, info.Keys)

	names := make(map[int]string, len(info.Keys))
	for _, k := range info.Keys {
		names[k.Index] = k.Name
	}
	assert.Equal(t, "halogen", names[12])
}

func TestIndexFingerprints_NotConfigured(t *testing.T) {
	svc := newTestService(testEngineConfig())
	ctx := context.Background()

	dto, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)

	_, err = svc.IndexFingerprints(ctx, &IndexInput{Fingerprints: []chem.FingerprintDTO{*dto}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStoreUnavailable, errors.GetCode(err))
}

func TestSearchSimilar_NotConfigured(t *testing.T) {
	svc := newTestService(testEngineConfig())
	ctx := context.Background()

	dto, err := svc.Compute(ctx, &ComputeInput{Graph: ethanolSpec()})
	require.NoError(t, err)

	_, err = svc.SearchSimilar(ctx, &SearchInput{Fingerprint: *dto})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStoreUnavailable, errors.GetCode(err))
}
