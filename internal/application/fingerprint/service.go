// Package fingerprint provides the application-level service for fingerprint
// operations.  It sits between the HTTP/CLI handlers and the domain engines,
// adding configuration defaults, the read-through cache, the vector index,
// and metrics.
package fingerprint

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	domainfp "github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/domain/graph"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/search/milvus"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// Service defines the fingerprint application operations.
type Service interface {
	Compute(ctx context.Context, input *ComputeInput) (*chem.FingerprintDTO, error)
	ComputeBatch(ctx context.Context, input *BatchInput) (*BatchResult, error)
	Compare(ctx context.Context, input *CompareInput) (*CompareResult, error)
	Keys(ctx context.Context) (*KeySetInfo, error)
	IndexFingerprints(ctx context.Context, input *IndexInput) (*IndexResult, error)
	SearchSimilar(ctx context.Context, input *SearchInput) (*SearchResult, error)
}

// ComputeInput contains input for a single fingerprint computation.  Radius
// and Length are pointers because zero is a legal radius; nil means "use the
// configured default".  Both are ignored for the keyed scheme, whose
// parameters are fixed by the key set.
type ComputeInput struct {
	Graph  chem.GraphSpec
	Scheme string
	Radius *int
	Length *int
}

// BatchInput contains input for computing fingerprints over many graphs with
// shared parameters.
type BatchInput struct {
	Graphs []chem.GraphSpec
	Scheme string
	Radius *int
	Length *int
}

// BatchItem is the per-graph outcome of a batch computation.  Exactly one of
// Fingerprint and Error is set.
type BatchItem struct {
	Fingerprint *chem.FingerprintDTO `json:"fingerprint,omitempty"`
	Error       string               `json:"error,omitempty"`
	ErrorCode   string               `json:"error_code,omitempty"`
}

// BatchResult holds batch outcomes in input order.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// CompareInput contains two fingerprints to score and the metric to use.
// An empty metric defaults to Tanimoto.
type CompareInput struct {
	A      chem.FingerprintDTO
	B      chem.FingerprintDTO
	Metric string
}

// CompareResult is a scored comparison.
type CompareResult struct {
	Metric string  `json:"metric"`
	Score  float64 `json:"score"`
}

// KeyInfo describes one slot of the keyed fingerprint.
type KeyInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// KeySetInfo describes the keyed fingerprint's closed key set.
type KeySetInfo struct {
	Version string    `json:"version"`
	Length  int       `json:"length"`
	Keys    []KeyInfo `json:"keys"`
}

// IndexInput contains fingerprints to add to the vector index.  All entries
// must share one (scheme, radius, length) parameter set.
type IndexInput struct {
	Fingerprints []chem.FingerprintDTO
}

// IndexResult reports how many fingerprints were indexed.
type IndexResult struct {
	Indexed    int    `json:"indexed"`
	Collection string `json:"collection"`
}

// SearchInput contains a query fingerprint for nearest-neighbor search.
// TopK <= 0 uses the configured default.
type SearchInput struct {
	Fingerprint chem.FingerprintDTO
	TopK        int
}

// SearchHit is one nearest-neighbor match.
type SearchHit struct {
	ID         string  `json:"id"`
	Molecule   string  `json:"molecule,omitempty"`
	Similarity float64 `json:"similarity"`
}

// SearchResult holds search hits ordered by descending similarity.
type SearchResult struct {
	Hits []SearchHit `json:"hits"`
}

// serviceImpl implements the Service interface.  Cache and index are
// optional; a nil cache computes every request and a nil index rejects
// index operations with a store-unavailable error.
type serviceImpl struct {
	cfg     config.EngineConfig
	cache   *redis.FingerprintCache
	index   *milvus.FingerprintIndex
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewService creates a new fingerprint application service.
func NewService(cfg config.EngineConfig, cache *redis.FingerprintCache, index *milvus.FingerprintIndex, logger logging.Logger, metrics *prometheus.AppMetrics) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		cfg:     cfg,
		cache:   cache,
		index:   index,
		logger:  logger.Named("fingerprint"),
		metrics: metrics,
	}
}

func (s *serviceImpl) Compute(ctx context.Context, input *ComputeInput) (*chem.FingerprintDTO, error) {
	rec, err := s.compute(ctx, input.Graph, input.Scheme, input.Radius, input.Length)
	if err != nil {
		return nil, err
	}
	dto := rec.ToDTO()
	return &dto, nil
}

func (s *serviceImpl) ComputeBatch(ctx context.Context, input *BatchInput) (*BatchResult, error) {
	if len(input.Graphs) == 0 {
		return nil, errors.InvalidParam("batch contains no graphs")
	}
	scheme := input.Scheme
	if scheme == "" {
		scheme = chem.SchemeCircular.String()
	}
	if s.metrics != nil {
		s.metrics.BatchSize.WithLabelValues(scheme).Observe(float64(len(input.Graphs)))
	}

	workers := s.cfg.BatchWorkers
	if workers <= 0 {
		workers = 1
	}

	items := make([]BatchItem, len(input.Graphs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, spec := range input.Graphs {
		i, spec := i, spec
		eg.Go(func() error {
			if s.metrics != nil {
				s.metrics.BatchActiveWorkers.WithLabelValues().Inc()
				defer s.metrics.BatchActiveWorkers.WithLabelValues().Dec()
			}
			rec, err := s.compute(egCtx, spec, input.Scheme, input.Radius, input.Length)
			if err != nil {
				items[i] = BatchItem{Error: err.Error(), ErrorCode: string(errors.GetCode(err))}
				return nil
			}
			dto := rec.ToDTO()
			items[i] = BatchItem{Fingerprint: &dto}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{Items: items}
	for _, item := range items {
		if item.Error == "" {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	s.logger.Info("batch computed",
		logging.String("scheme", scheme),
		logging.Int("total", len(items)),
		logging.Int("failed", result.Failed))
	return result, nil
}

func (s *serviceImpl) Compare(ctx context.Context, input *CompareInput) (*CompareResult, error) {
	metric := domainfp.MetricTanimoto
	if input.Metric != "" {
		parsed, err := domainfp.ParseMetric(input.Metric)
		if err != nil {
			return nil, err
		}
		metric = parsed
	}
	calc, err := domainfp.NewCalculator(metric)
	if err != nil {
		return nil, err
	}

	a, err := domainfp.RecordFromDTO(input.A)
	if err != nil {
		return nil, err
	}
	b, err := domainfp.RecordFromDTO(input.B)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	score, err := calc.Calculate(a, b)
	prometheus.RecordSimilarity(s.metrics, metric.String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return &CompareResult{Metric: metric.String(), Score: score}, nil
}

func (s *serviceImpl) Keys(ctx context.Context) (*KeySetInfo, error) {
	ks := domainfp.DefaultKeySet()
	info := &KeySetInfo{
		Version: ks.Version(),
		Length:  ks.Length(),
		Keys:    make([]KeyInfo, 0, len(ks.Keys())),
	}
	for _, k := range ks.Keys() {
		info.Keys = append(info.Keys, KeyInfo{Index: k.Index, Name: k.Name})
	}
	return info, nil
}

func (s *serviceImpl) IndexFingerprints(ctx context.Context, input *IndexInput) (*IndexResult, error) {
	if s.index == nil {
		return nil, errors.New(errors.ErrCodeStoreUnavailable, "vector index not configured")
	}
	if len(input.Fingerprints) == 0 {
		return nil, errors.InvalidParam("no fingerprints to index")
	}

	records := make([]*domainfp.Record, len(input.Fingerprints))
	for i, dto := range input.Fingerprints {
		rec, err := domainfp.RecordFromDTO(dto)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}

	first := records[0]
	scheme, radius, length := first.Scheme, first.Radius, first.Vector.Len()
	if err := s.index.EnsureCollection(ctx, scheme, radius, length); err != nil {
		return nil, err
	}
	if err := s.index.Insert(ctx, scheme, radius, length, records); err != nil {
		return nil, err
	}
	return &IndexResult{
		Indexed:    len(records),
		Collection: s.index.CollectionName(scheme, radius, length),
	}, nil
}

func (s *serviceImpl) SearchSimilar(ctx context.Context, input *SearchInput) (*SearchResult, error) {
	if s.index == nil {
		return nil, errors.New(errors.ErrCodeStoreUnavailable, "vector index not configured")
	}
	rec, err := domainfp.RecordFromDTO(input.Fingerprint)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Search(ctx, rec, input.TopK)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{Hits: make([]SearchHit, len(hits))}
	for i, h := range hits {
		result.Hits[i] = SearchHit{ID: h.ID, Molecule: h.Molecule, Similarity: h.Similarity}
	}
	return result, nil
}

// compute builds the graph, resolves parameters, and runs one engine,
// consulting the cache when present.
func (s *serviceImpl) compute(ctx context.Context, spec chem.GraphSpec, schemeStr string, radiusOpt, lengthOpt *int) (*domainfp.Record, error) {
	scheme := chem.SchemeCircular
	if schemeStr != "" {
		parsed, err := chem.ParseFingerprintScheme(schemeStr)
		if err != nil {
			return nil, errors.InvalidParam(err.Error())
		}
		scheme = parsed
	}

	if s.cfg.ComputeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ComputeTimeout)
		defer cancel()
	}

	g, err := graph.New(spec)
	if err != nil {
		prometheus.RecordError(s.metrics, "fingerprint", string(errors.GetCode(err)))
		return nil, err
	}
	if s.cfg.MaxAtoms > 0 && g.AtomCount() > s.cfg.MaxAtoms {
		return nil, errors.Newf(errors.CodeInvalidParam,
			"graph has %d atoms, limit is %d", g.AtomCount(), s.cfg.MaxAtoms)
	}

	radius, length, err := s.resolveParams(scheme, radiusOpt, lengthOpt)
	if err != nil {
		return nil, err
	}

	computeFn := func() (*domainfp.Record, error) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "fingerprint computation canceled")
		}
		if scheme == chem.SchemeKeyed {
			return domainfp.ComputeKeyed(g)
		}
		return domainfp.ComputeCircular(g, radius, length)
	}

	start := time.Now()
	var rec *domainfp.Record
	if s.cache != nil {
		key := s.cache.Key(g.Digest(), scheme, radius, length)
		rec, _, err = s.cache.GetOrCompute(ctx, key, computeFn)
	} else {
		rec, err = computeFn()
	}

	bitsOn := 0
	if err == nil {
		bitsOn = rec.Vector.PopCount()
	}
	prometheus.RecordCompute(s.metrics, scheme.String(), g.AtomCount(), bitsOn, time.Since(start), err)
	if err != nil {
		prometheus.RecordError(s.metrics, "fingerprint", string(errors.GetCode(err)))
		return nil, err
	}

	// The cache wire form carries no molecule label, and a shared entry may
	// have been computed under another caller's label.  Relabel on a copy so
	// the response always reflects this request's graph.
	if rec.Molecule != g.Name() {
		relabeled := *rec
		relabeled.Molecule = g.Name()
		rec = &relabeled
	}

	s.logger.Debug("fingerprint computed",
		logging.String("scheme", scheme.String()),
		logging.Int("atoms", g.AtomCount()),
		logging.Int("bits_on", bitsOn))
	return rec, nil
}

// resolveParams fills configuration defaults and pins the keyed scheme to
// its fixed parameter set.
func (s *serviceImpl) resolveParams(scheme chem.FingerprintScheme, radiusOpt, lengthOpt *int) (radius, length int, err error) {
	if scheme == chem.SchemeKeyed {
		if radiusOpt != nil && *radiusOpt != 0 {
			return 0, 0, errors.InvalidParam("keyed fingerprints have no radius parameter")
		}
		if lengthOpt != nil && *lengthOpt != domainfp.KeyedLength {
			return 0, 0, errors.Newf(errors.CodeInvalidParam,
				"keyed fingerprint length is fixed at %d", domainfp.KeyedLength)
		}
		return 0, domainfp.KeyedLength, nil
	}

	radius = s.cfg.DefaultRadius
	if radiusOpt != nil {
		radius = *radiusOpt
	}
	length = s.cfg.DefaultLength
	if lengthOpt != nil {
		length = *lengthOpt
	}
	return radius, length, nil
}
