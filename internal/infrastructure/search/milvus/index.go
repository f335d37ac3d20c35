package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/domain/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/pkg/errors"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

const (
	fieldID       = "id"
	fieldMolecule = "molecule"
	fieldVector   = "fingerprint"
)

// Hit is one nearest-neighbor result.
type Hit struct {
	ID         string
	Molecule   string
	Similarity float64
}

// FingerprintIndex stores folded fingerprints as Milvus binary vectors.  One
// collection exists per (scheme, radius, length) parameter set; vectors from
// different parameter sets are incomparable and must never share an index.
type FingerprintIndex struct {
	client  *Client
	cfg     config.MilvusConfig
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewFingerprintIndex builds an index facade over client.
func NewFingerprintIndex(client *Client, cfg config.MilvusConfig, log logging.Logger, metrics *prometheus.AppMetrics) *FingerprintIndex {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FingerprintIndex{
		client:  client,
		cfg:     cfg,
		logger:  log.Named("fpindex"),
		metrics: metrics,
	}
}

// CollectionName derives the collection for one parameter set.
func (x *FingerprintIndex) CollectionName(scheme chem.FingerprintScheme, radius, length int) string {
	return fmt.Sprintf("%s_%s_r%d_l%d", x.cfg.CollectionPrefix, scheme, radius, length)
}

// vectorDim returns the Milvus binary-vector dimension for a fingerprint
// length.  Milvus requires dim % 8 == 0; BitVector packs into whole bytes,
// so lengths like the 166-bit keyed scheme round up to the byte boundary.
// Pad bits are zero in every stored and queried vector, so they never alter
// Jaccard distance.
func vectorDim(length int) int {
	return (length + 7) / 8 * 8
}

// EnsureCollection creates, indexes, and loads the collection for the
// parameter set if it does not exist yet.  Safe to call on every startup.
func (x *FingerprintIndex) EnsureCollection(ctx context.Context, scheme chem.FingerprintScheme, radius, length int) error {
	mc := x.client.Raw()
	name := x.CollectionName(scheme, radius, length)

	has, err := mc.HasCollection(ctx, name)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "check collection existence")
	}
	if !has {
		schema := entity.NewSchema().
			WithName(name).
			WithDescription("folded molecular fingerprints").
			WithField(entity.NewField().
				WithName(fieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(64).
				WithIsPrimaryKey(true)).
			WithField(entity.NewField().
				WithName(fieldMolecule).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(256)).
			WithField(entity.NewField().
				WithName(fieldVector).
				WithDataType(entity.FieldTypeBinaryVector).
				WithDim(int64(vectorDim(length))))

		if err := mc.CreateCollection(ctx, schema, 2); err != nil {
			return errors.Wrap(err, errors.ErrCodeStoreQuery, "create collection")
		}

		idx, err := entity.NewIndexBinIvfFlat(entity.JACCARD, x.cfg.IndexNList)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeStoreQuery, "build index descriptor")
		}
		if err := mc.CreateIndex(ctx, name, fieldVector, idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeStoreQuery, "create index")
		}
		x.logger.Info("collection created", logging.String("collection", name), logging.Int("dim", vectorDim(length)))
	}

	if err := mc.LoadCollection(ctx, name, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "load collection")
	}
	return nil
}

// Insert upserts fingerprint records into the parameter set's collection.
// All records must share the collection's scheme, radius, and length.
func (x *FingerprintIndex) Insert(ctx context.Context, scheme chem.FingerprintScheme, radius, length int, records []*fingerprint.Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	molecules := make([]string, len(records))
	vectors := make([][]byte, len(records))
	for i, rec := range records {
		if rec.Scheme != scheme || rec.Radius != radius || rec.Vector.Len() != length {
			return errors.IncompatibleFingerprint("record does not match index parameters").
				WithDetail(fmt.Sprintf("record %s: %s r%d l%d", rec.ID, rec.Scheme, rec.Radius, rec.Vector.Len()))
		}
		ids[i] = rec.ID
		molecules[i] = rec.Molecule
		vectors[i] = rec.Vector.Bytes()
	}

	name := x.CollectionName(scheme, radius, length)
	_, err := x.client.Raw().Upsert(ctx, name, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldMolecule, molecules),
		entity.NewColumnBinaryVector(fieldVector, vectorDim(length), vectors),
	)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if x.metrics != nil {
		x.metrics.IndexInsertTotal.WithLabelValues(name, status).Inc()
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "insert fingerprints")
	}

	x.logger.Debug("fingerprints indexed", logging.String("collection", name), logging.Int("count", len(records)))
	return nil
}

// Search returns the topK nearest fingerprints to query, scored as Tanimoto
// similarity.  Milvus reports Jaccard distance; similarity is 1 − distance.
func (x *FingerprintIndex) Search(ctx context.Context, query *fingerprint.Record, topK int) ([]Hit, error) {
	if query == nil || query.Vector == nil {
		return nil, errors.IncompatibleFingerprint("nil query fingerprint")
	}
	if topK <= 0 {
		topK = x.cfg.DefaultTopK
	}

	name := x.CollectionName(query.Scheme, query.Radius, query.Vector.Len())
	sp, err := entity.NewIndexBinIvfFlatSearchParam(x.cfg.SearchNProbe)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreQuery, "build search params")
	}

	start := time.Now()
	results, err := x.client.Raw().Search(ctx, name, nil, "",
		[]string{fieldMolecule},
		[]entity.Vector{entity.BinaryVector(query.Vector.Bytes())},
		fieldVector, entity.JACCARD, topK, sp,
	)
	status := "ok"
	if err != nil {
		status = "error"
	}
	if x.metrics != nil {
		x.metrics.IndexSearchTotal.WithLabelValues(name, status).Inc()
		if err == nil {
			x.metrics.IndexSearchLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSimilaritySearch, "fingerprint search")
	}

	return convertHits(results), nil
}

// Flush forces segment persistence.  Tests use this to make freshly inserted
// vectors searchable immediately.
func (x *FingerprintIndex) Flush(ctx context.Context, scheme chem.FingerprintScheme, radius, length int) error {
	name := x.CollectionName(scheme, radius, length)
	if err := x.client.Raw().Flush(ctx, name, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreQuery, "flush collection")
	}
	return nil
}

func convertHits(results []client.SearchResult) []Hit {
	hits := make([]Hit, 0)
	for _, res := range results {
		for j := 0; j < res.ResultCount; j++ {
			id, err := res.IDs.GetAsString(j)
			if err != nil {
				continue
			}
			molecule := ""
			if col := res.Fields.GetColumn(fieldMolecule); col != nil {
				if v, err := col.GetAsString(j); err == nil {
					molecule = v
				}
			}
			similarity := 1.0 - float64(res.Scores[j])
			if similarity < 0 {
				similarity = 0
			}
			hits = append(hits, Hit{ID: id, Molecule: molecule, Similarity: similarity})
		}
	}
	return hits
}
