package client

import (
	"context"

	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// ComputeRequest asks the server to fingerprint one molecular graph.  Radius
// and Length are pointers because zero is a legal radius; nil picks the
// server's configured defaults.
type ComputeRequest struct {
	Graph  chem.GraphSpec `json:"graph"`
	Scheme string         `json:"scheme,omitempty"`
	Radius *int           `json:"radius,omitempty"`
	Length *int           `json:"length,omitempty"`
}

// BatchRequest fingerprints many graphs with shared parameters.
type BatchRequest struct {
	Graphs []chem.GraphSpec `json:"graphs"`
	Scheme string           `json:"scheme,omitempty"`
	Radius *int             `json:"radius,omitempty"`
	Length *int             `json:"length,omitempty"`
}

// BatchItem is the per-graph outcome; exactly one of Fingerprint and Error
// is set.
type BatchItem struct {
	Fingerprint *chem.FingerprintDTO `json:"fingerprint,omitempty"`
	Error       string               `json:"error,omitempty"`
	ErrorCode   string               `json:"error_code,omitempty"`
}

// BatchResult holds batch outcomes in request order.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// CompareRequest scores two fingerprints.  An empty metric means Tanimoto.
type CompareRequest struct {
	A      chem.FingerprintDTO `json:"a"`
	B      chem.FingerprintDTO `json:"b"`
	Metric string              `json:"metric,omitempty"`
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

// IndexRequest adds fingerprints to the server's vector index.
type IndexRequest struct {
	Fingerprints []chem.FingerprintDTO `json:"fingerprints"`
}

// IndexResult reports how many fingerprints were indexed.
type IndexResult struct {
	Indexed    int    `json:"indexed"`
	Collection string `json:"collection"`
}

// SearchRequest runs nearest-neighbor search over the vector index.
type SearchRequest struct {
	Fingerprint chem.FingerprintDTO `json:"fingerprint"`
	TopK        int                 `json:"top_k,omitempty"`
}

// SearchHit is one nearest-neighbor match.
type SearchHit struct {
	ID         string  `json:"id"`
	Molecule   string  `json:"molecule,omitempty"`
	Similarity float64 `json:"similarity"`
}

// SearchResult holds hits ordered by descending similarity.
type SearchResult struct {
	Hits []SearchHit `json:"hits"`
}

// Compute fingerprints a single molecular graph.
func (c *Client) Compute(ctx context.Context, req *ComputeRequest) (*chem.FingerprintDTO, error) {
	var out chem.FingerprintDTO
	if err := c.post(ctx, "/api/v1/fingerprints", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ComputeBatch fingerprints many graphs in one request.
func (c *Client) ComputeBatch(ctx context.Context, req *BatchRequest) (*BatchResult, error) {
	var out BatchResult
	if err := c.post(ctx, "/api/v1/fingerprints/batch", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compare scores two fingerprints with the given metric.
func (c *Client) Compare(ctx context.Context, req *CompareRequest) (*CompareResult, error) {
	var out CompareResult
	if err := c.post(ctx, "/api/v1/similarity", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Keys fetches the keyed fingerprint's key-set description.
func (c *Client) Keys(ctx context.Context) (*KeySetInfo, error) {
	var out KeySetInfo
	if err := c.get(ctx, "/api/v1/fingerprints/keys", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Index adds fingerprints to the server's vector index.
func (c *Client) Index(ctx context.Context, req *IndexRequest) (*IndexResult, error) {
	var out IndexResult
	if err := c.post(ctx, "/api/v1/fingerprints/index", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs nearest-neighbor search over the vector index.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	var out SearchResult
	if err := c.post(ctx, "/api/v1/fingerprints/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Healthy reports whether the server's readiness probe passes.
func (c *Client) Healthy(ctx context.Context) error {
	return c.get(ctx, "/readyz", nil)
}
