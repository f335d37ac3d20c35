package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfp "github.com/turtacn/ChemFP-Engine/internal/application/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/config"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemFP-Engine/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemFP-Engine/internal/interfaces/http/middleware"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "chemfp",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	svc := appfp.NewService(config.EngineConfig{
		DefaultRadius:  2,
		DefaultLength:  1024,
		MaxAtoms:       512,
		BatchWorkers:   2,
		ComputeTimeout: 5 * time.Second,
	}, nil, nil, logging.NewNopLogger(), metrics)

	return NewRouter(RouterConfig{
		FingerprintHandler: handlers.NewFingerprintHandler(svc, nil),
		SimilarityHandler:  handlers.NewSimilarityHandler(svc, nil),
		HealthHandler:      handlers.NewHealthHandler("test"),
		Logger:             logging.NewNopLogger(),
		Metrics:            metrics,
		Collector:          collector,
		Mode:               gin.TestMode,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func ethanolGraph() map[string]interface{} {
	return map[string]interface{}{
		"name": "ethanol",
		"atoms": []map[string]interface{}{
			{"element": "C", "implicit_hydrogens": 3},
			{"element": "C", "implicit_hydrogens": 2},
			{"element": "O", "implicit_hydrogens": 1},
		},
		"bonds": []map[string]interface{}{
			{"a": 0, "b": 1, "order": "single"},
			{"a": 1, "b": 2, "order": "single"},
		},
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alive"`)

	w = doJSON(t, router, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ComputeFingerprint(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/fingerprints", map[string]interface{}{
		"graph": ethanolGraph(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		ID        string `json:"id"`
		Scheme    string `json:"scheme"`
		Radius    int    `json:"radius"`
		Length    int    `json:"length"`
		NumOnBits int    `json:"num_on_bits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "circular", resp.Scheme)
	assert.Equal(t, 2, resp.Radius)
	assert.Equal(t, 1024, resp.Length)
	assert.Positive(t, resp.NumOnBits)
}

func TestRouter_ComputeKeyed(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/fingerprints", map[string]interface{}{
		"graph":  ethanolGraph(),
		"scheme": "keyed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"length":166`)
	assert.Contains(t, w.Body.String(), `"cfp-keys/1"`)
}

func TestRouter_ComputeMalformedGraph(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/fingerprints", map[string]interface{}{
		"graph": map[string]interface{}{"atoms": []interface{}{}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "GRAPH_005", resp.Code)
}

func TestRouter_ComputeInvalidBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/fingerprints", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "COMMON_002")
}

func TestRouter_Batch(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/fingerprints/batch", map[string]interface{}{
		"graphs": []interface{}{ethanolGraph(), map[string]interface{}{}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Items     []json.RawMessage `json:"items"`
		Succeeded int               `json:"succeeded"`
		Failed    int               `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
}

func TestRouter_Keys(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/fingerprints/keys", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Version string `json:"version"`
		Length  int    `json:"length"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "cfp-keys/1", resp.Version)
	assert.Equal(t, 166, resp.Length)
}

func TestRouter_Compare(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/fingerprints", map[string]interface{}{
		"graph": ethanolGraph(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var fp json.RawMessage = w.Body.Bytes()

	var body bytes.Buffer
	fmt.Fprintf(&body, `{"a":%s,"b":%s}`, fp, fp)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/similarity", &body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Metric string  `json:"metric"`
		Score  float64 `json:"score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tanimoto", resp.Metric)
	assert.Equal(t, 1.0, resp.Score)
}

func TestRouter_SearchWithoutIndex(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/fingerprints", map[string]interface{}{
		"graph": ethanolGraph(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	var fp json.RawMessage = w.Body.Bytes()

	var body bytes.Buffer
	fmt.Fprintf(&body, `{"fingerprint":%s}`, fp)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fingerprints/search", &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "STORE_001")
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t)

	// Generate one request so HTTP metrics have samples.
	doJSON(t, router, http.MethodGet, "/healthz", nil)

	w := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chemfp_http_requests_total")
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_RequestIDEcho(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
}
