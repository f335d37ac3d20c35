package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appfp "github.com/turtacn/ChemFP-Engine/internal/application/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// FingerprintHandler serves fingerprint computation, key-set introspection,
// and vector-index endpoints.
type FingerprintHandler struct {
	svc    appfp.Service
	logger logging.Logger
}

// NewFingerprintHandler creates a new fingerprint handler.
func NewFingerprintHandler(svc appfp.Service, logger logging.Logger) *FingerprintHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FingerprintHandler{svc: svc, logger: logger.Named("http.fingerprint")}
}

type computeRequest struct {
	Graph  chem.GraphSpec `json:"graph"`
	Scheme string         `json:"scheme,omitempty"`
	Radius *int           `json:"radius,omitempty"`
	Length *int           `json:"length,omitempty"`
}

// Compute handles POST /api/v1/fingerprints.
func (h *FingerprintHandler) Compute(c *gin.Context) {
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dto, err := h.svc.Compute(c.Request.Context(), &appfp.ComputeInput{
		Graph:  req.Graph,
		Scheme: req.Scheme,
		Radius: req.Radius,
		Length: req.Length,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

type batchRequest struct {
	Graphs []chem.GraphSpec `json:"graphs"`
	Scheme string           `json:"scheme,omitempty"`
	Radius *int             `json:"radius,omitempty"`
	Length *int             `json:"length,omitempty"`
}

// ComputeBatch handles POST /api/v1/fingerprints/batch.
func (h *FingerprintHandler) ComputeBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.svc.ComputeBatch(c.Request.Context(), &appfp.BatchInput{
		Graphs: req.Graphs,
		Scheme: req.Scheme,
		Radius: req.Radius,
		Length: req.Length,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Keys handles GET /api/v1/fingerprints/keys.
func (h *FingerprintHandler) Keys(c *gin.Context) {
	info, err := h.svc.Keys(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type indexRequest struct {
	Fingerprints []chem.FingerprintDTO `json:"fingerprints"`
}

// Index handles POST /api/v1/fingerprints/index.
func (h *FingerprintHandler) Index(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.svc.IndexFingerprints(c.Request.Context(), &appfp.IndexInput{
		Fingerprints: req.Fingerprints,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type searchRequest struct {
	Fingerprint chem.FingerprintDTO `json:"fingerprint"`
	TopK        int                 `json:"top_k,omitempty"`
}

// Search handles POST /api/v1/fingerprints/search.
func (h *FingerprintHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.svc.SearchSimilar(c.Request.Context(), &appfp.SearchInput{
		Fingerprint: req.Fingerprint,
		TopK:        req.TopK,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
