package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appfp "github.com/turtacn/ChemFP-Engine/internal/application/fingerprint"
	"github.com/turtacn/ChemFP-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// SimilarityHandler serves fingerprint comparison endpoints.
type SimilarityHandler struct {
	svc    appfp.Service
	logger logging.Logger
}

// NewSimilarityHandler creates a new similarity handler.
func NewSimilarityHandler(svc appfp.Service, logger logging.Logger) *SimilarityHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SimilarityHandler{svc: svc, logger: logger.Named("http.similarity")}
}

type compareRequest struct {
	A      chem.FingerprintDTO `json:"a"`
	B      chem.FingerprintDTO `json:"b"`
	Metric string              `json:"metric,omitempty"`
}

// Compare handles POST /api/v1/similarity.
func (h *SimilarityHandler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.svc.Compare(c.Request.Context(), &appfp.CompareInput{
		A:      req.A,
		B:      req.B,
		Metric: req.Metric,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
