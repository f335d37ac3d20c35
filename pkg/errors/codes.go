package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.  Codes are
// grouped by module prefix: COMMON for cross-cutting failures, GRAPH for
// molecular graph construction, FP for fingerprint computation and
// comparison, SIM for similarity search, STORE for cache / vector-index
// infrastructure.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeNotImplemented     ErrorCode = "COMMON_009"
)

// Molecular graph error codes.  All of these classify as "malformed graph"
// for callers that only care about the coarse category; see IsMalformedGraph.
const (
	ErrCodeGraphMalformed      ErrorCode = "GRAPH_001"
	ErrCodeGraphBondOutOfRange ErrorCode = "GRAPH_002"
	ErrCodeGraphSelfBond       ErrorCode = "GRAPH_003"
	ErrCodeGraphValence        ErrorCode = "GRAPH_004"
	ErrCodeGraphEmpty          ErrorCode = "GRAPH_005"
	ErrCodeGraphUnknownElement ErrorCode = "GRAPH_006"
)

// Fingerprint error codes.
const (
	ErrCodeFingerprintIncompatible ErrorCode = "FP_001"
	ErrCodeFingerprintEncoding     ErrorCode = "FP_002"
	ErrCodeFingerprintParams       ErrorCode = "FP_003"
	ErrCodeFingerprintScheme       ErrorCode = "FP_004"
)

// Similarity search error codes.
const (
	ErrCodeSimilarityMetric    ErrorCode = "SIM_001"
	ErrCodeSimilaritySearch    ErrorCode = "SIM_002"
	ErrCodeSimilarityThreshold ErrorCode = "SIM_003"
)

// Storage infrastructure error codes (Redis cache, Milvus index).
const (
	ErrCodeStoreUnavailable ErrorCode = "STORE_001"
	ErrCodeStoreSerialize   ErrorCode = "STORE_002"
	ErrCodeStoreQuery       ErrorCode = "STORE_003"
)

// Short aliases used at call sites throughout the codebase.
const (
	CodeOK      = ErrorCode("OK")
	CodeUnknown = ErrorCode("UNKNOWN")

	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeValidation     = ErrCodeValidation
	CodeSerialization  = ErrCodeSerialization
	CodeUnavailable    = ErrCodeServiceUnavailable
	CodeNotImplemented = ErrCodeNotImplemented

	CodeGraphMalformed      = ErrCodeGraphMalformed
	CodeGraphBondOutOfRange = ErrCodeGraphBondOutOfRange
	CodeGraphSelfBond       = ErrCodeGraphSelfBond
	CodeGraphValence        = ErrCodeGraphValence
	CodeGraphEmpty          = ErrCodeGraphEmpty
	CodeGraphUnknownElement = ErrCodeGraphUnknownElement

	CodeFingerprintIncompatible = ErrCodeFingerprintIncompatible
	CodeFingerprintEncoding     = ErrCodeFingerprintEncoding
	CodeFingerprintParams       = ErrCodeFingerprintParams
	CodeFingerprintScheme       = ErrCodeFingerprintScheme

	CodeSimilarityMetric    = ErrCodeSimilarityMetric
	CodeSimilaritySearch    = ErrCodeSimilaritySearch
	CodeSimilarityThreshold = ErrCodeSimilarityThreshold

	CodeStoreUnavailable = ErrCodeStoreUnavailable
	CodeStoreSerialize   = ErrCodeStoreSerialize
	CodeStoreQuery       = ErrCodeStoreQuery
)

// httpStatusByCode maps error codes to the HTTP status returned by the API
// layer.  Codes absent from the map default to 500.
var httpStatusByCode = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeGraphMalformed:      http.StatusBadRequest,
	ErrCodeGraphBondOutOfRange: http.StatusBadRequest,
	ErrCodeGraphSelfBond:       http.StatusBadRequest,
	ErrCodeGraphValence:        http.StatusBadRequest,
	ErrCodeGraphEmpty:          http.StatusBadRequest,
	ErrCodeGraphUnknownElement: http.StatusBadRequest,

	ErrCodeFingerprintIncompatible: http.StatusUnprocessableEntity,
	ErrCodeFingerprintEncoding:     http.StatusBadRequest,
	ErrCodeFingerprintParams:       http.StatusBadRequest,
	ErrCodeFingerprintScheme:       http.StatusBadRequest,

	ErrCodeSimilarityMetric:    http.StatusBadRequest,
	ErrCodeSimilaritySearch:    http.StatusInternalServerError,
	ErrCodeSimilarityThreshold: http.StatusBadRequest,

	ErrCodeStoreUnavailable: http.StatusServiceUnavailable,
	ErrCodeStoreSerialize:   http.StatusInternalServerError,
	ErrCodeStoreQuery:       http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
