package scoring

import (
	"strconv"

	"gorm.io/datatypes"
)

// Result statuses used on the scoring wire contract.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Error codes produced locally. Backend-declared codes pass through opaquely.
const (
	CodeBackendNotConfigured = "BACKEND_URL_NOT_CONFIGURED"
	CodeBackendUnavailable   = "BACKEND_UNAVAILABLE"
	CodeInvalidResponse      = "INVALID_BACKEND_RESPONSE"
	CodeMaxAttemptsReached   = "MAX_ATTEMPTS_REACHED"
	CodeEmptyEssay           = "EMPTY_ESSAY"
)

// Result is a scoring response document. It stays a plain JSON object rather
// than a struct so fields the backend adds beyond the documented contract
// survive normalization and reach the front-end unchanged.
type Result map[string]any

// Status returns the response tag, empty when the backend omitted it.
func (r Result) Status() string {
	if value, ok := r["status"].(string); ok {
		return value
	}
	return ""
}

// IsOK reports whether the response tag is "ok".
func (r Result) IsOK() bool {
	return r.Status() == StatusOK
}

// StatusCode returns the embedded HTTP-like status code, or 0 when absent.
func (r Result) StatusCode() int {
	if value, ok := toFloat(r["status_code"]); ok {
		return int(value)
	}
	return 0
}

// RequestID returns the correlation identifier carried by the document.
func (r Result) RequestID() string {
	if value, ok := r["request_id"].(string); ok {
		return value
	}
	return ""
}

// ErrorCode returns the machine-readable error code, empty for ok results.
func (r Result) ErrorCode() string {
	errObj, ok := r["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

// ScoreObject returns the score section of an ok result, nil when absent.
func (r Result) ScoreObject() map[string]any {
	score, _ := r["score"].(map[string]any)
	return score
}

// SetDefault stores value under key only when the key is not already present.
func (r Result) SetDefault(key string, value any) {
	if _, exists := r[key]; !exists {
		r[key] = value
	}
}

// JSONMap converts the result for storage in a gorm JSON column.
func (r Result) JSONMap() datatypes.JSONMap {
	return datatypes.JSONMap(r)
}

// ErrorResult builds the uniform error document every failure path returns.
func ErrorResult(code, message string, statusCode int, requestID string, details map[string]any) Result {
	if details == nil {
		details = map[string]any{}
	}

	result := Result{
		"status":      StatusError,
		"status_code": statusCode,
		"error": map[string]any{
			"code":    code,
			"message": message,
			"details": details,
		},
	}
	if requestID != "" {
		result["request_id"] = requestID
	}

	return result
}

// toFloat coerces the numeric encodings a JSON document may carry. Anything
// that cannot be read as a number reports false so callers fall back to zero
// instead of guessing.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
