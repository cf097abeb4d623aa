package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"stockroom/internal/domain"

	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// RespondWithError sends a structured error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithErrorDetails(w, statusCode, message, nil)
}

// respondWithErrorDetails sends a structured error response with additional details
func respondWithErrorDetails(w http.ResponseWriter, statusCode int, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      http.StatusText(statusCode),
			Message:   message,
			Details:   details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	json.NewEncoder(w).Encode(response)
}

// RespondWithValidationErrors sends validation error response
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	details := make(map[string]interface{})
	details["validation_errors"] = errors

	respondWithErrorDetails(w, http.StatusBadRequest, "validation failed", details)
}

// RespondWithDomainError maps a typed domain error to its HTTP status and
// structured body. Anything unrecognized is logged at error severity and
// reported as an internal error; the failed transaction has already been
// rolled back by the time an error reaches this point.
func RespondWithDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		respondWithErrorDetails(w, http.StatusNotFound, notFound.Error(), map[string]interface{}{
			"resource": notFound.Resource,
			"id":       notFound.ID,
		})
		return
	}

	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		respondWithErrorDetails(w, http.StatusBadRequest, insufficient.Error(), map[string]interface{}{
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
		return
	}

	var transition *domain.InvalidStatusTransitionError
	if errors.As(err, &transition) {
		respondWithErrorDetails(w, http.StatusBadRequest, transition.Error(), map[string]interface{}{
			"current":   transition.Current,
			"requested": transition.Requested,
		})
		return
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		RespondWithError(w, http.StatusConflict, conflict.Error())
		return
	}

	logger.Error("Unhandled error", zap.Error(err))
	RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// ErrorHandlingMiddleware catches panics and converts them to 500 errors
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
