package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/llm"
	"budgetgrader/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	if _, ok := llm.AsRateLimit(err); ok {
		return http.StatusTooManyRequests, "RATE_LIMITED", "the remote grading service is rate limited; retry later"
	}
	switch {
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: docx, xlsx, pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrDocumentDecode):
		return http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE", "the document could not be read; check that it is not corrupt"
	case errors.Is(err, domain.ErrNoGradableData):
		return http.StatusUnprocessableEntity, "NO_GRADABLE_DATA", "no budget tables were found in the document"
	case errors.Is(err, domain.ErrExternalExtractionRequired):
		return http.StatusUnprocessableEntity, "EXTERNAL_EXTRACTION_REQUIRED", "the document has no tables; configure a remote provider to grade it"
	case errors.Is(err, domain.ErrInvalidGradingOptions):
		return http.StatusBadRequest, "INVALID_GRADING_OPTIONS", "inflation_rate must be 0-100 and tolerance 0-5"
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR", "the remote grading service failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", middleware.GetRequestID(c), err)
	}
	if rlErr, ok := llm.AsRateLimit(err); ok {
		c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
	}
	RespondError(c, status, code, msg)
}
