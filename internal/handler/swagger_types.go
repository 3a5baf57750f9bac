package handler

import "budgetgrader/internal/service"

// Swagger type definitions for API documentation.

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status           string `json:"status" example:"ok"`
	Mode             string `json:"mode,omitempty" example:"rule_based"`
	RemoteExtraction bool   `json:"remote_extraction,omitempty" example:"false"`
	Error            string `json:"error,omitempty" example:"remote grading selected but no provider configured"`
}

// BatchGradeEntry is the outcome for one file of a batch grading request.
type BatchGradeEntry struct {
	FileName string               `json:"file_name" example:"jane_doe_budget.docx"`
	Success  bool                 `json:"success" example:"true"`
	Result   *service.GradeResult `json:"result,omitempty"`
	Error    *APIError            `json:"error,omitempty"`
}

// BatchGradeResponse summarizes a batch grading request.
type BatchGradeResponse struct {
	Total     int               `json:"total" example:"3"`
	Succeeded int               `json:"succeeded" example:"2"`
	Results   []BatchGradeEntry `json:"results"`
}

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
