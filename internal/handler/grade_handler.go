package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/report"
	"budgetgrader/internal/service"
)

// maxBatchFiles bounds the number of worksheets accepted by GradeBatch.
const maxBatchFiles = 50

// GradeHandler handles worksheet extraction and grading endpoints.
type GradeHandler struct {
	gradingService service.GradingService
	batchGrader    *service.BatchGrader
	maxBytes       int64
}

// NewGradeHandler creates a new GradeHandler. maxBytes bounds each uploaded file.
func NewGradeHandler(gradingService service.GradingService, batchGrader *service.BatchGrader, maxBytes int64) *GradeHandler {
	return &GradeHandler{gradingService: gradingService, batchGrader: batchGrader, maxBytes: maxBytes}
}

// Extract handles POST /api/v1/extract
// @Summary Extract budget data
// @Description Decode a worksheet (docx, xlsx, pdf) and return the extracted budget record without grading
// @Tags grading
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Worksheet to extract"
// @Success 200 {object} Response{data=domain.CanonicalRecord} "Extracted record"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Unreadable document"
// @Router /extract [post]
func (h *GradeHandler) Extract(c *gin.Context) {
	name, content, ok := h.readUpload(c)
	if !ok {
		return
	}

	rec, err := h.gradingService.Extract(c.Request.Context(), service.ExtractInput{FileName: name, Content: content})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rec)
}

// Grade handles POST /api/v1/grade
// @Summary Grade a worksheet
// @Description Extract the budget tables from a worksheet and check every derived figure
// @Tags grading
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Worksheet to grade"
// @Param inflation_rate formData number false "Inflation rate in percent (0-100), default 5"
// @Param tolerance formData number false "Absolute tolerance (0-5), default 0.5"
// @Success 200 {object} Response{data=service.GradeResult} "Graded worksheet"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type, or invalid options"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "No gradable data"
// @Failure 502 {object} ErrorResponseBody "Remote grading service failed"
// @Router /grade [post]
func (h *GradeHandler) Grade(c *gin.Context) {
	result, ok := h.grade(c)
	if !ok {
		return
	}
	RespondOK(c, result)
}

// Export handles POST /api/v1/grade/export
// @Summary Grade a worksheet and download the report
// @Description Same as Grade but answers with the report as a file download
// @Tags grading
// @Accept multipart/form-data
// @Produce json,application/yaml,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,application/pdf
// @Param format query string false "json, yaml, csv, xlsx or pdf (default json)"
// @Param file formData file true "Worksheet to grade"
// @Param inflation_rate formData number false "Inflation rate in percent (0-100), default 5"
// @Param tolerance formData number false "Absolute tolerance (0-5), default 0.5"
// @Success 200 {file} file "Report download"
// @Failure 400 {object} ErrorResponseBody "Invalid format or options"
// @Router /grade/export [post]
func (h *GradeHandler) Export(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
		return
	}

	result, ok := h.grade(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, result.Report, format); err != nil {
		HandleError(c, fmt.Errorf("rendering %s report: %w", format, err))
		return
	}

	filename := report.BuildFilename(result.Report.StudentName, result.GradedAt, format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, report.ContentType(format), buf.Bytes())
}

// GradeBatch handles POST /api/v1/grade/batch
// @Summary Grade several worksheets
// @Description Grade up to 50 worksheets in one request; each file succeeds or fails independently
// @Tags grading
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Worksheets to grade (repeat the field)"
// @Param inflation_rate formData number false "Inflation rate in percent (0-100), default 5"
// @Param tolerance formData number false "Absolute tolerance (0-5), default 0.5"
// @Success 200 {object} Response{data=BatchGradeResponse} "Per-file results"
// @Failure 400 {object} ErrorResponseBody "No files or invalid options"
// @Router /grade/batch [post]
func (h *GradeHandler) GradeBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "at least one files field is required")
		return
	}
	headers := form.File["files"]
	if len(headers) > maxBatchFiles {
		RespondError(c, http.StatusBadRequest, "TOO_MANY_FILES", fmt.Sprintf("at most %d files per batch", maxBatchFiles))
		return
	}

	opts, err := h.parseOptions(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := BatchGradeResponse{Total: len(headers), Results: make([]BatchGradeEntry, len(headers))}
	inputs := make([]service.GradeInput, 0, len(headers))
	index := make([]int, 0, len(headers))
	for i, fh := range headers {
		resp.Results[i].FileName = fh.Filename
		content, err := h.readFile(fh)
		if err != nil {
			_, code, msg := MapDomainError(err)
			resp.Results[i].Error = &APIError{Code: code, Message: msg}
			continue
		}
		inputs = append(inputs, service.GradeInput{FileName: fh.Filename, Content: content, Options: opts})
		index = append(index, i)
	}

	for j, item := range h.batchGrader.GradeAll(c.Request.Context(), inputs) {
		entry := &resp.Results[index[j]]
		if item.Err != nil {
			_, code, msg := MapDomainError(item.Err)
			entry.Error = &APIError{Code: code, Message: msg}
			continue
		}
		entry.Success = true
		entry.Result = item.Result
		resp.Succeeded++
	}

	RespondOK(c, resp)
}

func (h *GradeHandler) grade(c *gin.Context) (*service.GradeResult, bool) {
	name, content, ok := h.readUpload(c)
	if !ok {
		return nil, false
	}
	opts, err := h.parseOptions(c)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}

	result, err := h.gradingService.Grade(c.Request.Context(), service.GradeInput{
		FileName: name,
		Content:  content,
		Options:  opts,
	})
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return result, true
}

// readUpload reads the "file" form field. On failure the error response is
// already written.
func (h *GradeHandler) readUpload(c *gin.Context) (name string, content []byte, ok bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return "", nil, false
	}
	content, err = h.readFile(fh)
	if err != nil {
		HandleError(c, err)
		return "", nil, false
	}
	return fh.Filename, content, true
}

func (h *GradeHandler) readFile(fh *multipart.FileHeader) ([]byte, error) {
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if h.maxBytes > 0 {
		r = io.LimitReader(f, h.maxBytes+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	if h.maxBytes > 0 && int64(len(content)) > h.maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	return content, nil
}

// parseOptions reads optional inflation_rate and tolerance form fields.
// It returns nil when neither is present so the service defaults apply.
func (h *GradeHandler) parseOptions(c *gin.Context) (*domain.GradingOptions, error) {
	rateStr := strings.TrimSpace(c.PostForm("inflation_rate"))
	tolStr := strings.TrimSpace(c.PostForm("tolerance"))
	if rateStr == "" && tolStr == "" {
		return nil, nil
	}

	opts := h.gradingService.DefaultOptions()
	if rateStr != "" {
		v, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: inflation_rate %q is not a number", domain.ErrInvalidGradingOptions, rateStr)
		}
		opts.InflationRate = v
	}
	if tolStr != "" {
		v, err := strconv.ParseFloat(tolStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: tolerance %q is not a number", domain.ErrInvalidGradingOptions, tolStr)
		}
		opts.Tolerance = v
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}
