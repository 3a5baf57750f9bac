package router_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"budgetgrader/internal/domain"
	"budgetgrader/internal/handler"
	"budgetgrader/internal/router"
	"budgetgrader/internal/service"
	"budgetgrader/mocks"
)

func newEngine(svc *mocks.MockGradingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return router.Setup(
		[]string{"http://localhost:3000"},
		handler.NewHealthHandler(domain.GradingModeRuleBased, false),
		handler.NewGradeHandler(svc, service.NewBatchGrader(svc, 2), 1<<20),
	)
}

func TestSetup_HealthRoutes(t *testing.T) {
	r := newEngine(new(mocks.MockGradingService))

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
}

func TestSetup_ExtractRoute(t *testing.T) {
	svc := new(mocks.MockGradingService)
	r := newEngine(svc)
	svc.On("Extract", mock.Anything, mock.Anything).Return(&domain.CanonicalRecord{StudentName: "Jane Doe"}, nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "budget.docx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("PK"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Body.String(), "Jane Doe")
	svc.AssertExpectations(t)
}

func TestSetup_UnknownRoute(t *testing.T) {
	r := newEngine(new(mocks.MockGradingService))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/grade", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
