package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"askbrooks/models"
	"askbrooks/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubAsker struct {
	resp *models.AskResponse
	err  error
	got  string
}

func (s *stubAsker) Ask(_ context.Context, question string) (*models.AskResponse, error) {
	s.got = question
	return s.resp, s.err
}

func serve(asker Asker, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := &AskController{asker: asker, logger: zap.NewNop()}
	r.POST("/ask", c.Ask)
	r.GET("/health", HealthCheck)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodGet, "/health", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAsk_OK(t *testing.T) {
	asker := &stubAsker{resp: &models.AskResponse{Answer: "yes", Sources: services.Sources()}}

	rec := serve(asker, `{"question":"What is a trading range?"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "What is a trading range?", asker.got)
	assert.JSONEq(t, `{"answer":"yes","sources":["Trading Price Action Trends","Trading Price Action Reversals","Trading Price Action Trading Ranges"]}`, rec.Body.String())
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			name:   "empty question",
			err:    &services.Error{Kind: services.ErrInvalidQuestion, Detail: "Question cannot be empty"},
			status: http.StatusBadRequest,
			detail: "Question cannot be empty",
		},
		{
			name:   "init failure",
			err:    &services.Error{Kind: services.ErrServiceUnavailable, Detail: "Failed to initialize NotebookLM: no cookies"},
			status: http.StatusServiceUnavailable,
			detail: "Failed to initialize NotebookLM: no cookies",
		},
		{
			name:   "query failure",
			err:    &services.Error{Kind: services.ErrUpstream, Detail: "NotebookLM error: timeout"},
			status: http.StatusInternalServerError,
			detail: "NotebookLM error: timeout",
		},
		{
			name:   "unclassified",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			detail: "NotebookLM error: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubAsker{err: tt.err}, `{"question":"q"}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"detail":"`+tt.detail+`"}`, rec.Body.String())
		})
	}
}

func TestAsk_MalformedBody(t *testing.T) {
	asker := &stubAsker{}

	rec := serve(asker, `{"question":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid request body")
	assert.Empty(t, asker.got)
}

func TestHealthCheck(t *testing.T) {
	rec := serve(nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
