package httputil

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pharmacycle/pharma-cycle/internal/pkg/logger"
)

func TestInternalError_HidesDetails(t *testing.T) {
	var logs bytes.Buffer
	prev := logger.SetOutput(&logs)
	defer logger.SetOutput(prev)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/heatmap", nil)
	InternalError(rec, req, errors.New("pq: relation \"disposals\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "relation")
}

func TestDecode(t *testing.T) {
	var dst struct {
		Code string `json:"disposalCode"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"disposalCode":"abc"}`))
	assert.True(t, Decode(rec, req, &dst))
	assert.Equal(t, "abc", dst.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.False(t, Decode(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJSON_ContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]int{"GSK": 3})

	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"GSK":3}`, rec.Body.String())
}
