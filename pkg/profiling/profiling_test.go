package profiling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHandler(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics/memory", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, MemoryHandler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats MemoryStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.SysMB)
	assert.NotEmpty(t, stats.Timestamp)
}

func TestRegisterPprofRoutes(t *testing.T) {
	e := echo.New()
	RegisterPprofRoutes(e.Group("/debug"))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine?debug=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutine")
}
