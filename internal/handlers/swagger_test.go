package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"swagger":"2.0"}`), 0o600))

	e := echo.New()
	NewSwaggerHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), path).Register(e)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/swagger.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"swagger":"2.0"}`, rec.Body.String())

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/swagger.json")
}

func TestSwaggerSpecMissing(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	NewSwaggerHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), filepath.Join(t.TempDir(), "absent.json")).Register(e)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/swagger.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
