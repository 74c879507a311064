package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h echo.HandlerFunc) (*httptest.ResponseRecorder, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))

	var resp readinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, NewHealthHandler().Liveness(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness_NoDependenciesConfigured(t *testing.T) {
	rec, resp := serve(t, NewHealthDependenciesHandler(nil, nil).Readiness)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", resp.Status)
	require.Empty(t, resp.Dependencies)
}

func TestReadiness_RedisUp(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rec, resp := serve(t, NewHealthDependenciesHandler(nil, rdb).Readiness)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", resp.Dependencies["redis"].Status)
}

func TestReadiness_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	rec, resp := serve(t, NewHealthDependenciesHandler(nil, rdb).Readiness)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "degraded", resp.Status)
	require.Equal(t, "unhealthy", resp.Dependencies["redis"].Status)
	require.NotEmpty(t, resp.Dependencies["redis"].Error)
}
