package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/metrics"
)

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := configs.MetricsConfig{Enabled: true}
	require.NoError(t, metrics.InitMetrics(cfg))
	// 重复初始化不会 panic
	require.NoError(t, metrics.InitMetrics(cfg))

	metrics.FacadeCalls.WithLabelValues("get-all-files", "ok").Inc()
	metrics.ProjectFiles.WithLabelValues("active").Set(3)

	engine := gin.New()
	require.NoError(t, metrics.StartMetricsServer(cfg, engine))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `oxygen_facade_calls_total{outcome="ok",request="get-all-files"}`)
	assert.Contains(t, rec.Body.String(), `oxygen_project_files{state="active"} 3`)
}

func TestMetricsDisabled(t *testing.T) {
	engine := gin.New()
	require.NoError(t, metrics.StartMetricsServer(configs.MetricsConfig{}, engine))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
