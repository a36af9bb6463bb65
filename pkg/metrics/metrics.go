// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、门面请求与项目文件指标.
//
// Example:
//
//	if err := metrics.InitMetrics(config.Metrics); err != nil {
//		return err
//	}
//
//	metrics.FacadeCalls.WithLabelValues("get-all-files", "ok").Inc()
//	metrics.FacadeDuration.WithLabelValues("get-all-files").Observe(0.01)
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/oxygen/pkg/configs"
)

const namespace = "oxygen"

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of active connections",
		},
	)

	// FacadeCalls 门面请求计数，outcome 为 ok 或错误类别.
	FacadeCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "facade_calls_total",
			Help:      "Total number of facade requests by outcome",
		},
		[]string{"request", "outcome"},
	)

	// FacadeDuration 门面请求耗时.
	FacadeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "facade_call_duration_seconds",
			Help:      "Facade request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"request"},
	)

	// ProjectFiles 项目文件记录数，state 为 active 或 total.
	ProjectFiles = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "project_files",
			Help:      "Number of project file records",
		},
		[]string{"state"},
	)

	// MissingFiles 记录存在但宿主文件已不存在的数量.
	MissingFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "project_files_missing",
			Help:      "Number of active records whose host file no longer exists",
		},
	)

	// RejectedRequests 被中间件拒绝的请求，reason 为 unauthorized、rate_limited 或 circuit_open.
	RejectedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rejected_requests_total",
			Help:      "Requests rejected before reaching a handler",
		},
		[]string{"reason"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用无副作用.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		// 注册标准收集器
		if config.RuntimeMetrics {
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		registry.MustRegister(
			RequestCounter, RequestDuration, ActiveConnections,
			FacadeCalls, FacadeDuration, ProjectFiles, MissingFiles,
			RejectedRequests,
		)
	})

	return nil
}

// Handler 返回 /metrics 处理器，合并本包注册表与默认注册表（GORM 插件注册在默认注册表）.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.Gatherers{registry, prometheus.DefaultGatherer}, promhttp.HandlerOpts{})
}

// StartMetricsServer 在引擎上挂载 Metrics 端点.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(Handler()))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
