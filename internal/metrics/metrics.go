// 包 metrics：进程级 Prometheus 指标，覆盖导入、缓存、HTTP 与 Redis 响应缓存
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
	"github.com/fabhiansan/tsunami-simulation/internal/ingest"
)

var (
	IngestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geo_ingest_runs_total",
		Help: "Total ingestion passes by outcome (ok, empty, error)",
	}, []string{"outcome"})
	IngestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geo_ingest_duration_ms",
		Help:    "Ingestion pass duration in milliseconds",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 15000, 60000, 180000},
	})
	IngestFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geo_ingest_features",
		Help: "Features seen by the last successful ingestion pass",
	})
	IngestValidCoords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geo_ingest_valid_coords",
		Help: "Accepted coordinates in the last successful ingestion pass",
	})
	IngestInvalidCoords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geo_ingest_invalid_coords",
		Help: "Rejected coordinates in the last successful ingestion pass by reason",
	}, []string{"reason"})
	IngestTimesteps = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geo_ingest_timesteps",
		Help: "Distinct timesteps in the ready index",
	})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geo_requests_total",
		Help: "Total data API requests by route and status",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geo_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo_redis_hits_total",
		Help: "Total redis timestep cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo_redis_misses_total",
		Help: "Total redis timestep cache misses",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geo_rate_limited_total",
		Help: "Total requests rejected by the token bucket",
	})
)

func init() {
	prometheus.MustRegister(IngestRunsTotal)
	prometheus.MustRegister(IngestDurationMs)
	prometheus.MustRegister(IngestFeatures)
	prometheus.MustRegister(IngestValidCoords)
	prometheus.MustRegister(IngestInvalidCoords)
	prometheus.MustRegister(IngestTimesteps)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：记录一次成功导入的统计
// 背景：作为 dataset.WithOnBuilt 回调挂载，每次构建完成后刷新快照类指标。
func ObserveIngest(res *ingest.Result) {
	s := res.Summary
	outcome := "ok"
	if !s.HasData() {
		outcome = "empty"
	}
	IngestRunsTotal.WithLabelValues(outcome).Inc()
	IngestDurationMs.Observe(float64(s.DurationMs))
	IngestFeatures.Set(float64(s.Features))
	IngestValidCoords.Set(float64(s.ValidCoords))
	for _, r := range feature.Reasons {
		IngestInvalidCoords.WithLabelValues(string(r)).Set(float64(s.InvalidReasons[r]))
	}
	IngestTimesteps.Set(float64(len(s.AllTimesteps)))
}

// ObserveIngestError：作为 dataset.WithOnError 回调挂载
func ObserveIngestError(error) {
	IngestRunsTotal.WithLabelValues("error").Inc()
}

// ObserveRequest：记录一次数据接口请求
func ObserveRequest(route string, status int, start time.Time) {
	RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
