// 包 api：集中注册数据接口路由，主入口挂载到 API_BASE 前缀下
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fabhiansan/tsunami-simulation/internal/dataset"
	"github.com/fabhiansan/tsunami-simulation/internal/logger"
	"github.com/fabhiansan/tsunami-simulation/internal/metrics"
	"github.com/fabhiansan/tsunami-simulation/internal/store"
)

const (
	metadataSuggestion = "Check if the GeoJSON file is valid and accessible"
	defaultCacheTTL    = time.Hour
	defaultTimeout     = 60 * time.Second
)

// Options：路由参数
type Options struct {
	// CacheTTL：Redis 中时间步响应体的过期时间
	CacheTTL time.Duration
	// Timeout：单个请求等待导入完成的上限；超时只影响该请求
	Timeout time.Duration
}

// metadataFailure：导入失败时的元数据降级响应，字段与正常统计保持一致，前端可直接使用默认值
type metadataFailure struct {
	Error         string `json:"error"`
	Suggestion    string `json:"suggestion"`
	MaxTimestamp  int    `json:"max_timestamp"`
	MinTimestamp  int    `json:"min_timestamp"`
	AllTimesteps  []int  `json:"all_timesteps"`
	TotalAgents   int    `json:"total_agents"`
	ValidCoords   int64  `json:"valid_coords"`
	InvalidCoords int64  `json:"invalid_coords"`
}

type notFoundBody struct {
	Error          string `json:"error"`
	AvailableSteps []int  `json:"available_steps"`
}

type errorBody struct {
	Error string `json:"error"`
}

type handlers struct {
	cache *dataset.Cache
	rc    *redis.Client
	st    *store.Store
	opts  Options
}

// 文档注释：构建并返回数据接口路由
// 背景：独立 ServeMux 便于在主入口以 StripPrefix 挂载；rc 与 st 可为 nil，分别关闭响应缓存与审计查询。
func BuildRoutes(c *dataset.Cache, rc *redis.Client, st *store.Store, opts Options) *http.ServeMux {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	h := &handlers{cache: c, rc: rc, st: st, opts: opts}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metadata", h.metadata)
	mux.HandleFunc("GET /timestep/{step}", h.timestep)
	if st != nil {
		mux.HandleFunc("GET /runs", h.runs)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// metadata：始终返回 200；导入失败时返回带 error/suggestion 的零值统计
func (h *handlers) metadata(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()
	s, err := h.cache.Metadata(ctx)
	if err != nil {
		logger.L().Error("metadata_error", "err", err)
		writeJSON(w, http.StatusOK, metadataFailure{
			Error:        fmt.Sprintf("Error processing GeoJSON: %v", err),
			Suggestion:   metadataSuggestion,
			AllTimesteps: []int{},
		})
		metrics.ObserveRequest("metadata", http.StatusOK, start)
		return
	}
	writeJSON(w, http.StatusOK, s)
	metrics.ObserveRequest("metadata", http.StatusOK, start)
}

func (h *handlers) timestep(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.serveTimestep(w, r)
	metrics.ObserveRequest("timestep", status, start)
}

func (h *handlers) serveTimestep(w http.ResponseWriter, r *http.Request) int {
	l := logger.L()
	raw := r.PathValue("step")
	step, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("Invalid timestep %q", raw)})
		return http.StatusBadRequest
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()
	res, err := h.cache.Get(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusServiceUnavailable
		}
		l.Error("timestep_error", "step", step, "err", err)
		writeJSON(w, status, errorBody{Error: err.Error()})
		return status
	}
	key := cacheKey(res.Summary.RunID, step)
	if h.rc != nil {
		if body, err := h.rc.Get(ctx, key).Bytes(); err == nil {
			metrics.RedisHitsTotal.Inc()
			w.Header().Set("content-type", "application/json; charset=utf-8")
			w.Header().Set("cache-control", "no-store")
			_, _ = w.Write(body)
			return http.StatusOK
		} else if !errors.Is(err, redis.Nil) {
			l.Warn("redis_get_error", "key", key, "err", err)
		}
		metrics.RedisMissesTotal.Inc()
	}
	b, err := dataset.Lookup(res, step)
	var nf *dataset.NotFoundError
	if errors.As(err, &nf) {
		l.Warn("timestep_not_found", "step", step, "available", nf.Available)
		avail := nf.Available
		if avail == nil {
			avail = []int{}
		}
		writeJSON(w, http.StatusNotFound, notFoundBody{Error: nf.Error(), AvailableSteps: avail})
		return http.StatusNotFound
	}
	body, err := json.Marshal(b)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return http.StatusInternalServerError
	}
	body = append(body, '\n')
	if h.rc != nil {
		if err := h.rc.Set(ctx, key, body, h.opts.CacheTTL).Err(); err != nil {
			l.Warn("redis_set_error", "key", key, "err", err)
		}
	}
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_, _ = w.Write(body)
	return http.StatusOK
}

// cacheKey：响应缓存键；run_id 随每次重新导入变化，旧条目自然过期
func cacheKey(runID string, step int) string {
	return "timestep:" + runID + ":" + strconv.Itoa(step)
}

func (h *handlers) runs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	runs, err := h.st.RecentRuns(r.Context(), limit)
	if err != nil {
		logger.L().Error("runs_error", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		metrics.ObserveRequest("runs", http.StatusInternalServerError, start)
		return
	}
	writeJSON(w, http.StatusOK, runs)
	metrics.ObserveRequest("runs", http.StatusOK, start)
}
