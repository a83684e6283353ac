// 程序入口：读取配置、初始化依赖并启动服务；路由注册在 internal/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fabhiansan/tsunami-simulation/internal/api"
	"github.com/fabhiansan/tsunami-simulation/internal/dataset"
	"github.com/fabhiansan/tsunami-simulation/internal/ingest"
	"github.com/fabhiansan/tsunami-simulation/internal/logger"
	"github.com/fabhiansan/tsunami-simulation/internal/metrics"
	"github.com/fabhiansan/tsunami-simulation/internal/middleware"
	"github.com/fabhiansan/tsunami-simulation/internal/migrate"
	"github.com/fabhiansan/tsunami-simulation/internal/store"
	"github.com/fabhiansan/tsunami-simulation/internal/utils"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envSeconds(key string, def int) time.Duration {
	n := def
	if s := os.Getenv(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			n = v
		}
	}
	return time.Duration(n) * time.Second
}

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Debug("log_init_ok")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiBase := envOr("API_BASE", "/data")
	path := envOr("GEOJSON_PATH", filepath.Join("output", "custom_simulation.geojson"))
	l.Debug("config", "api_base", apiBase, "geojson", path)

	// 审计：可选，失败不影响数据接口
	var st *store.Store
	if os.Getenv("INGEST_AUDIT_ENABLED") == "true" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			l.Error("db_ping_error", "err", err)
		} else if err := migrate.EnsureSchema(ctx, db); err != nil {
			l.Error("schema_error", "err", err)
		} else {
			st = store.AttachDB(db)
			l.Info("audit_enabled")
		}
	}

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	opts := []dataset.Option{
		dataset.WithOnBuilt(metrics.ObserveIngest),
		dataset.WithOnError(metrics.ObserveIngestError),
	}
	if st != nil {
		opts = append(opts, dataset.WithOnBuilt(func(res *ingest.Result) {
			actx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := st.RecordRun(actx, store.RunOf(res.Summary)); err != nil {
				l.Error("audit_record_error", "run_id", res.Summary.RunID, "err", err)
			}
		}))
	}
	cache := dataset.New(dataset.FileLoader(path, ingest.Options{Logger: l}), opts...)

	if envOr("WARM_ON_START", "true") == "true" {
		go func() {
			if _, err := cache.Get(ctx); err != nil {
				l.Warn("warm_error", "err", err)
			}
		}()
	}
	if envOr("WATCH_ENABLED", "true") == "true" {
		debounce := debounceFromEnv()
		w, err := dataset.NewWatcher(cache, path, dataset.WatchOptions{Debounce: debounce, Warm: true})
		if err != nil {
			l.Warn("watch_disabled", "err", err)
		} else {
			go func() { _ = w.Run(ctx) }()
			l.Info("watch_enabled", "path", path, "debounce_ms", debounce.Milliseconds())
		}
	}

	apiMux := api.BuildRoutes(cache, rc, st, api.Options{
		CacheTTL: envSeconds("TIMESTEP_CACHE_TTL_S", 3600),
		Timeout:  envSeconds("REQUEST_TIMEOUT_S", 60),
	})
	mux := http.NewServeMux()
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(cache.State().String()))
	})

	addr := envOr("ADDR", ":5001")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	var err error
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := envOr("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
		keyPath := envOr("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "tsunami-sim.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}

// debounceFromEnv：WATCH_DEBOUNCE_MS，缺省 500ms
func debounceFromEnv() time.Duration {
	if s := os.Getenv("WATCH_DEBOUNCE_MS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return dataset.DefaultDebounce
}
