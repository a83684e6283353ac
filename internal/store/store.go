// 包 store：导入审计的 PostgreSQL 访问层，每次成功构建写入一行，供 /runs 查询
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
	"github.com/fabhiansan/tsunami-simulation/internal/logger"
	"github.com/fabhiansan/tsunami-simulation/internal/timestep"
)

// DefaultRecentLimit：RecentRuns 未指定数量时的默认值
const DefaultRecentLimit = 20

// Store：数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Run：一次导入的审计记录
type Run struct {
	RunID          string                   `json:"run_id"`
	Source         string                   `json:"source"`
	BuiltAt        time.Time                `json:"built_at"`
	DurationMs     int64                    `json:"duration_ms"`
	Features       int64                    `json:"features"`
	ValidCoords    int64                    `json:"valid_coords"`
	InvalidCoords  int64                    `json:"invalid_coords"`
	InvalidReasons map[feature.Reason]int64 `json:"invalid_reasons"`
	Timesteps      int                      `json:"timesteps"`
	MinTimestamp   int                      `json:"min_timestamp"`
	MaxTimestamp   int                      `json:"max_timestamp"`
	TotalAgents    int                      `json:"total_agents"`
	Error          string                   `json:"error,omitempty"`
}

// RunOf：由导入统计生成审计记录
func RunOf(s timestep.Summary) Run {
	return Run{
		RunID:          s.RunID,
		Source:         s.Source,
		BuiltAt:        s.BuiltAt,
		DurationMs:     s.DurationMs,
		Features:       s.Features,
		ValidCoords:    s.ValidCoords,
		InvalidCoords:  s.InvalidCoords,
		InvalidReasons: s.InvalidReasons,
		Timesteps:      len(s.AllTimesteps),
		MinTimestamp:   s.MinTimestamp,
		MaxTimestamp:   s.MaxTimestamp,
		TotalAgents:    s.TotalAgents,
		Error:          s.Error,
	}
}

// RecordRun：写入一次导入记录；相同 run_id 重复写入时忽略
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	reasons, err := json.Marshal(r.InvalidReasons)
	if err != nil {
		return fmt.Errorf("encode reasons: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO _geo_ingest_runs(run_id, source, built_at, duration_ms, features,
        valid_coords, invalid_coords, invalid_reasons, timesteps, min_timestamp, max_timestamp, total_agents, error)
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (run_id) DO NOTHING`,
		r.RunID, r.Source, r.BuiltAt, r.DurationMs, r.Features,
		r.ValidCoords, r.InvalidCoords, string(reasons), r.Timesteps, r.MinTimestamp, r.MaxTimestamp, r.TotalAgents, r.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}
	logger.L().Debug("audit_run_recorded", "run_id", r.RunID)
	return nil
}

// RecentRuns：按构建时间倒序返回最近的导入记录
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, source, built_at, duration_ms, features, valid_coords,
        invalid_coords, invalid_reasons, timesteps, min_timestamp, max_timestamp, total_agents, error
        FROM _geo_ingest_runs ORDER BY built_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	out := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		var reasons []byte
		if err := rows.Scan(&r.RunID, &r.Source, &r.BuiltAt, &r.DurationMs, &r.Features, &r.ValidCoords,
			&r.InvalidCoords, &reasons, &r.Timesteps, &r.MinTimestamp, &r.MaxTimestamp, &r.TotalAgents, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal(reasons, &r.InvalidReasons); err != nil {
			return nil, fmt.Errorf("decode reasons for %s: %w", r.RunID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
