// 包 migrate：启动时建表
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fabhiansan/tsunami-simulation/internal/logger"
)

// Statements：审计表结构，按顺序执行
var Statements = []string{
	`CREATE TABLE IF NOT EXISTS _geo_ingest_runs (
        run_id UUID PRIMARY KEY,
        source TEXT NOT NULL,
        built_at TIMESTAMPTZ NOT NULL,
        duration_ms BIGINT NOT NULL,
        features BIGINT NOT NULL,
        valid_coords BIGINT NOT NULL,
        invalid_coords BIGINT NOT NULL,
        invalid_reasons JSONB NOT NULL DEFAULT '{}'::jsonb,
        timesteps INT NOT NULL,
        min_timestamp INT NOT NULL,
        max_timestamp INT NOT NULL,
        total_agents INT NOT NULL,
        error TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE INDEX IF NOT EXISTS idx_geo_ingest_runs_built_at ON _geo_ingest_runs(built_at DESC)`,
}

// 背景：首次运行自动创建审计表，保障导入记录写入
// 约束：使用 IF NOT EXISTS，可重复执行
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, s := range Statements {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
