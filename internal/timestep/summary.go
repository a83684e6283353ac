package timestep

import (
	"time"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
)

const (
	NoTimestepsError      = "No valid timesteps found in the GeoJSON file"
	NoTimestepsSuggestion = "Check the GeoJSON file format and coordinate values"
)

// Sample：被拒绝坐标的样例，便于排查数据问题
type Sample struct {
	Feature int64          `json:"feature"`
	X       string         `json:"x"`
	Y       string         `json:"y"`
	Reason  feature.Reason `json:"reason"`
}

// Counts：导入过程中累积的计数
type Counts struct {
	Features int64
	Valid    int64
	Invalid  int64
	Reasons  map[feature.Reason]int64
	Samples  []Sample
}

// NewCounts：按固定原因集合初始化为 0
func NewCounts() Counts {
	m := make(map[feature.Reason]int64, len(feature.Reasons))
	for _, r := range feature.Reasons {
		m[r] = 0
	}
	return Counts{Reasons: m}
}

// Reject：记录一次拒绝
func (c *Counts) Reject(r feature.Reason) {
	c.Invalid++
	c.Reasons[r]++
}

// Accept：记录一次接受
func (c *Counts) Accept() { c.Valid++ }

// 文档注释：导入统计（元数据）
// 背景：与索引同一遍扫描产出；索引为空时以 Error/Suggestion 说明原因而非返回错误，调用方据此降级展示。
// 约束：InvalidReasons 始终包含全部固定原因；MinTimestamp/MaxTimestamp 在无数据时为 0。
type Summary struct {
	RunID          string                   `json:"run_id,omitempty"`
	Source         string                   `json:"source,omitempty"`
	MaxTimestamp   int                      `json:"max_timestamp"`
	MinTimestamp   int                      `json:"min_timestamp"`
	AllTimesteps   []int                    `json:"all_timesteps"`
	TotalAgents    int                      `json:"total_agents"`
	ValidCoords    int64                    `json:"valid_coords"`
	InvalidCoords  int64                    `json:"invalid_coords"`
	InvalidReasons map[feature.Reason]int64 `json:"invalid_reasons,omitempty"`
	Features       int64                    `json:"features"`
	Samples        []Sample                 `json:"samples,omitempty"`
	Error          string                   `json:"error,omitempty"`
	Suggestion     string                   `json:"suggestion,omitempty"`
	BuiltAt        time.Time                `json:"built_at"`
	DurationMs     int64                    `json:"duration_ms"`
}

// HasData：是否存在至少一个时间步
func (s Summary) HasData() bool { return len(s.AllTimesteps) > 0 }

// BuildSummary：在扫描结束后由已冻结的索引与计数生成统计
func BuildSummary(ix *Index, c Counts) Summary {
	steps := ix.Freeze().Timesteps()
	s := Summary{
		AllTimesteps:   append([]int{}, steps...),
		ValidCoords:    c.Valid,
		InvalidCoords:  c.Invalid,
		InvalidReasons: c.Reasons,
		Features:       c.Features,
		Samples:        c.Samples,
	}
	if len(steps) == 0 {
		s.Error = NoTimestepsError
		s.Suggestion = NoTimestepsSuggestion
		return s
	}
	s.MinTimestamp = steps[0]
	s.MaxTimestamp = steps[len(steps)-1]
	if b, ok := ix.Bucket(steps[0]); ok {
		s.TotalAgents = b.Len()
	}
	return s
}
