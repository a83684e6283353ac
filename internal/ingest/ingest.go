// 包 ingest：流式读取智能体轨迹 GeoJSON，逐要素分类与校验并构建时间步索引
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
	"github.com/fabhiansan/tsunami-simulation/internal/logger"
	"github.com/fabhiansan/tsunami-simulation/internal/timestep"
)

var (
	ErrNotFeatureCollection = errors.New("geojson top-level value is not an object")
	ErrMissingFeatures      = errors.New("geojson has no top-level features array")
)

// DefaultCategory：缺少 agent_type 时使用的类别
const DefaultCategory = "Unknown"

// Options：导入参数，零值可用
type Options struct {
	Logger *slog.Logger
	// SampleLimit：保留的拒绝样例数量，默认 5
	SampleLimit int
	// DebugFeatures：以 debug 级别输出结构的前若干个要素，默认 5
	DebugFeatures int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.L()
	}
	if o.SampleLimit <= 0 {
		o.SampleLimit = 5
	}
	if o.DebugFeatures <= 0 {
		o.DebugFeatures = 5
	}
	return o
}

// Result：一次导入的产物，Index 已冻结为只读
type Result struct {
	Index   *timestep.Index
	Summary timestep.Summary
}

// File：打开并流式导入 GeoJSON 文件
// 异常：文件无法打开、顶层结构不是要素集合或流中出现语法错误时返回 error；单条要素或坐标的问题只计入拒绝统计。
func File(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geojson: %w", err)
	}
	defer f.Close()
	opts = opts.withDefaults()
	opts.Logger = opts.Logger.With("source", path)
	res, err := Reader(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", path, err)
	}
	res.Summary.Source = path
	return res, nil
}

// 文档注释：从任意 Reader 流式导入
// 背景：文件可能包含数十万要素，整体解析会先物化整棵文档树；这里按 token 前进，内存上限为单个要素。
// 约束：只向前读取一次，不回溯；features 之外的顶层成员按 token 跳过。
func Reader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()
	runID := uuid.NewString()
	l := opts.Logger.With("run_id", runID)
	l.Info("ingest_start")

	p := &pass{
		opts:   opts,
		l:      l,
		ix:     timestep.NewIndex(),
		counts: timestep.NewCounts(),
	}
	if err := p.run(ctx, newLiteralReader(r)); err != nil {
		l.Error("ingest_error", "err", err, "features", p.counts.Features)
		return nil, err
	}

	s := timestep.BuildSummary(p.ix, p.counts)
	s.RunID = runID
	s.BuiltAt = time.Now()
	s.DurationMs = time.Since(start).Milliseconds()

	l.Info("ingest_reasons", reasonAttrs(s.InvalidReasons))
	if len(s.Samples) > 0 {
		l.Info("ingest_invalid_samples", "samples", s.Samples)
	}
	l.Info("ingest_done",
		"timesteps", len(s.AllTimesteps),
		"features", s.Features,
		"valid", s.ValidCoords,
		"invalid", s.InvalidCoords,
		"duration_ms", s.DurationMs,
	)
	if !s.HasData() {
		l.Warn("ingest_no_timesteps")
	}
	return &Result{Index: p.ix, Summary: s}, nil
}

func reasonAttrs(m map[feature.Reason]int64) slog.Attr {
	args := make([]any, 0, len(feature.Reasons)*2)
	for _, r := range feature.Reasons {
		args = append(args, string(r), m[r])
	}
	return slog.Group("invalid_reasons", args...)
}

// pass：单次扫描的可变状态
type pass struct {
	opts   Options
	l      *slog.Logger
	ix     *timestep.Index
	counts timestep.Counts
}

func (p *pass) run(ctx context.Context, r io.Reader) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ErrNotFeatureCollection)
		}
		return fmt.Errorf("read document: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrNotFeatureCollection
	}

	found := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read member name: %w", err)
		}
		if name, _ := tok.(string); name != "features" || found {
			if err := skipValue(dec); err != nil {
				return fmt.Errorf("skip member %v: %w", tok, err)
			}
			continue
		}
		found = true
		if err := p.features(ctx, dec); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read document end: %w", err)
	}
	if !found {
		return ErrMissingFeatures
	}
	return nil
}

func (p *pass) features(ctx context.Context, dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read features: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("%w: features member is %v", ErrMissingFeatures, tok)
	}
	for dec.More() {
		if p.counts.Features%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode feature %d: %w", p.counts.Features, err)
		}
		p.feature(raw)
		p.counts.Features++
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("read features end: %w", err)
	}
	return nil
}

// feature：处理一个要素；raw 在返回后即可回收
func (p *pass) feature(raw any) {
	idx := p.counts.Features
	obj, _ := raw.(map[string]any)
	props, _ := obj["properties"].(map[string]any)
	step := timestepOf(props["timestamp"])
	category := categoryOf(props["agent_type"])
	geom, hasGeom := obj["geometry"].(map[string]any)

	if idx < int64(p.opts.DebugFeatures) {
		p.l.Debug("ingest_feature_sample",
			"idx", idx,
			"keys", keysOf(obj),
			"geometry_type", geom["type"],
			"timestep", step,
			"agent_type", category,
		)
	}

	coords, hasCoords := geom["coordinates"]
	if !hasGeom || !hasCoords || coords == nil {
		p.counts.Reject(feature.ReasonMissingGeometry)
		return
	}
	kind, _ := geom["type"].(string)
	for _, c := range feature.Classify(kind, feature.Of(coords)) {
		reason := c.Reason
		var xy feature.Coord
		if reason == "" {
			xy, reason = feature.Normalize(c.Pair)
		}
		if reason != "" {
			p.reject(idx, c.Pair, reason)
			continue
		}
		p.ix.Append(step, xy.X, xy.Y, category)
		p.counts.Accept()
	}
}

func (p *pass) reject(idx int64, pair feature.Pair, r feature.Reason) {
	p.counts.Reject(r)
	if r != feature.ReasonNonNumeric && r != feature.ReasonNonFinite {
		return
	}
	if len(p.counts.Samples) >= p.opts.SampleLimit {
		return
	}
	p.counts.Samples = append(p.counts.Samples, timestep.Sample{
		Feature: idx,
		X:       pair.X.String(),
		Y:       pair.Y.String(),
		Reason:  r,
	})
}

// timestepOf：整数值（含 3.0 这类整值小数）作为时间步，其余一律为 0
func timestepOf(v any) int {
	n, ok := v.(json.Number)
	if !ok {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0
	}
	return int(f)
}

func categoryOf(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return DefaultCategory
	}
}

func keysOf(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// skipValue：按 token 跳过一个完整的值，不物化其内容
func skipValue(dec *json.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}
