package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabhiansan/tsunami-simulation/internal/logger"
)

const fixtureDoc = `{"type":"FeatureCollection","features":[
	{"geometry":{"type":"Point","coordinates":[1,2]},"properties":{"timestamp":5,"agent_type":"Adult"}},
	{"geometry":{"type":"Point","coordinates":[3,4]},"properties":{"timestamp":5,"agent_type":"Teen"}},
	{"geometry":{"type":"Point","coordinates":[NaN,4]},"properties":{"timestamp":6}},
	{"geometry":{"type":"Point","coordinates":[7,8]},"properties":{"timestamp":9}}
]}`

func writeFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "sim.geojson")
	require.NoError(t, os.WriteFile(p, []byte(fixtureDoc), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

// runContext：每次都显式设置上下文，RootCmd 会保留上一次执行的 ctx
func runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	logger.Set(slog.New(slog.NewTextHandler(io.Discard, nil)))
	filePath, formatFlag = "", "text"
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetArgs(args)
	err := Execute(ctx)
	return out.String(), err
}

func TestSummary_JSON(t *testing.T) {
	p := writeFixture(t)
	out, err := run(t, "summary", "--file", p, "--format", "json")
	require.NoError(t, err)

	var s map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, []any{5.0, 9.0}, s["all_timesteps"])
	assert.Equal(t, 2.0, s["total_agents"])
	assert.Equal(t, 3.0, s["valid_coords"])
	assert.Equal(t, 1.0, s["invalid_coords"])
}

func TestSummary_Text(t *testing.T) {
	out, err := run(t, "summary", "-f", writeFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "range")
	assert.Contains(t, out, "5..9")
}

func TestSummary_FromEnv(t *testing.T) {
	t.Setenv("GEOJSON_PATH", writeFixture(t))
	_, err := run(t, "summary")
	require.NoError(t, err)
}

func TestStep(t *testing.T) {
	p := writeFixture(t)
	out, err := run(t, "step", "5", "-f", p, "--format", "json")
	require.NoError(t, err)
	var b struct {
		X     []float64 `json:"x"`
		Types []string  `json:"types"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, []float64{1, 3}, b.X)
	assert.Equal(t, []string{"Adult", "Teen"}, b.Types)
}

func TestStep_NotFound(t *testing.T) {
	_, err := run(t, "step", "6", "-f", writeFixture(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Timestep 6 not found")
	assert.Contains(t, err.Error(), "[5 9]")
}

func TestStep_Invalid(t *testing.T) {
	_, err := run(t, "step", "five", "-f", writeFixture(t))
	require.Error(t, err)
}

func TestReasons(t *testing.T) {
	out, err := run(t, "reasons", "-f", writeFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "non_finite")
	assert.Contains(t, out, "missing_geometry")
}

func TestMissingFile(t *testing.T) {
	_, err := run(t, "summary", "-f", filepath.Join(t.TempDir(), "absent.geojson"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecute_CancelledContextStopsIngest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := runContext(t, ctx, "summary", "-f", writeFixture(t), "--format", "json")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out)

	_, err = run(t, "summary", "-f", writeFixture(t))
	require.NoError(t, err)
}
