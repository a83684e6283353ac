package timestep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
)

func TestIndex_AppendKeepsOrder(t *testing.T) {
	ix := NewIndex()
	ix.Append(3, 12.5, 45.0, "Adult")
	ix.Append(1, 1, 2, "Child")
	ix.Append(3, 0, -1, "Elder")
	ix.Freeze()

	b, ok := ix.Bucket(3)
	require.True(t, ok)
	assert.Equal(t, []float64{12.5, 0}, b.X)
	assert.Equal(t, []float64{45.0, -1}, b.Y)
	assert.Equal(t, []string{"Adult", "Elder"}, b.Types)
	assert.Equal(t, []int{1, 3}, ix.Timesteps())
	assert.Equal(t, 3, ix.Agents())

	_, ok = ix.Bucket(2)
	assert.False(t, ok)
}

func TestIndex_FrozenRejectsAppend(t *testing.T) {
	ix := NewIndex().Freeze()
	assert.Panics(t, func() { ix.Append(0, 1, 1, "Adult") })
}

func TestIndex_Head(t *testing.T) {
	ix := NewIndex()
	for i := 30; i > 0; i-- {
		ix.Append(i*2, 0, 0, "Teen")
	}
	ix.Freeze()
	head := ix.Head(20)
	require.Len(t, head, 20)
	assert.Equal(t, 2, head[0])
	assert.Equal(t, 40, head[19])
	assert.IsIncreasing(t, head)
	assert.Len(t, NewIndex().Freeze().Head(20), 0)
}

func TestBuildSummary(t *testing.T) {
	ix := NewIndex()
	ix.Append(-2, 0, 0, "Adult")
	ix.Append(-2, 1, 1, "Adult")
	ix.Append(10, 0, 0, "Car")
	c := NewCounts()
	c.Accept()
	c.Accept()
	c.Accept()
	c.Reject(feature.ReasonNonFinite)

	s := BuildSummary(ix, c)
	assert.Equal(t, []int{-2, 10}, s.AllTimesteps)
	assert.Equal(t, -2, s.MinTimestamp)
	assert.Equal(t, 10, s.MaxTimestamp)
	assert.Equal(t, 2, s.TotalAgents)
	assert.EqualValues(t, 3, s.ValidCoords)
	assert.EqualValues(t, 1, s.InvalidCoords)
	assert.EqualValues(t, 1, s.InvalidReasons[feature.ReasonNonFinite])
	assert.Empty(t, s.Error)
	assert.True(t, s.HasData())
}

func TestBuildSummary_Empty(t *testing.T) {
	c := NewCounts()
	c.Reject(feature.ReasonMissingGeometry)
	s := BuildSummary(NewIndex(), c)

	assert.False(t, s.HasData())
	assert.Equal(t, NoTimestepsError, s.Error)
	assert.Equal(t, NoTimestepsSuggestion, s.Suggestion)
	assert.Zero(t, s.MinTimestamp)
	assert.Zero(t, s.MaxTimestamp)
	assert.Zero(t, s.TotalAgents)
	assert.NotNil(t, s.AllTimesteps)
	assert.Len(t, s.InvalidReasons, len(feature.Reasons))
	assert.EqualValues(t, 1, s.InvalidReasons[feature.ReasonMissingGeometry])
}
