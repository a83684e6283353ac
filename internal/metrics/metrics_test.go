package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabhiansan/tsunami-simulation/internal/feature"
	"github.com/fabhiansan/tsunami-simulation/internal/ingest"
	"github.com/fabhiansan/tsunami-simulation/internal/timestep"
)

func TestObserveIngest(t *testing.T) {
	ix := timestep.NewIndex()
	ix.Append(2, 1, 1, "Adult")
	ix.Append(4, 1, 1, "Adult")
	ix.Freeze()
	c := timestep.NewCounts()
	c.Features = 3
	c.Accept()
	c.Accept()
	c.Reject(feature.ReasonNonFinite)

	before := testutil.ToFloat64(IngestRunsTotal.WithLabelValues("ok"))
	ObserveIngest(&ingest.Result{Index: ix, Summary: timestep.BuildSummary(ix, c)})

	assert.Equal(t, before+1, testutil.ToFloat64(IngestRunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(IngestFeatures))
	assert.Equal(t, 2.0, testutil.ToFloat64(IngestValidCoords))
	assert.Equal(t, 2.0, testutil.ToFloat64(IngestTimesteps))
	assert.Equal(t, 1.0, testutil.ToFloat64(IngestInvalidCoords.WithLabelValues(string(feature.ReasonNonFinite))))
	assert.Equal(t, 0.0, testutil.ToFloat64(IngestInvalidCoords.WithLabelValues(string(feature.ReasonTypeError))))
}

func TestObserveIngestError(t *testing.T) {
	before := testutil.ToFloat64(IngestRunsTotal.WithLabelValues("error"))
	ObserveIngestError(errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(IngestRunsTotal.WithLabelValues("error")))
}

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("timestep", "404"))
	ObserveRequest("timestep", http.StatusNotFound, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues("timestep", "404")))
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "geo_ingest_runs_total"))
}
