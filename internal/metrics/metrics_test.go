package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	ObserveRequest("GET", "", http.StatusNotFound, time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, before+1, after)
}

func TestObserveBatch(t *testing.T) {
	before := testutil.ToFloat64(ImportRowsTotal.WithLabelValues("movies", OutcomeInserted))
	ObserveBatch("movies", 3, 10*time.Millisecond)
	after := testutil.ToFloat64(ImportRowsTotal.WithLabelValues("movies", OutcomeInserted))
	assert.Equal(t, before+3, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest("GET", "/movies", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "movielens_http_requests_total"))
}
