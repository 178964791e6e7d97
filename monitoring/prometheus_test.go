package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(metrics().operationCount.With(prometheus.Labels{"op": "stake", "result": "failure"}))

	RecordOperation("stake", errors.New("boom"))
	RecordOperation("stake", nil)

	after := testutil.ToFloat64(metrics().operationCount.With(prometheus.Labels{"op": "stake", "result": "failure"}))
	assert.Equal(t, before+1, after)
}

func TestGauges(t *testing.T) {
	SetTotalStaked("mint", 42)
	SetTreasuryBalance(7)

	assert.Equal(t, 42.0, testutil.ToFloat64(metrics().totalStaked.With(prometheus.Labels{"asset": "mint"})))
	assert.Equal(t, 7.0, testutil.ToFloat64(metrics().treasury))
}

func TestHandler(t *testing.T) {
	InitMetrics()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stakeledger_panic_count")
}
