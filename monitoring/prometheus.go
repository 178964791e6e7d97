package monitoring

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mezonai/stakeledger/logx"
)

type OperationResult string

const (
	ResultSuccess OperationResult = "success"
	ResultFailure OperationResult = "failure"
)

type stakePromMetrics struct {
	operationCount *prometheus.CounterVec
	totalStaked    *prometheus.GaugeVec
	treasury       prometheus.Gauge
	rewardsPaid    prometheus.Counter
	panicCount     prometheus.Counter
}

func newStakePromMetrics(reg prometheus.Registerer) *stakePromMetrics {
	factory := promauto.With(reg)
	return &stakePromMetrics{
		operationCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stakeledger_operation_total",
				Help: "The total number of staking operations by outcome",
			},
			[]string{"op", "result"},
		),
		totalStaked: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stakeledger_total_staked",
				Help: "Amount currently held in custody per asset",
			},
			[]string{"asset"},
		),
		treasury: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stakeledger_treasury_balance",
				Help: "Reward asset left in the treasury",
			},
		),
		rewardsPaid: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stakeledger_rewards_paid_total",
				Help: "The total reward paid out of the treasury",
			},
		),
		panicCount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stakeledger_panic_count",
				Help: "The total number of recovered panics",
			},
		),
	}
}

var (
	initOnce     sync.Once
	stakeMetrics *stakePromMetrics
)

// InitMetrics registers the metrics on the default registry. Calling it more
// than once is a no-op.
func InitMetrics() {
	initOnce.Do(func() {
		stakeMetrics = newStakePromMetrics(prometheus.DefaultRegisterer)
	})
}

// metrics returns the collectors, registering them on first use
func metrics() *stakePromMetrics {
	InitMetrics()
	return stakeMetrics
}

// Handler serves the default registry
func Handler() http.Handler {
	logx.Info("MONITORING", "Registering prometheus metrics")
	return promhttp.Handler()
}

func RecordOperation(op string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	metrics().operationCount.With(prometheus.Labels{
		"op":     op,
		"result": string(result),
	}).Inc()
}

func SetTotalStaked(asset string, amount uint64) {
	metrics().totalStaked.With(prometheus.Labels{
		"asset": asset,
	}).Set(float64(amount))
}

func SetTreasuryBalance(amount uint64) {
	metrics().treasury.Set(float64(amount))
}

func AddRewardsPaid(amount uint64) {
	metrics().rewardsPaid.Add(float64(amount))
}

func IncreasePanicCount() {
	metrics().panicCount.Inc()
}
