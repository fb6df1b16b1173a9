package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Decision metrics
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darwin_bot_decisions_total",
			Help: "Total number of jury decisions by action",
		},
		[]string{"symbol", "action"},
	)

	decisionConfidence = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "darwin_bot_decision_confidence",
			Help: "Confidence of the most recent jury decision",
		},
		[]string{"symbol"},
	)

	// Population metrics
	populationSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "darwin_bot_population_size",
			Help: "Current number of genotypes in the population",
		},
		[]string{"symbol"},
	)

	leaderEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "darwin_bot_leader_equity",
			Help: "Phantom equity of the top-ranked genotype",
		},
		[]string{"symbol", "genotype"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darwin_bot_generations_total",
			Help: "Total number of evolution cycles completed",
		},
		[]string{"symbol"},
	)

	// Regime metrics
	regimeHurst = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "darwin_bot_regime_hurst",
			Help: "Base-timeframe Hurst exponent",
		},
		[]string{"symbol"},
	)

	regimeEntropy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "darwin_bot_regime_entropy",
			Help: "Base-timeframe normalized Shannon entropy",
		},
		[]string{"symbol"},
	)

	regimeAlignment = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "darwin_bot_regime_alignment",
			Help: "Cross-timeframe alignment score",
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darwin_bot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(decisionConfidence)
	prometheus.MustRegister(populationSize)
	prometheus.MustRegister(leaderEquity)
	prometheus.MustRegister(generationsTotal)
	prometheus.MustRegister(regimeHurst)
	prometheus.MustRegister(regimeEntropy)
	prometheus.MustRegister(regimeAlignment)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordDecision records a jury decision metric
func RecordDecision(symbol, action string, confidence float64) {
	decisionsTotal.WithLabelValues(symbol, action).Inc()
	decisionConfidence.WithLabelValues(symbol).Set(confidence)
}

// UpdatePopulation updates the population gauges
func UpdatePopulation(symbol string, size int, leaderName string, equity float64) {
	populationSize.WithLabelValues(symbol).Set(float64(size))
	if leaderName != "" {
		leaderEquity.WithLabelValues(symbol, leaderName).Set(equity)
	}
}

// RecordGeneration records a completed evolution cycle
func RecordGeneration(symbol string) {
	generationsTotal.WithLabelValues(symbol).Inc()
}

// UpdateRegime updates the regime gauges
func UpdateRegime(symbol string, hurst, entropy, alignment float64) {
	regimeHurst.WithLabelValues(symbol).Set(hurst)
	regimeEntropy.WithLabelValues(symbol).Set(entropy)
	regimeAlignment.WithLabelValues(symbol).Set(alignment)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
