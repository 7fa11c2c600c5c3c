package receipt

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for receipt processing. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	gatherer             prometheus.Gatherer
	receiptsProcessed    *prometheus.CounterVec
	itemsParsed          prometheus.Counter
	linesDropped         prometheus.Counter
	translationFallbacks prometheus.Counter
	recognitionSeconds   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		receiptsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "receipt_splitter",
			Name:      "receipts_processed_total",
			Help:      "Uploaded receipts by processing outcome.",
		}, []string{"outcome"}),
		itemsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receipt_splitter",
			Name:      "items_parsed_total",
			Help:      "Line items extracted from recognized text.",
		}),
		linesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receipt_splitter",
			Name:      "lines_dropped_total",
			Help:      "Non-blank receipt lines that matched no item pattern.",
		}),
		translationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receipt_splitter",
			Name:      "translation_fallbacks_total",
			Help:      "Item names kept untranslated because translation failed.",
		}),
		recognitionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "receipt_splitter",
			Name:      "recognition_seconds",
			Help:      "Time spent waiting for text recognition.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
		}),
	}
	reg.MustRegister(
		m.receiptsProcessed,
		m.itemsParsed,
		m.linesDropped,
		m.translationFallbacks,
		m.recognitionSeconds,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) receiptProcessed(outcome string) {
	if m == nil {
		return
	}
	m.receiptsProcessed.WithLabelValues(outcome).Inc()
}

func (m *Metrics) parsed(p ParsedReceipt) {
	if m == nil {
		return
	}
	m.itemsParsed.Add(float64(len(p.Items)))
	m.linesDropped.Add(float64(p.Dropped))
}

func (m *Metrics) translationFallback() {
	if m == nil {
		return
	}
	m.translationFallbacks.Inc()
}

func (m *Metrics) observeRecognition(d time.Duration) {
	if m == nil {
		return
	}
	m.recognitionSeconds.Observe(d.Seconds())
}
