package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recompute outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeSkipped         = "skipped"
	OutcomeFormulaNotFound = "formula_not_found"
	OutcomeError           = "error"
)

// Recorder collects quote pricing metrics. A nil Recorder records nothing.
type Recorder struct {
	recomputes *prometheus.CounterVec
	duration   prometheus.Histogram
	previews   prometheus.Counter
}

// New registers the pricing collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		recomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotes",
			Name:      "recomputes_total",
			Help:      "Quote recomputes by outcome.",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quotes",
			Name:      "recompute_duration_seconds",
			Help:      "Time spent recomputing and persisting a quote.",
			Buckets:   prometheus.DefBuckets,
		}),
		previews: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quotes",
			Name:      "previews_total",
			Help:      "Quote previews served.",
		}),
	}
}

// Recompute counts one recompute by outcome. Skipped calls are not timed.
func (r *Recorder) Recompute(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.recomputes.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		r.duration.Observe(elapsed.Seconds())
	}
}

// Preview counts one served preview.
func (r *Recorder) Preview() {
	if r == nil {
		return
	}
	r.previews.Inc()
}
