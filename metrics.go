package folio

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records index rebuilds. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg           *prom.Registry
	builds        *prom.CounterVec
	buildDuration prom.Histogram
	posts         prom.Gauge
	tags          prom.Gauge
	problems      prom.Gauge
}

// NewMetrics registers the index metrics on reg, or on a new registry when
// reg is nil.
func NewMetrics(reg *prom.Registry) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "folio",
			Name:      "index_builds_total",
			Help:      "Index passes by result",
		}, []string{"result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "folio",
			Name:      "index_build_duration_seconds",
			Help:      "Duration of successful index passes",
			Buckets:   prom.DefBuckets,
		}),
		posts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "folio",
			Name:      "indexed_posts",
			Help:      "Posts in the current index",
		}),
		tags: prom.NewGauge(prom.GaugeOpts{
			Namespace: "folio",
			Name:      "indexed_tags",
			Help:      "Distinct tags in the current index",
		}),
		problems: prom.NewGauge(prom.GaugeOpts{
			Namespace: "folio",
			Name:      "index_problems",
			Help:      "Documents excluded from the current index",
		}),
	}
	reg.MustRegister(m.builds, m.buildDuration, m.posts, m.tags, m.problems)
	return m
}

func (m *Metrics) observeBuild(idx *Index, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.builds.WithLabelValues("error").Inc()
		return
	}
	m.builds.WithLabelValues("ok").Inc()
	m.buildDuration.Observe(idx.Took().Seconds())
	m.posts.Set(float64(idx.Len()))
	m.tags.Set(float64(len(idx.tags)))
	m.problems.Set(float64(len(idx.problems)))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
