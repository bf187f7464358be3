// Package metrics exposes pipeline counters through a Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linetiles/linetiles/gas"
)

const namespace = "linetiles"

// Recorder implements gas.Recorder on its own registry.
type Recorder struct {
	registry     *prometheus.Registry
	convolutions *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	pages        prometheus.Counter
	tiles        prometheus.Counter
	missing      *prometheus.CounterVec
}

var _ gas.Recorder = (*Recorder)(nil)

// NewRecorder registers the pipeline counters on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		convolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "convolutions_total",
			Help:      "Convolved model spectra computed, by model.",
		}, []string{"model"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Convolution cache lookups by result.",
		}, []string{"result"}),
		pages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Tile pages emitted.",
		}),
		tiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tiles_total",
			Help:      "Tiles emitted.",
		}),
		missing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_total",
			Help:      "Items skipped for lack of input, by kind.",
		}, []string{"kind"}),
	}
	r.registry.MustRegister(r.convolutions, r.cacheLookups, r.pages, r.tiles, r.missing)
	return r
}

// Registry returns the registry holding the counters.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the current values in the text exposition format, for the node
// exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func (r *Recorder) ConvolutionComputed(model string) { r.convolutions.WithLabelValues(model).Inc() }
func (r *Recorder) CacheHit()                        { r.cacheLookups.WithLabelValues("hit").Inc() }
func (r *Recorder) CacheMiss()                       { r.cacheLookups.WithLabelValues("miss").Inc() }
func (r *Recorder) PageEmitted()                     { r.pages.Inc() }
func (r *Recorder) TileEmitted()                     { r.tiles.Inc() }
func (r *Recorder) MissingTransition()               { r.missing.WithLabelValues("transition").Inc() }
func (r *Recorder) MissingModelOutput()              { r.missing.WithLabelValues("model_output").Inc() }
