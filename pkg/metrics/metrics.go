// Package metrics exports dispatcher activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirrobot01/dockdeck/pkg/dispatch"
)

// Streams and the commands that feed them
var streams = map[string]string{
	dispatch.CmdEmitLogs:  "logs",
	dispatch.CmdPullImage: "pull",
}

// Recorder counts finished commands. It owns its registry so that several
// recorders can coexist in tests.
type Recorder struct {
	registry    *prometheus.Registry
	commands    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	streamItems *prometheus.CounterVec
}

// New creates a Recorder with its collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dockdeck_commands_total",
				Help: "Total dispatched commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "dockdeck_command_duration_seconds",
				Help: "Duration of dispatched commands",
				Buckets: []float64{
					0.005,
					0.025,
					0.1,
					0.5,
					1,
					5,
					30,
					120,
				},
			},
			[]string{"command"},
		),
		streamItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dockdeck_stream_items_total",
				Help: "Total items delivered by streaming commands",
			},
			[]string{"stream"},
		),
	}
	r.registry.MustRegister(
		r.commands,
		r.duration,
		r.streamItems,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Record implements dispatch.Recorder
func (r *Recorder) Record(ev dispatch.Event) {
	r.commands.WithLabelValues(ev.Command, ev.Outcome()).Inc()
	r.duration.WithLabelValues(ev.Command).Observe(ev.Duration.Seconds())
	if stream, ok := streams[ev.Command]; ok && ev.Items > 0 {
		r.streamItems.WithLabelValues(stream).Add(float64(ev.Items))
	}
}

// Handler returns an HTTP handler that exposes the recorder's metrics
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
