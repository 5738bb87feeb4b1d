package server

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	Extractions       prometheus.Counter
	ExtractionsFailed prometheus.Counter
	PromptsGenerated  prometheus.Counter
}

// NewMetrics creates and registers the collectors. A nil registerer uses
// the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Extractions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promptforge_extractions_total",
			Help: "Completed metadata extractions.",
		}),
		ExtractionsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promptforge_extractions_failed_total",
			Help: "Failed metadata extractions.",
		}),
		PromptsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promptforge_prompts_generated_total",
			Help: "Test prompts generated across all sessions.",
		}),
	}
	reg.MustRegister(m.Extractions, m.ExtractionsFailed, m.PromptsGenerated)
	return m
}
