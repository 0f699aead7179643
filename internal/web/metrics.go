package web

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the bot's instrumentation surface. Every counter has a hook
// shape elsewhere in the tree so packages do not import prometheus directly.
type Metrics struct {
	Commands       *prometheus.CounterVec
	TracksPlayed   prometheus.Counter
	Votes          *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skipjack",
			Name:      "commands_total",
			Help:      "Dispatched slash commands.",
		}, []string{"command"}),
		TracksPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skipjack",
			Name:      "tracks_played_total",
			Help:      "Tracks that started playing.",
		}),
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skipjack",
			Name:      "votes_total",
			Help:      "Resolved votes by outcome.",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skipjack",
			Name:      "active_sessions",
			Help:      "Guilds with a live voice session.",
		}),
	}
	reg.MustRegister(m.Commands, m.TracksPlayed, m.Votes, m.ActiveSessions)
	return m
}
