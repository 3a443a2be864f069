package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/neonrails-go/internal/application/game"
)

// EconomyCollector mirrors the network state into gauges and counts the
// changes a session publishes. It is a game.Observer.
type EconomyCollector struct {
	credits    prometheus.Gauge
	reputation prometheus.Gauge
	energy     prometheus.Gauge
	tick       prometheus.Gauge
	stations   prometheus.Gauge
	income     prometheus.Gauge
	playing    prometheus.Gauge

	eventsTotal   *prometheus.CounterVec
	buildsTotal   *prometheus.CounterVec
	upgradesTotal prometheus.Counter
	movements     *prometheus.CounterVec
}

// NewEconomyCollector creates a new economy collector
func NewEconomyCollector() *EconomyCollector {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}

	return &EconomyCollector{
		credits:    gauge("credits", "Current credit balance"),
		reputation: gauge("reputation", "Current reputation (0-100)"),
		energy:     gauge("energy", "Current energy (0-max)"),
		tick:       gauge("tick", "Ticks elapsed since the network was founded"),
		stations:   gauge("stations", "Number of stations in the network"),
		income:     gauge("income_per_tick", "Revenue paid per tick by active stations"),
		playing:    gauge("playing", "1 while the simulation clock runs, 0 while paused"),

		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_total",
				Help:      "Random events applied by impact",
			},
			[]string{"impact"},
		),

		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "builds_total",
				Help:      "Station constructions by outcome",
			},
			[]string{"outcome"},
		),

		upgradesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upgrades_total",
			Help:      "Station upgrades applied",
		}),

		movements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "credit_movements_total",
				Help:      "Credits moved by transaction type and direction",
			},
			[]string{"type", "direction"},
		),
	}
}

// Register registers all economy metrics with the Prometheus registry
func (c *EconomyCollector) Register() error {
	return register(
		c.credits, c.reputation, c.energy, c.tick, c.stations, c.income, c.playing,
		c.eventsTotal, c.buildsTotal, c.upgradesTotal, c.movements,
	)
}

// Observe updates the metrics from a published change
func (c *EconomyCollector) Observe(change game.Change) {
	s := change.State
	c.credits.Set(float64(s.Credits))
	c.reputation.Set(float64(s.Reputation))
	c.energy.Set(s.Energy)
	c.tick.Set(float64(s.Tick))
	c.stations.Set(float64(len(s.Stations)))
	c.income.Set(float64(s.ActiveIncome()))
	if change.Playing {
		c.playing.Set(1)
	} else {
		c.playing.Set(0)
	}

	switch change.Cause {
	case game.CauseBuildCommitted:
		c.buildsTotal.WithLabelValues("committed").Inc()
	case game.CauseBuildRolledBack:
		c.buildsTotal.WithLabelValues("rolled_back").Inc()
	case game.CauseUpgrade:
		c.upgradesTotal.Inc()
	case game.CauseEvent:
		if change.Event != nil {
			c.eventsTotal.WithLabelValues(string(change.Event.Impact)).Inc()
		}
	}

	for _, mv := range change.Movements {
		if mv.Amount > 0 {
			c.movements.WithLabelValues(mv.Type.String(), "in").Add(float64(mv.Amount))
		} else {
			c.movements.WithLabelValues(mv.Type.String(), "out").Add(float64(-mv.Amount))
		}
	}
}
