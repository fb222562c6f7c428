// Package metrics exposes prometheus counters for the bot. A nil *Metrics is
// valid and records nothing, which keeps tests free of registry setup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

type Metrics struct {
	commands     *prometheus.CounterVec
	components   *prometheus.CounterVec
	storeUpdates *prometheus.CounterVec
	syncChanges  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildbot",
			Name:      "commands_total",
			Help:      "Dispatched commands by surface, command and outcome.",
		}, []string{"surface", "command", "outcome"}),
		components: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildbot",
			Name:      "component_interactions_total",
			Help:      "Component interactions by custom id and outcome.",
		}, []string{"component", "outcome"}),
		storeUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildbot",
			Name:      "store_updates_total",
			Help:      "Store updates by table and outcome.",
		}, []string{"table", "outcome"}),
		syncChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "guildbot",
			Name:      "command_sync_changes_total",
			Help:      "Application command changes applied by sync.",
		}, []string{"scope", "kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.components, m.storeUpdates, m.syncChanges)
	}
	return m
}

func (m *Metrics) Command(surface domain.Surface, command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(string(surface), command, outcome).Inc()
}

func (m *Metrics) Component(id, outcome string) {
	if m == nil {
		return
	}
	m.components.WithLabelValues(id, outcome).Inc()
}

func (m *Metrics) StoreUpdate(table, outcome string) {
	if m == nil {
		return
	}
	m.storeUpdates.WithLabelValues(table, outcome).Inc()
}

func (m *Metrics) SyncChanges(scope domain.Scope, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	label := "guild"
	if scope.IsGlobal() {
		label = "global"
	}
	m.syncChanges.WithLabelValues(label, kind).Add(float64(n))
}
