package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics counts listing attempts and imported rows.
type InventoryMetrics struct {
	listingAttempts *prometheus.CounterVec
	importRows      *prometheus.CounterVec
}

// NewInventoryMetrics registers the inventory counters on reg. A nil
// registerer yields a recorder that drops every observation.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	listingAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "listing_attempts_total",
		Help: "Attempts to list an item on a platform, by outcome and blocking rule.",
	}, []string{"platform", "outcome", "rule"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Rows processed by bulk import, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(listingAttempts, importRows)
	return &InventoryMetrics{
		listingAttempts: listingAttempts,
		importRows:      importRows,
	}
}

// ObserveListing records one listing attempt. rule is empty on success.
func (m *InventoryMetrics) ObserveListing(platform, outcome, rule string) {
	if m == nil || m.listingAttempts == nil {
		return
	}
	m.listingAttempts.WithLabelValues(normalizeLabel(platform), normalizeLabel(outcome), ruleLabel(rule)).Inc()
}

// ObserveImportRow records one processed import row.
func (m *InventoryMetrics) ObserveImportRow(outcome string) {
	if m == nil || m.importRows == nil {
		return
	}
	m.importRows.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

func ruleLabel(rule string) string {
	if rule == "" {
		return "none"
	}
	return rule
}
