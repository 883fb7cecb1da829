package moniker

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
	"io"
)

// dbMetrics holds the metrics of one DB. Every DB has its own set,
// so several databases in one process never share counters.
type dbMetrics struct {
	set *metrics.Set

	categoriesCreated *metrics.Counter
	namesCreated      *metrics.Counter
	namesDeleted      *metrics.Counter
	bootstrapDuration *metrics.Summary
}

func newDBMetrics(registry *NamespaceRegistry) *dbMetrics {
	set := metrics.NewSet()
	m := &dbMetrics{
		set:               set,
		categoriesCreated: set.NewCounter("moniker_categories_created_total"),
		namesCreated:      set.NewCounter("moniker_names_created_total"),
		namesDeleted:      set.NewCounter("moniker_names_deleted_total"),
		bootstrapDuration: set.NewSummary("moniker_bootstrap_duration_seconds"),
	}

	// the meta namespace is not a category
	set.NewGauge("moniker_categories", func() float64 {
		n := registry.Len() - 1
		if n < 0 {
			n = 0
		}
		return float64(n)
	})
	return m
}

// opError counts a failed operation
func (m *dbMetrics) opError(op string) {
	m.set.GetOrCreateCounter(fmt.Sprintf(`moniker_errors_total{op=%q}`, op)).Inc()
}

// WriteMetrics writes all metrics of the database in Prometheus text format to w
func (d *DB) WriteMetrics(w io.Writer) {
	d.metrics.set.WritePrometheus(w)
}
