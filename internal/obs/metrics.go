package obs

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/truthlang/truth/truth"
)

// Metrics owns its own prometheus.Registry rather than registering against
// prometheus.DefaultRegisterer, so a process can run more than one Program
// (as the test suite does) without tripping a duplicate-registration panic.
type Metrics struct {
	Registry *prometheus.Registry

	documentsOpened  prometheus.Counter
	documentsClosed  prometheus.Counter
	edits            prometheus.Counter
	faultsBySeverity *prometheus.CounterVec
	verificationSize prometheus.Gauge
}

// NewMetrics constructs and registers the counters/gauge the cause bus
// drives (spec §1 NEW, §4.9).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		documentsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "truth_documents_opened_total",
			Help: "Documents added to a Program via AddDocumentFromText/AddDocumentFromURI.",
		}),
		documentsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "truth_documents_closed_total",
			Help: "Documents removed from a Program via DeleteDocument.",
		}),
		edits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "truth_edits_total",
			Help: "Completed edit transactions across all documents.",
		}),
		faultsBySeverity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "truth_faults_total",
			Help: "Faults added to any document's fault set, by severity.",
		}, []string{"severity"}),
		verificationSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "truth_verification_queue_depth",
			Help: "Pending VerificationRequests not yet drained.",
		}),
	}
	reg.MustRegister(m.documentsOpened, m.documentsClosed, m.edits, m.faultsBySeverity, m.verificationSize)
	return m
}

// Attach subscribes m to program's cause bus. It is pure observation: no
// handler ever calls back into program or a Document mutator (spec §4.9).
func (m *Metrics) Attach(program *truth.Program, logger *slog.Logger) {
	program.Subscribe(truth.CauseDocumentCreate, func(truth.Cause) {
		m.documentsOpened.Inc()
	})
	program.Subscribe(truth.CauseDocumentDelete, func(truth.Cause) {
		m.documentsClosed.Inc()
	})
	program.Subscribe(truth.CauseEditComplete, func(c truth.Cause) {
		m.edits.Inc()
		if logger != nil {
			logger.Debug("edit complete", "document", c.Document.ID)
		}
	})
	program.Subscribe(truth.CauseFaultChange, func(c truth.Cause) {
		for _, f := range c.FaultsAdded {
			m.faultsBySeverity.WithLabelValues(f.Severity.String()).Inc()
			if logger == nil {
				continue
			}
			if f.IsError() {
				logger.Warn("fault added", "code", f.Code, "message", f.Message)
			} else {
				logger.Debug("fault added", "code", f.Code, "message", f.Message)
			}
		}
	})
}

// SetVerificationQueueDepth updates the gauge; callers typically call this
// after DrainVerificationQueue or after enqueuing new requests.
func (m *Metrics) SetVerificationQueueDepth(n int) {
	m.verificationSize.Set(float64(n))
}
