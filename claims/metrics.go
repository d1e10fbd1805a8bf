package claims

import (
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledgerstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpCreate           = "create"
	OpClaim            = "claim"
	OpPayout           = "payout"
	OpClose            = "close"
	OpUpdateWindow     = "update_window"
	OpUpdateCommitment = "update_commitment"
	OpTeardown         = "teardown"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

type Metrics struct {
	Operations        *prometheus.CounterVec
	ClaimedAmount     prometheus.Counter
	FalsePositiveRate *prometheus.GaugeVec
}

// NewMetrics registers the service metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "claimledger_operations_total",
			Help: "Ledger operations by operation and outcome (ok, a ledger error kind, or error)",
		}, []string{"op", "outcome"}),
		ClaimedAmount: f.NewCounter(prometheus.CounterOpts{
			Name: "claimledger_claimed_amount_total",
			Help: "Sum of amounts paid out by successful claims",
		}),
		FalsePositiveRate: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "claimledger_residue_false_positive_rate",
			Help: "Probability an unclaimed slot is refused, per ledger",
		}, []string{"ledger"}),
	}
}

// Outcome is the metrics label for the result of an operation.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if kind := ledger.ErrorKind(err); kind != "" {
		return kind
	}
	return OutcomeError
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, Outcome(err)).Inc()
}

func (m *Metrics) claimed(id ledgerstore.LedgerID, l *ledger.Ledger, amount uint64) {
	if m == nil {
		return
	}
	m.ClaimedAmount.Add(float64(amount))
	lanes := l.Lanes()
	m.FalsePositiveRate.WithLabelValues(id.String()).Set(lanes.FalsePositiveRate())
}

func (m *Metrics) forget(id ledgerstore.LedgerID) {
	if m == nil {
		return
	}
	m.FalsePositiveRate.DeleteLabelValues(id.String())
}
