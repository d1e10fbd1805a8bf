package claims

import (
	"github.com/Takashi-Doyle/merkledrop-rns-contract/seal"
)

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSealer seals the ledger state after every committed operation.
func WithSealer(sealer seal.Sealer, signer seal.Signer) Option {
	return func(s *Service) {
		s.sealer = &sealer
		s.signer = signer
	}
}
