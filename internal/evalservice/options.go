package evalservice

import (
	"log/slog"

	"github.com/starford/sunc/internal/models"
)

// Option configures a Service.
type Option func(*Service)

// WithTR sets the numeric generator normalisation substituted into reported
// values. The default is 1/2.
func WithTR(tr float64) Option {
	return func(s *Service) { s.tr = tr }
}

// WithMode sets the mode used when a request names none.
func WithMode(m models.Mode) Option {
	return func(s *Service) { s.mode = m }
}

// WithMaxParallel bounds the goroutines of one colour matrix.
func WithMaxParallel(n int) Option {
	return func(s *Service) { s.maxParallel = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPublisher receives every freshly computed evaluation.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}
