package notifier

import (
	"context"
	"log/slog"

	"creditos-backend/internal/domain/notification"
)

// LogSink writes notifications to the log instead of delivering them. It is
// the default outside production.
type LogSink struct{ log *slog.Logger }

var _ notification.Sink = (*LogSink)(nil)

func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{log: l.With("component", "notifier")}
}

func (s *LogSink) SendToken(ctx context.Context, address, name, filingCode, token string) error {
	s.log.InfoContext(ctx, "token notification",
		"address", address, "name", name, "filing_code", filingCode, "token", token)
	return nil
}

func (s *LogSink) SendStatus(ctx context.Context, address, name, filingCode, state, reason string) error {
	s.log.InfoContext(ctx, "status notification",
		"address", address, "name", name, "filing_code", filingCode, "state", state, "reason", reason)
	return nil
}
