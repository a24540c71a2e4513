package notification

import "context"

// Sink delivers applicant-facing messages. Implementations do not retry.
type Sink interface {
	SendToken(ctx context.Context, address, name, filingCode, token string) error
	SendStatus(ctx context.Context, address, name, filingCode, state, reason string) error
}
