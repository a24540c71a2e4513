package notifiermock

import (
	"context"
	"sync"

	"creditos-backend/internal/domain/notification"
)

var _ notification.Sink = (*Sink)(nil)

// Message is one recorded delivery.
type Message struct {
	Kind       string // "token" or "status"
	Address    string
	Name       string
	FilingCode string
	Token      string
	State      string
	Reason     string
}

// Sink records every call. Err, when set, is returned from every send
// after the call is recorded.
type Sink struct {
	mu   sync.Mutex
	Sent []Message
	Err  error
}

func (s *Sink) SendToken(_ context.Context, address, name, filingCode, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, Message{Kind: "token", Address: address, Name: name, FilingCode: filingCode, Token: token})
	return s.Err
}

func (s *Sink) SendStatus(_ context.Context, address, name, filingCode, state, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, Message{Kind: "status", Address: address, Name: name, FilingCode: filingCode, State: state, Reason: reason})
	return s.Err
}

// Messages returns a snapshot of recorded deliveries.
func (s *Sink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Sent...)
}
