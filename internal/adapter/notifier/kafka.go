package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creditos-backend/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventToken  = "solicitud.token"
	EventStatus = "solicitud.status"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Event is the payload published for a mail relay to consume.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Address    string    `json:"address"`
	Name       string    `json:"name"`
	FilingCode string    `json:"filing_code"`
	Token      string    `json:"token,omitempty"`
	State      string    `json:"state,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaSink publishes one event per notification, keyed by filing code so a
// request's messages stay ordered within a partition.
type KafkaSink struct {
	w   messageWriter
	now func() time.Time
}

var _ notification.Sink = (*KafkaSink)(nil)

func NewKafkaSink(w messageWriter) *KafkaSink {
	return &KafkaSink{w: w, now: func() time.Time { return time.Now().UTC() }}
}

func (k *KafkaSink) SendToken(ctx context.Context, address, name, filingCode, token string) error {
	return k.publish(ctx, Event{Type: EventToken, Address: address, Name: name, FilingCode: filingCode, Token: token})
}

func (k *KafkaSink) SendStatus(ctx context.Context, address, name, filingCode, state, reason string) error {
	return k.publish(ctx, Event{Type: EventStatus, Address: address, Name: name, FilingCode: filingCode, State: state, Reason: reason})
}

func (k *KafkaSink) publish(ctx context.Context, ev Event) error {
	ev.ID = uuid.NewString()
	ev.OccurredAt = k.now()
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.FilingCode),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-id", Value: []byte(ev.ID)},
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}
