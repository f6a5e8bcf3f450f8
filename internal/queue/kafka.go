// stkpush-relay/internal/queue/kafka.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/stkpush-relay/internal/callback"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Bus hands callback outcomes to downstream systems: ledger records on one
// topic, customer SMS requests on another.
type Bus struct {
	LedgerTopic string
	SMSTopic    string
	w           messageWriter
}

const writerBatchTimeout = 10 * time.Millisecond

func New(brokers []string, ledgerTopic, smsTopic string) *Bus {
	return &Bus{
		LedgerTopic: ledgerTopic,
		SMSTopic:    smsTopic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			// writes happen inside the callback request; flush without waiting for a batch
			BatchTimeout: writerBatchTimeout,
		},
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, key []byte, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}
	return b.w.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: payload, Time: time.Now()})
}

func (b *Bus) Close() error { return b.w.Close() }

// Ledger publishes callback records keyed by payment reference.
type Ledger struct{ Bus *Bus }

func (l Ledger) Record(ctx context.Context, rec callback.Record) error {
	return l.Bus.Publish(ctx, l.Bus.LedgerTopic, []byte(rec.Reference), rec)
}

type SMS struct {
	Phone   string    `json:"phone"`
	Message string    `json:"message"`
	TS      time.Time `json:"ts"`
}

// Notifier publishes SMS requests keyed by phone number.
type Notifier struct{ Bus *Bus }

func (n Notifier) Notify(ctx context.Context, phone, message string) error {
	return n.Bus.Publish(ctx, n.Bus.SMSTopic, []byte(phone), SMS{Phone: phone, Message: message, TS: time.Now().UTC()})
}
