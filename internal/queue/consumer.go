package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/example/stkpush-relay/internal/phone"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewSMSReader joins group on the SMS topic.
func NewSMSReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// DrainSMS hands every SMS request on r to send until ctx is cancelled.
// Malformed messages are committed and skipped. A send error stops the loop
// with the offset uncommitted, so the message is redelivered on restart.
func DrainSMS(ctx context.Context, r messageReader, send func(context.Context, SMS) error) error {
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch sms: %w", err)
		}

		var sms SMS
		if err := json.Unmarshal(msg.Value, &sms); err != nil || sms.Phone == "" {
			slog.WarnContext(ctx, "skip malformed sms", "partition", msg.Partition, "offset", msg.Offset, "err", err)
		} else if err := send(ctx, sms); err != nil {
			return fmt.Errorf("send sms to %s: %w", phone.Mask(sms.Phone), err)
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit sms offset %d: %w", msg.Offset, err)
		}
	}
}
