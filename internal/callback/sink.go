package callback

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/stkpush-relay/internal/phone"
)

// Record is the summary assembled for each classified callback.
type Record struct {
	Timestamp     time.Time      `json:"timestamp"`
	Reference     string         `json:"reference"`
	Amount        any            `json:"amount"`
	Phone         string         `json:"phone"`
	ReceiptNumber string         `json:"receipt_number,omitempty"`
	CustomerName  string         `json:"customer_name,omitempty"`
	Status        string         `json:"status"`
	Reason        string         `json:"reason,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Ledger receives one record per successful, failed or pending callback.
type Ledger interface {
	Record(ctx context.Context, rec Record) error
}

// Notifier delivers a customer-facing message, typically by SMS.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) error
}

type LogLedger struct{}

func (LogLedger) Record(ctx context.Context, rec Record) error {
	slog.InfoContext(ctx, "ledger record",
		"reference", rec.Reference,
		"status", rec.Status,
		"amount", rec.Amount,
		"phone", phone.Mask(rec.Phone),
		"receipt", rec.ReceiptNumber,
		"customer", rec.CustomerName,
		"reason", rec.Reason,
	)
	return nil
}

type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, p, message string) error {
	slog.InfoContext(ctx, "customer notification", "phone", phone.Mask(p), "message", message)
	return nil
}
