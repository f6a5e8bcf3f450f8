// stkpush-relay/internal/callback/receiver.go
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/stkpush-relay/internal/phone"
	m "github.com/example/stkpush-relay/pkg/metrics"
)

const (
	AckReceived = "received"
	AckError    = "error"

	MsgProcessed     = "Callback processed successfully"
	MsgNoData        = "No data received"
	MsgInvalid       = "Invalid callback payload"
	MsgProcessFailed = "Callback received but processing failed"
)

type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Receiver struct {
	ledger   Ledger
	notifier Notifier
	currency string
	now      func() time.Time
}

func NewReceiver(ledger Ledger, notifier Notifier, currency string) *Receiver {
	return &Receiver{ledger: ledger, notifier: notifier, currency: currency, now: time.Now}
}

// Receive validates and dispatches a callback body. Once the body carries data
// the answer is always 200, whatever happens while processing it.
func (rc *Receiver) Receive(ctx context.Context, body []byte) (int, Ack) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		slog.WarnContext(ctx, "callback without data")
		return http.StatusBadRequest, Ack{Status: AckError, Message: MsgNoData}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		slog.WarnContext(ctx, "callback payload is not JSON", "err", err)
		return http.StatusBadRequest, Ack{Status: AckError, Message: MsgInvalid}
	}
	n, _ := payload.(map[string]any)
	if len(n) == 0 {
		slog.WarnContext(ctx, "callback without data")
		return http.StatusBadRequest, Ack{Status: AckError, Message: MsgNoData}
	}

	if err := rc.process(ctx, Notification(n)); err != nil {
		slog.ErrorContext(ctx, "callback processing failed", "err", err)
		return http.StatusOK, Ack{Status: AckError, Message: MsgProcessFailed}
	}
	return http.StatusOK, Ack{Status: AckReceived, Message: MsgProcessed}
}

func (rc *Receiver) process(ctx context.Context, n Notification) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	outcome := Classify(n.Status())
	m.IncCallback(string(outcome))

	slog.InfoContext(ctx, "callback received",
		"reference", n.Reference(),
		"status", n.Status(),
		"outcome", outcome,
		"amount", n.Amount(),
		"phone", phone.Mask(n.Phone()),
		"receipt", n.ReceiptNumber(),
		"customer", n.CustomerName(),
	)

	switch outcome {
	case OutcomeSuccess:
		return rc.succeeded(ctx, n)
	case OutcomeFailure:
		return rc.failed(ctx, n)
	case OutcomePending:
		return rc.pending(ctx, n)
	default:
		slog.WarnContext(ctx, "unrecognized callback status", "status", n.Status(), "reference", n.Reference())
		return nil
	}
}

func (rc *Receiver) succeeded(ctx context.Context, n Notification) error {
	rec := rc.record(n, "approved")
	rec.ReceiptNumber = n.ReceiptNumber()
	rec.Metadata = n.Metadata()
	if err := rc.ledger.Record(ctx, rec); err != nil {
		return fmt.Errorf("record payment %s: %w", rec.Reference, err)
	}
	msg := fmt.Sprintf("Payment received. Receipt: %s", rec.ReceiptNumber)
	if amount := amountText(rec.Amount); amount != "" {
		msg = fmt.Sprintf("Payment of %s %s received. Receipt: %s", rc.currency, amount, rec.ReceiptNumber)
	}
	if err := rc.notify(ctx, rec, msg); err != nil {
		return fmt.Errorf("notify payment %s: %w", rec.Reference, err)
	}
	return nil
}

func (rc *Receiver) failed(ctx context.Context, n Notification) error {
	rec := rc.record(n, "failed")
	rec.Reason = n.FailureReason()
	if rec.Reason == "" {
		rec.Reason = "Unknown"
	}
	if err := rc.ledger.Record(ctx, rec); err != nil {
		return fmt.Errorf("record failure %s: %w", rec.Reference, err)
	}
	msg := fmt.Sprintf("Payment failed: %s. Please try again or contact support.", rec.Reason)
	if err := rc.notify(ctx, rec, msg); err != nil {
		return fmt.Errorf("notify failure %s: %w", rec.Reference, err)
	}
	return nil
}

// notify skips callbacks that carry no phone number to message.
func (rc *Receiver) notify(ctx context.Context, rec Record, msg string) error {
	if rec.Phone == "" {
		slog.WarnContext(ctx, "no phone on callback, skipping notification", "reference", rec.Reference)
		return nil
	}
	return rc.notifier.Notify(ctx, rec.Phone, msg)
}

func amountText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		return t.String()
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func (rc *Receiver) pending(ctx context.Context, n Notification) error {
	rec := rc.record(n, "pending")
	if err := rc.ledger.Record(ctx, rec); err != nil {
		return fmt.Errorf("record pending %s: %w", rec.Reference, err)
	}
	return nil
}

func (rc *Receiver) record(n Notification, status string) Record {
	return Record{
		Timestamp:    rc.now().UTC(),
		Reference:    n.Reference(),
		Amount:       n.Amount(),
		Phone:        n.Phone(),
		CustomerName: n.CustomerName(),
		Status:       status,
	}
}
