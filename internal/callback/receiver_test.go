package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	records []Record
	err     error
}

func (l *memLedger) Record(_ context.Context, rec Record) error {
	if l.err != nil {
		return l.err
	}
	l.records = append(l.records, rec)
	return nil
}

type sentMessage struct{ phone, message string }

type memNotifier struct {
	sent  []sentMessage
	err   error
	panic bool
}

func (n *memNotifier) Notify(_ context.Context, phone, message string) error {
	if n.panic {
		panic("sms gateway exploded")
	}
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMessage{phone, message})
	return nil
}

func newTestReceiver(l Ledger, n Notifier) *Receiver {
	rc := NewReceiver(l, n, "KES")
	rc.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return rc
}

func TestClassify(t *testing.T) {
	cases := map[string]Outcome{
		"success":     OutcomeSuccess,
		"SUCCESS":     OutcomeSuccess,
		"Completed":   OutcomeSuccess,
		"failed":      OutcomeFailure,
		"CANCELLED":   OutcomeFailure,
		"pending":     OutcomePending,
		" Pending ":   OutcomePending,
		"weird_value": OutcomeUnknown,
		"":            OutcomeUnknown,
		"canceled":    OutcomeUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), in)
	}
}

func TestReceiveNoData(t *testing.T) {
	for _, body := range []string{"", "   ", "{}", "[]", "null", `"text"`} {
		l := &memLedger{}
		status, ack := newTestReceiver(l, &memNotifier{}).Receive(context.Background(), []byte(body))

		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, Ack{Status: AckError, Message: MsgNoData}, ack, body)
		assert.Empty(t, l.records)
	}
}

func TestReceiveInvalidJSON(t *testing.T) {
	status, ack := newTestReceiver(&memLedger{}, &memNotifier{}).Receive(context.Background(), []byte(`{"status":`))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, AckError, ack.Status)
	assert.Equal(t, MsgInvalid, ack.Message)
}

func TestReceiveCompletedMixedCase(t *testing.T) {
	l, n := &memLedger{}, &memNotifier{}
	body := `{
		"status": "COMPLETED",
		"reference": "R1",
		"amount": 1500,
		"phone_number": "254712345678",
		"receipt_number": "SGH12345",
		"metadata": {"customer_name": "Jane"}
	}`

	status, ack := newTestReceiver(l, n).Receive(context.Background(), []byte(body))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, Ack{Status: AckReceived, Message: MsgProcessed}, ack)

	require.Len(t, l.records, 1)
	rec := l.records[0]
	assert.Equal(t, "R1", rec.Reference)
	assert.Equal(t, "approved", rec.Status)
	assert.Equal(t, json.Number("1500"), rec.Amount)
	assert.Equal(t, "SGH12345", rec.ReceiptNumber)
	assert.Equal(t, "Jane", rec.CustomerName)
	assert.Equal(t, map[string]any{"customer_name": "Jane"}, rec.Metadata)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "254712345678", n.sent[0].phone)
	assert.Equal(t, "Payment of KES 1500 received. Receipt: SGH12345", n.sent[0].message)
}

func TestReceiveFailedUsesExternalReference(t *testing.T) {
	l, n := &memLedger{}, &memNotifier{}
	body := `{"status":"Cancelled","external_reference":"NYOTA1","phoneNumber":"254700000001"}`

	status, ack := newTestReceiver(l, n).Receive(context.Background(), []byte(body))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, AckReceived, ack.Status)
	require.Len(t, l.records, 1)
	assert.Equal(t, "NYOTA1", l.records[0].Reference)
	assert.Equal(t, "failed", l.records[0].Status)
	assert.Equal(t, "Unknown", l.records[0].Reason)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "254700000001", n.sent[0].phone)
	assert.Equal(t, "Payment failed: Unknown. Please try again or contact support.", n.sent[0].message)
}

func TestReceivePendingRecordsOnly(t *testing.T) {
	l, n := &memLedger{}, &memNotifier{}

	status, ack := newTestReceiver(l, n).Receive(context.Background(), []byte(`{"status":"pending","reference":"R2"}`))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, AckReceived, ack.Status)
	require.Len(t, l.records, 1)
	assert.Equal(t, "pending", l.records[0].Status)
	assert.Empty(t, n.sent)
}

func TestReceiveUnknownStatus(t *testing.T) {
	l, n := &memLedger{}, &memNotifier{}

	status, ack := newTestReceiver(l, n).Receive(context.Background(), []byte(`{"status":"weird_value"}`))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, Ack{Status: AckReceived, Message: MsgProcessed}, ack)
	assert.Empty(t, l.records)
	assert.Empty(t, n.sent)
}

func TestReceiveLedgerErrorStillAcknowledges(t *testing.T) {
	l, n := &memLedger{err: errors.New("broker down")}, &memNotifier{}

	status, ack := newTestReceiver(l, n).Receive(context.Background(), []byte(`{"status":"success","reference":"R3"}`))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, Ack{Status: AckError, Message: MsgProcessFailed}, ack)
	assert.Empty(t, n.sent, "no notification when the ledger write fails")
}

func TestReceivePanicStillAcknowledges(t *testing.T) {
	status, ack := newTestReceiver(&memLedger{}, &memNotifier{panic: true}).
		Receive(context.Background(), []byte(`{"status":"failed","reference":"R4","failure_reason":"Insufficient funds"}`))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, Ack{Status: AckError, Message: MsgProcessFailed}, ack)
}

func TestNotificationAccessors(t *testing.T) {
	n := Notification{
		"reference":          "",
		"externalReference":  "EXT-9",
		"receiptNumber":      "RCPT",
		"failureReason":      "Timeout",
		"metadata":           map[string]any{"customerName": "Otieno"},
		"phone_number":       json.Number("254712345678"),
		"unrelated_sentinel": true,
	}

	assert.Equal(t, "EXT-9", n.Reference())
	assert.Equal(t, "RCPT", n.ReceiptNumber())
	assert.Equal(t, "Timeout", n.FailureReason())
	assert.Equal(t, "Otieno", n.CustomerName())
	assert.Equal(t, "254712345678", n.Phone())
	assert.Nil(t, n.Amount())
	assert.Equal(t, "", Notification{}.CustomerName())
}

func TestReceiveWithoutPhoneSkipsNotification(t *testing.T) {
	l, n := &memLedger{}, &memNotifier{}

	status, ack := newTestReceiver(l, n).Receive(context.Background(), []byte(`{"status":"COMPLETED","reference":"R1"}`))

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, AckReceived, ack.Status)
	require.Len(t, l.records, 1)
	assert.Empty(t, n.sent)
}

func TestSuccessMessageWithoutAmount(t *testing.T) {
	l, n := &memLedger{}, &memNotifier{}
	body := `{"status":"success","reference":"R2","phone_number":"254712345678","receipt_number":"SGH9"}`

	newTestReceiver(l, n).Receive(context.Background(), []byte(body))

	require.Len(t, n.sent, 1)
	assert.Equal(t, "Payment received. Receipt: SGH9", n.sent[0].message)
	assert.NotContains(t, n.sent[0].message, "<nil>")
}

func TestAmountText(t *testing.T) {
	assert.Equal(t, "", amountText(nil))
	assert.Equal(t, "250.5", amountText(json.Number("250.5")))
	assert.Equal(t, "100", amountText(" 100 "))
	assert.Equal(t, "1500", amountText(1500.0))
}
