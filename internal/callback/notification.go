// stkpush-relay/internal/callback/notification.go
package callback

import (
	"encoding/json"
	"strings"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePending Outcome = "pending"
	OutcomeUnknown Outcome = "unknown"
)

// Classify maps a gateway status onto an Outcome, ignoring case.
func Classify(status string) Outcome {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "completed":
		return OutcomeSuccess
	case "failed", "cancelled":
		return OutcomeFailure
	case "pending":
		return OutcomePending
	default:
		return OutcomeUnknown
	}
}

// Notification is the gateway's callback body, kept as an opaque bag.
// Accessors accept both the snake_case wire names and camelCase.
type Notification map[string]any

func (n Notification) Reference() string {
	return n.str("reference", "external_reference", "externalReference")
}

func (n Notification) Status() string        { return n.str("status") }
func (n Notification) Phone() string         { return n.str("phone_number", "phoneNumber") }
func (n Notification) ReceiptNumber() string { return n.str("receipt_number", "receiptNumber") }
func (n Notification) FailureReason() string { return n.str("failure_reason", "failureReason") }

func (n Notification) Amount() any { return n["amount"] }

func (n Notification) Metadata() map[string]any {
	md, _ := n["metadata"].(map[string]any)
	return md
}

func (n Notification) CustomerName() string {
	return Notification(n.Metadata()).str("customer_name", "customerName")
}

func (n Notification) str(keys ...string) string {
	for _, k := range keys {
		switch v := n[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}
