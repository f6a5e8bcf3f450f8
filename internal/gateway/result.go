package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Result is the gateway's answer. Body is nil when the response was not a JSON object.
type Result struct {
	StatusCode int
	Status     string
	Raw        string
	Body       map[string]any
	Elapsed    time.Duration
}

func (r *Result) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Reference returns the gateway-assigned reference, if any.
func (r *Result) Reference() string {
	return r.field("reference")
}

// ErrorMessage extracts the first populated of message, error and detail.
func (r *Result) ErrorMessage() string {
	for _, k := range []string{"message", "error", "detail"} {
		if s := r.field(k); s != "" {
			return s
		}
	}
	return fmt.Sprintf("gateway error (status %d)", r.StatusCode)
}

// Payload is what gets echoed back for diagnostics: the parsed body, or the raw text.
func (r *Result) Payload() any {
	if r.Body != nil {
		return r.Body
	}
	return r.Raw
}

func (r *Result) field(key string) string {
	v, ok := r.Body[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
