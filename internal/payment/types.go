// stkpush-relay/internal/payment/types.go
package payment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Request is the client's payment form. Amount is nil when absent or not numeric.
type Request struct {
	Name   string   `json:"name" validate:"required"`
	Phone  string   `json:"phone" validate:"required,msisdn"`
	Amount *float64 `json:"amount" validate:"required,gte=1"`
}

// UnmarshalJSON tolerates the loose shapes browsers post: amount as a number or
// a numeric string, phone as a whole number, and a non-string name (treated as empty).
func (r *Request) UnmarshalJSON(b []byte) error {
	var aux struct {
		Name   any `json:"name"`
		Phone  any `json:"phone"`
		Amount any `json:"amount"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.Name, _ = aux.Name.(string)
	r.Phone = phoneText(aux.Phone)
	r.Amount = parseAmount(aux.Amount)
	return nil
}

// phoneText accepts a phone posted as a string or a whole JSON number.
func phoneText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t >= 0 && t == math.Trunc(t) && t < 1e15 {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

func parseAmount(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = p
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

type Response struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    *Data          `json:"data,omitempty"`
	Debug   map[string]any `json:"debug,omitempty"`
}

type Data struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Phone     string  `json:"phone"`
	Status    string  `json:"status"`
}
