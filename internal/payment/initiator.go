// stkpush-relay/internal/payment/initiator.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/stkpush-relay/internal/gateway"
	"github.com/example/stkpush-relay/internal/phone"
	perr "github.com/example/stkpush-relay/pkg/errors"
)

const (
	MsgAccepted    = "Payment request sent successfully! Check your phone for the payment prompt."
	MsgName        = "Please enter your name"
	MsgTimeout     = "Request timeout. Please try again."
	MsgUnreachable = "Unable to reach payment gateway. Please try again."
	MsgInternal    = "An error occurred while processing your payment. Please try again."
)

type Gateway interface {
	CreatePayment(ctx context.Context, o gateway.Order) (*gateway.Result, error)
}

type Settings struct {
	ChannelID       int
	Provider        string
	CallbackURL     string
	ReferencePrefix string
	PhonePrefix     string
	Currency        string
	PaymentType     string
}

type Initiator struct {
	gw       Gateway
	s        Settings
	phones   *phone.Validator
	validate *validator.Validate

	now  func() time.Time
	intn func(int) int
}

func NewInitiator(gw Gateway, s Settings) *Initiator {
	phones := phone.NewValidator(s.PhonePrefix)

	v := validator.New()
	_ = v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
		return phones.Valid(fl.Field().String())
	})

	return &Initiator{
		gw:       gw,
		s:        s,
		phones:   phones,
		validate: v,
		now:      time.Now,
		intn:     rand.IntN,
	}
}

// Initiate validates req, pushes the order to the gateway and translates the
// outcome. Gateway-side failures are reported with 200 and success=false.
func (in *Initiator) Initiate(ctx context.Context, req Request) (int, Response) {
	req.Name = strings.TrimSpace(req.Name)
	if msg := in.check(req); msg != "" {
		return http.StatusBadRequest, Response{Message: msg}
	}
	amount := *req.Amount

	reference := NewReference(in.s.ReferencePrefix, in.now(), in.intn)
	order := gateway.Order{
		Amount:            amount,
		PhoneNumber:       req.Phone,
		ChannelID:         in.s.ChannelID,
		Provider:          in.s.Provider,
		ExternalReference: reference,
		CallbackURL:       in.s.CallbackURL,
		Metadata: map[string]string{
			"customer_name":  req.Name,
			"reference":      reference,
			"loan_reference": reference,
		},
	}
	if in.s.PaymentType != "" {
		order.Metadata["payment_type"] = in.s.PaymentType
	}

	slog.InfoContext(ctx, "initiating push payment",
		"reference", reference, "amount", amount, "phone", phone.Mask(req.Phone))

	res, err := in.gw.CreatePayment(ctx, order)
	if err != nil {
		return in.failure(ctx, reference, err)
	}

	slog.InfoContext(ctx, "gateway responded",
		"reference", reference, "status", res.StatusCode, "elapsed", res.Elapsed)

	if !res.Accepted() {
		msg := res.ErrorMessage()
		slog.WarnContext(ctx, "gateway rejected payment", "reference", reference, "status", res.StatusCode, "message", msg)
		return http.StatusOK, Response{
			Message: msg,
			Debug: map[string]any{
				"status":   res.StatusCode,
				"response": res.Payload(),
			},
		}
	}

	ref := res.Reference()
	if ref == "" {
		ref = reference
	}
	return http.StatusOK, Response{
		Success: true,
		Message: MsgAccepted,
		Data: &Data{
			Reference: ref,
			Amount:    amount,
			Phone:     phone.Mask(req.Phone),
			Status:    "pending",
		},
	}
}

func (in *Initiator) failure(ctx context.Context, reference string, err error) (int, Response) {
	switch perr.CodeOf(err) {
	case perr.CodeGatewayTimeout:
		slog.WarnContext(ctx, "gateway timeout", "reference", reference, "err", err)
		return http.StatusOK, Response{Message: MsgTimeout}
	case perr.CodeGatewayUnreachable:
		slog.ErrorContext(ctx, "gateway unreachable", "reference", reference, "err", err)
		return http.StatusOK, Response{
			Message: MsgUnreachable,
			Debug:   map[string]any{"error": perr.Cause(err)},
		}
	default:
		slog.ErrorContext(ctx, "payment processing failed", "reference", reference, "err", err)
		return http.StatusInternalServerError, Response{
			Message: MsgInternal,
			Debug:   map[string]any{"error": err.Error()},
		}
	}
}

// check returns the message for the first failing field, or "".
func (in *Initiator) check(req Request) string {
	err := in.validate.Struct(req)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return MsgName
	}
	switch ve[0].Field() {
	case "Name":
		return MsgName
	case "Phone":
		return fmt.Sprintf("Please enter a valid phone number (%s)", in.phones.Example())
	default:
		return fmt.Sprintf("Amount must be at least %s 1", in.s.Currency)
	}
}
