// stkpush-relay/internal/handlers/types.go
package handlers

import (
	"context"

	"github.com/example/stkpush-relay/internal/callback"
	"github.com/example/stkpush-relay/internal/payment"
	"github.com/example/stkpush-relay/internal/probe"
)

type Initiator interface {
	Initiate(ctx context.Context, req payment.Request) (int, payment.Response)
}

type Receiver interface {
	Receive(ctx context.Context, body []byte) (int, callback.Ack)
}

type Prober interface {
	Run(ctx context.Context) probe.Report
}

type Deps struct {
	Initiator Initiator
	Receiver  Receiver
	Prober    Prober
}

type probeOut struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Results probe.Report `json:"results"`
}

type errorOut struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
