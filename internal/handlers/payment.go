// stkpush-relay/internal/handlers/payment.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/example/stkpush-relay/internal/payment"
)

const maxBody = 1 << 20

func PaymentHandler(in Initiator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payment.Request
		err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, payment.Response{Message: "Invalid request body"})
			return
		}

		status, resp := in.Initiate(r.Context(), req)
		writeJSON(w, status, resp)
	}
}
