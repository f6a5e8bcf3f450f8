package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/example/stkpush-relay/internal/callback"
)

// CallbackHandler answers every delivery that carries data with 200 so the
// gateway does not retry.
func CallbackHandler(rc Receiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			slog.WarnContext(r.Context(), "read callback body", "err", err)
			writeJSON(w, http.StatusOK, callback.Ack{Status: callback.AckError, Message: callback.MsgProcessFailed})
			return
		}

		status, ack := rc.Receive(r.Context(), body)
		writeJSON(w, status, ack)
	}
}
