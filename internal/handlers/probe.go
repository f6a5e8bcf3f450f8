package handlers

import "net/http"

func ProbeHandler(p Prober) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, probeOut{
			Success: true,
			Message: "Test completed",
			Results: p.Run(r.Context()),
		})
	}
}
