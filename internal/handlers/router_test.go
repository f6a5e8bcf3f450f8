package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/stkpush-relay/internal/callback"
	"github.com/example/stkpush-relay/internal/payment"
	"github.com/example/stkpush-relay/internal/probe"
)

type stubInitiator struct {
	got    payment.Request
	calls  int
	status int
	resp   payment.Response
	panic  bool
}

func (s *stubInitiator) Initiate(_ context.Context, req payment.Request) (int, payment.Response) {
	if s.panic {
		panic("boom")
	}
	s.calls++
	s.got = req
	return s.status, s.resp
}

type stubReceiver struct {
	body  []byte
	panic bool
}

func (s *stubReceiver) Receive(_ context.Context, body []byte) (int, callback.Ack) {
	if s.panic {
		panic("boom")
	}
	s.body = body
	return http.StatusOK, callback.Ack{Status: callback.AckReceived, Message: callback.MsgProcessed}
}

type stubProber struct{}

func (stubProber) Run(context.Context) probe.Report {
	return probe.Report{Tests: []probe.Check{{Name: "Gateway API Connectivity", Passed: true}}}
}

func newTestRouter() (http.Handler, *stubInitiator, *stubReceiver) {
	in := &stubInitiator{status: http.StatusOK, resp: payment.Response{Success: true, Message: payment.MsgAccepted}}
	rc := &stubReceiver{}
	return NewRouter(Deps{Initiator: in, Receiver: rc, Prober: stubProber{}}), in, rc
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestPaymentRoute(t *testing.T) {
	h, in, _ := newTestRouter()

	rr := do(h, http.MethodPost, PaymentPath, `{"name":"Jane","phone":"254712345678","amount":100}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
	assert.Equal(t, "Jane", in.got.Name)
	assert.Equal(t, "254712345678", in.got.Phone)
	require.NotNil(t, in.got.Amount)
	assert.Equal(t, 100.0, *in.got.Amount)
	assert.Equal(t, true, decode(t, rr)["success"])
}

func TestPaymentRouteRejectsMalformedBody(t *testing.T) {
	h, in, _ := newTestRouter()

	rr := do(h, http.MethodPost, PaymentPath, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decode(t, rr)["message"])
	assert.Zero(t, in.calls)
}

func TestPaymentRouteEmptyBodyReachesValidation(t *testing.T) {
	h, in, _ := newTestRouter()

	do(h, http.MethodPost, PaymentPath, "")

	assert.Equal(t, 1, in.calls)
	assert.Empty(t, in.got.Name)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newTestRouter()

	rr := do(h, http.MethodGet, PaymentPath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	out := decode(t, rr)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Method not allowed", out["message"])

	rr = do(h, http.MethodGet, CallbackPath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	out = decode(t, rr)
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Method not allowed", out["message"])

	rr = do(h, http.MethodPost, ProbePath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestUnknownPathIsNotFound(t *testing.T) {
	h, in, _ := newTestRouter()

	for _, c := range []struct{ method, path string }{
		{http.MethodGet, "/does-not-exist"},
		{http.MethodPost, "/api/paymentz"},
	} {
		rr := do(h, c.method, c.path, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, c.path)
		out := decode(t, rr)
		assert.Equal(t, false, out["success"], c.path)
		assert.Equal(t, "Not found", out["message"], c.path)
	}
	assert.Zero(t, in.calls)
}

func TestOptionsReturnsOK(t *testing.T) {
	h, in, _ := newTestRouter()

	for _, p := range []string{PaymentPath, CallbackPath, ProbePath} {
		rr := do(h, http.MethodOptions, p, "")
		assert.Equal(t, http.StatusOK, rr.Code, p)
		assert.Empty(t, rr.Body.String(), p)
	}
	assert.Zero(t, in.calls)
}

func TestPreflightCarriesCORSHeaders(t *testing.T) {
	h, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, PaymentPath, nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCallbackRoutePassesRawBody(t *testing.T) {
	h, _, rc := newTestRouter()

	rr := do(h, http.MethodPost, CallbackPath, `{"status":"success"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"success"}`, string(rc.body))
	assert.Equal(t, callback.AckReceived, decode(t, rr)["status"])
}

func TestCallbackPanicStillAcknowledged(t *testing.T) {
	in := &stubInitiator{}
	h := NewRouter(Deps{Initiator: in, Receiver: &stubReceiver{panic: true}, Prober: stubProber{}})

	rr := do(h, http.MethodPost, CallbackPath, `{"status":"success"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	assert.Equal(t, callback.AckError, out["status"])
	assert.Equal(t, callback.MsgProcessFailed, out["message"])
}

func TestPaymentPanicIsInternalError(t *testing.T) {
	h := NewRouter(Deps{Initiator: &stubInitiator{panic: true}, Receiver: &stubReceiver{}, Prober: stubProber{}})

	rr := do(h, http.MethodPost, PaymentPath, `{"name":"Jane"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, false, decode(t, rr)["success"])
}

func TestProbeRoute(t *testing.T) {
	h, _, _ := newTestRouter()

	rr := do(h, http.MethodGet, ProbePath, "")

	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Test completed", out["message"])
	results := out["results"].(map[string]any)
	assert.Len(t, results["tests"], 1)
}

func TestHealthz(t *testing.T) {
	h, _, _ := newTestRouter()

	rr := do(h, http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, rr.Code)
	out := decode(t, rr)
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, ServiceName, out["service"])
}

func TestRequestIDIsPropagated(t *testing.T) {
	h, _, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get(requestIDHeader))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "payment", routeLabel(PaymentPath))
	assert.Equal(t, "callback", routeLabel(CallbackPath))
	assert.Equal(t, "other", routeLabel("/wp-admin"))
}
