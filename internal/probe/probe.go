// stkpush-relay/internal/probe/probe.go
package probe

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/example/stkpush-relay/internal/gateway"
	perr "github.com/example/stkpush-relay/pkg/errors"
)

const responseLimit = 200

type Gateway interface {
	CreatePayment(ctx context.Context, o gateway.Order) (*gateway.Result, error)
}

type Settings struct {
	Region      string
	UsernameSet bool
	PasswordSet bool
	ChannelID   int
	Provider    string
	Phone       string
	InternetURL string
}

type Report struct {
	Timestamp   time.Time   `json:"timestamp"`
	Environment Environment `json:"environment"`
	Credentials Credentials `json:"credentials"`
	Tests       []Check     `json:"tests"`
}

type Environment struct {
	GoVersion string `json:"goVersion"`
	Region    string `json:"region"`
}

type Credentials struct {
	UsernameSet bool `json:"usernameSet"`
	AccountID   int  `json:"accountId"`
	PasswordSet bool `json:"passwordSet"`
}

type Check struct {
	Name         string `json:"name"`
	Status       int    `json:"status,omitempty"`
	StatusText   string `json:"statusText,omitempty"`
	OK           bool   `json:"ok"`
	ResponseTime string `json:"responseTime,omitempty"`
	Response     string `json:"response,omitempty"`
	Passed       bool   `json:"passed"`
	Error        string `json:"error,omitempty"`
	ErrorType    string `json:"errorType,omitempty"`
}

type Prober struct {
	gw   Gateway
	http *http.Client
	s    Settings
	now  func() time.Time
}

func New(gw Gateway, httpClient *http.Client, s Settings) *Prober {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Prober{gw: gw, http: httpClient, s: s, now: time.Now}
}

// Run checks the gateway and general internet reachability, one after the
// other. Failures become report entries, never errors.
func (p *Prober) Run(ctx context.Context) Report {
	r := Report{
		Timestamp:   p.now().UTC(),
		Environment: Environment{GoVersion: runtime.Version(), Region: p.s.Region},
		Credentials: Credentials{
			UsernameSet: p.s.UsernameSet,
			AccountID:   p.s.ChannelID,
			PasswordSet: p.s.PasswordSet,
		},
	}
	r.Tests = append(r.Tests, p.checkGateway(ctx), p.checkInternet(ctx))
	return r
}

func (p *Prober) checkGateway(ctx context.Context) Check {
	c := Check{Name: "Gateway API Connectivity"}
	order := gateway.Order{
		Amount:            1,
		PhoneNumber:       p.s.Phone,
		ChannelID:         p.s.ChannelID,
		Provider:          p.s.Provider,
		ExternalReference: "TEST" + strconv.FormatInt(p.now().UnixMilli(), 10),
	}

	start := time.Now()
	res, err := p.gw.CreatePayment(ctx, order)
	if err != nil {
		c.Error = err.Error()
		c.ErrorType = perr.CodeOf(err)
		if c.ErrorType == "" {
			c.ErrorType = fmt.Sprintf("%T", err)
		}
		return c
	}

	c.Status = res.StatusCode
	c.StatusText = res.Status
	c.OK = res.Accepted()
	c.ResponseTime = millis(time.Since(start))
	c.Response = truncate(res.Raw, responseLimit)
	c.Passed = res.StatusCode < 500
	return c
}

func (p *Prober) checkInternet(ctx context.Context) Check {
	c := Check{Name: "Internet Connectivity"}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.s.InternetURL, nil)
	if err != nil {
		c.Error = err.Error()
		return c
	}

	start := time.Now()
	resp, err := p.http.Do(req)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	defer resp.Body.Close()

	c.Status = resp.StatusCode
	c.StatusText = resp.Status
	c.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	c.Passed = c.OK
	c.ResponseTime = millis(time.Since(start))
	return c
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
