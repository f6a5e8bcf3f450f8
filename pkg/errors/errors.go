// stkpush-relay/pkg/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
)

const (
	CodeConfigMissing      = "config_missing"
	CodeConfigInvalid      = "config_invalid"
	CodeGatewayTimeout     = "gateway_timeout"
	CodeGatewayUnreachable = "gateway_unreachable"
	CodeGatewayBadRequest  = "gateway_bad_request"
)

type E struct {
	Code    string
	Message string
	Err     error
}

func (e E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e E) Unwrap() error { return e.Err }

func Wrap(code, msg string, err error) error {
	return E{Code: code, Message: msg, Err: err}
}

func New(code, msg string) error {
	return E{Code: code, Message: msg}
}

// CodeOf returns the code of the first E in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var e E
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Cause returns the wrapped error's text, falling back to the error itself.
func Cause(err error) string {
	var e E
	if stderrors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
