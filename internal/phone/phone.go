// stkpush-relay/internal/phone/phone.go
package phone

import "regexp"

// Validator accepts numbers made of a fixed country prefix followed by exactly nine digits.
type Validator struct {
	prefix string
	re     *regexp.Regexp
}

func NewValidator(prefix string) *Validator {
	return &Validator{
		prefix: prefix,
		re:     regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `[0-9]{9}$`),
	}
}

func (v *Validator) Valid(p string) bool { return v.re.MatchString(p) }

// Example renders the accepted format for user-facing messages, e.g. 254XXXXXXXXX.
func (v *Validator) Example() string { return v.prefix + "XXXXXXXXX" }

// Mask keeps the first six and last three characters: 254712345678 -> 254712***678.
// Inputs shorter than ten characters are returned unchanged.
func Mask(p string) string {
	r := []rune(p)
	if len(r) < 10 {
		return p
	}
	return string(r[:6]) + "***" + string(r[len(r)-3:])
}
