package payment

import (
	"strconv"
	"time"
)

// NewReference builds <prefix><unix ms><0..9999>. Uniqueness is probabilistic.
func NewReference(prefix string, now time.Time, intn func(int) int) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(intn(10000))
}
