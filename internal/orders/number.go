package orders

import (
	"crypto/rand"
	"fmt"
)

// orderNumberAlphabet omits ambiguous characters (0/O, 1/I) since the
// number is read aloud over support calls.
const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const orderNumberLength = 6

// NewOrderNumber generates a human-quotable order reference such as
// ORD-7KQ2MX. Collisions are handled by the unique index plus a retry
// at the call site.
func NewOrderNumber() (string, error) {
	buf := make([]byte, orderNumberLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return "ORD-" + string(buf), nil
}
