package identity

import (
	"fmt"
	"strings"
)

// NormalizePhone canonicalizes a raw phone handle: strips everything but
// digits, assumes US country code for bare 10-digit numbers, and returns
// E.164 form. Voice platforms hand us numbers in wildly inconsistent shapes.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case len(n) == 10:
		return "+1" + n, nil
	case len(n) == 11 && strings.HasPrefix(n, "1"):
		return "+" + n, nil
	case len(n) >= 7 && len(n) <= 15:
		return "+" + n, nil
	default:
		return "", fmt.Errorf("unusable phone number %q", raw)
	}
}
