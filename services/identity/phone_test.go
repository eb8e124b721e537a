package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"5551234567", "+15551234567"},
		{"(555) 123-4567", "+15551234567"},
		{"+1 555 123 4567", "+15551234567"},
		{"15551234567", "+15551234567"},
		{"+442071838750", "+442071838750"},
		{"sip:5551234567@carrier.example", "+15551234567"},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNormalizePhoneRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "anonymous", "12345", "123456789012345678"} {
		_, err := NormalizePhone(in)
		assert.Error(t, err, "input %q", in)
	}
}
