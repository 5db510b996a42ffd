package util

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		mustNot string
	}{
		{"mail alice@example.com now", "mail [redacted-email] now", "alice"},
		{"api_key=abcdef123456 ok", "api_key=[redacted] ok", "abcdef123456"},
		{"Token: s3cr3tvalue", "Token: [redacted]", "s3cr3tvalue"},
		{"from 10.1.2.3 port 22", "from [redacted-ip] port 22", "10.1.2.3"},
		{"plain line", "plain line", ""},
	}
	for _, c := range cases {
		got := RedactPII(c.in)
		if got != c.want {
			t.Errorf("RedactPII(%q) = %q want %q", c.in, got, c.want)
		}
		if c.mustNot != "" && strings.Contains(got, c.mustNot) {
			t.Errorf("RedactPII(%q) leaked %q", c.in, c.mustNot)
		}
	}
}
