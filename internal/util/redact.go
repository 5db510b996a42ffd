package util

import "regexp"

var (
	reEmail = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reToken = regexp.MustCompile(`(?i)((?:api[_-]?key|secret|token|password|passwd|key)\s*[=:]\s*)[A-Za-z0-9_\-./+]{6,}`)
	reIPv4  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// RedactPII masks emails, credentials and IPv4 addresses in s.
func RedactPII(s string) string {
	s = reEmail.ReplaceAllString(s, "[redacted-email]")
	s = reToken.ReplaceAllString(s, "${1}[redacted]")
	s = reIPv4.ReplaceAllString(s, "[redacted-ip]")
	return s
}
