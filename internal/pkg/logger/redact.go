package logger

import "strings"

// RedactEmail masks an email address for safe logging.
// "asha.rao@example.com" → "as***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactCode keeps the first two characters of a disposal code.
// Codes are redeemable for points, so they never appear whole in logs.
func RedactCode(code string) string {
	if len(code) <= 2 {
		return "***"
	}
	return code[:2] + strings.Repeat("*", len(code)-2)
}
