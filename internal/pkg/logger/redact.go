package logger

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	// Participant email fields
	if strings.Contains(key, "email") || strings.Contains(key, "participant") {
		return RedactEmail(val)
	}
	// Client addresses captured at the submission boundary
	if strings.Contains(key, "ip") || strings.Contains(key, "addr") {
		return RedactIP(val)
	}
	// Redact any embedded emails in generic fields
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
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

// RedactIP masks the host portion of an IP address.
// "203.0.113.7" → "203.0.113.x"; IPv6 and anything unparseable become "***".
func RedactIP(ip string) string {
	idx := strings.LastIndex(ip, ".")
	if idx < 0 {
		return "***"
	}
	return ip[:idx] + ".x"
}
