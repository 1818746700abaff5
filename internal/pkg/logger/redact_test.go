package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "jo***@example.com",
		"ab@example.com":       "***@example.com",
		"not-an-email":         "***@***",
	}
	for in, want := range cases {
		if got := RedactEmail(in); got != want {
			t.Errorf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRedactIP(t *testing.T) {
	if got := RedactIP("203.0.113.7"); got != "203.0.113.x" {
		t.Errorf("RedactIP = %q", got)
	}
	if got := RedactIP("::1"); got != "***" {
		t.Errorf("RedactIP(v6) = %q", got)
	}
}

func TestRedactPIIValueByKey(t *testing.T) {
	if got := redactPIIValue("email", "alice@example.com"); got != "al***@example.com" {
		t.Errorf("email field not redacted: %q", got)
	}
	if got := redactPIIValue("ip_address", "198.51.100.23"); got != "198.51.100.x" {
		t.Errorf("ip field not redacted: %q", got)
	}
	if got := redactPIIValue("note", "contact bob.jones@example.com today"); got != "contact bo***@example.com today" {
		t.Errorf("embedded email not redacted: %q", got)
	}
}
