// Package redact strips credentials, hosts, file paths, SQL and stack traces
// from error text before it is logged or returned in a response.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	HostPlaceholder       = "[REDACTED_HOST]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	StackTracePlaceholder = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules run in order; earlier rules see the original text.
var rules = []rule{
	// user:password in a database URL
	{regexp.MustCompile(`(?i)\b(postgres(?:ql)?|pgx)://[^@\s/]+@`), "${1}://" + CredentialPlaceholder + "@"},
	// password=... in a key/value DSN
	{regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\s*[=:]\s*(?:'[^']*'|"[^"]*"|\S+)`), CredentialPlaceholder},
	{regexp.MustCompile(`(?s)goroutine \d+ \[.*`), StackTracePlaceholder},
	{regexp.MustCompile(`\b(?:SELECT\b[^;\n]*?\bFROM|INSERT INTO|UPDATE\s+\w+\s+SET|DELETE FROM)\b[^;\n]*`), SQLPlaceholder},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), PathPlaceholder},
	{regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}(?::\d{1,5})?\b`), HostPlaceholder},
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), HostPlaceholder},
}

// String redacts sensitive fragments of s.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error redacts the message of err. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
