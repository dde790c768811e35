// Package redact strips credentials from strings before they reach the
// log. Database URLs and error messages that embed them are the main
// concern: a failed connection error carries the full DSN.
package redact

import "regexp"

// Redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// Precompiled patterns
var (
	// Connection strings with inline credentials
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^@\s]+@`)

	// key=value credentials in DSNs and config dumps
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?|['"]?[=:])[^'"&\s]{3,}`)

	// Bearer tokens and API keys
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)
)

// URL redacts inline credentials from a connection URL, keeping the
// scheme so logs stay diagnosable.
func URL(input string) string {
	return dbConnRegex.ReplaceAllString(input, "$1://"+RedactedCredentialPlaceholder+"@")
}

// String redacts credentials and keys from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := URL(input)
	result = passwordRegex.ReplaceAllString(result, "$1$2"+RedactedCredentialPlaceholder)
	result = apiKeyRegex.ReplaceAllString(result, "$1$2"+RedactedKeyPlaceholder)
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
