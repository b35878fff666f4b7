package logger

import (
	"regexp"
)

// Sensitive field patterns to filter from logs
var (
	bearerPattern   = regexp.MustCompile(`(?i)(bearer)\s+[A-Za-z0-9\-._~+/]+=*`)
	jwtPattern      = regexp.MustCompile(`eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`)
	passwordPattern = regexp.MustCompile(`(?i)(password|passwd|pwd)[\s:=]+[^\s]+`)
	secretPattern   = regexp.MustCompile(`(?i)(secret|private[_-]?key|access[_-]?key)[\s:=]+[^\s]+`)
)

const redactedPlaceholder = "[REDACTED]"

// SanitizeLogMessage removes credentials from log messages. Raw access
// tokens must never reach the logs, whether they appear with a Bearer
// prefix or on their own.
func SanitizeLogMessage(message string) string {
	message = bearerPattern.ReplaceAllString(message, "${1} "+redactedPlaceholder)
	message = jwtPattern.ReplaceAllString(message, redactedPlaceholder)
	message = passwordPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	return message
}
