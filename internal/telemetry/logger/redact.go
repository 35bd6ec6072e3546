package logger

import (
	"log/slog"
	"strings"
)

// sensitiveKeyPatterns are substrings of an attribute key that mark its
// value as worth redacting. Unlike a session/token system, eigenlog has no
// internally-minted secret format to prefix-match against: the only
// credential in play is the operator-configured API key, and the only
// channel a stray secret could leak through is a Record's free-form tags
// map, so key-pattern matching is the only redaction strategy kept.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"key",
	"credential",
	"auth",
	"bearer",
}

const redactedValue = "***REDACTED***"

// redactSensitive checks whether an attribute's key suggests sensitive
// content and, if so, replaces its value.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		keyLower := strings.ToLower(a.Key)
		for _, pattern := range sensitiveKeyPatterns {
			if strings.Contains(keyLower, pattern) && a.Value.String() != "" {
				return slog.String(a.Key, redactedValue)
			}
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content. Exported
// so the tags-rendering path in the CLI formatters can redact before
// printing, not just before logging.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
