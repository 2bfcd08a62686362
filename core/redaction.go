package core

import "strings"

const RedactedValue = "[REDACTED]"

// credentialHeaders are masked wherever they appear as a field name. The
// management center sends every session credential in an x-auth-* header.
var credentialHeaders = map[string]bool{
	strings.ToLower(HeaderAuthorization): true,
	strings.ToLower(HeaderAccessToken):   true,
	strings.ToLower(HeaderRefreshToken):  true,
}

// RedactFields returns a copy of fields safe to log: credential headers,
// tokens, passwords and basic material are masked, nested maps and slices
// are walked, and tenant and trace ids stay visible.
func RedactFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if isCredentialKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = redactValue(value)
	}
	return out
}

// RedactHeaders masks credential headers in a flattened header map.
func RedactHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, value := range headers {
		if isCredentialKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = value
	}
	return out
}

func redactValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return RedactFields(typed)
	case map[string]string:
		return RedactHeaders(typed)
	case Headers:
		return Headers(RedactHeaders(typed))
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = redactValue(typed[i])
		}
		return out
	default:
		return value
	}
}

func isCredentialKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	switch {
	case key == "":
		return false
	case credentialHeaders[key], strings.HasPrefix(key, "x-auth-"):
		return true
	case strings.HasSuffix(key, "token"), strings.HasSuffix(key, "_material"):
		return true
	case strings.Contains(key, "password"), strings.Contains(key, "secret"):
		return true
	}
	return false
}
