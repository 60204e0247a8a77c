package service

import (
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"
)

const (
	// SafePasswordLen is the password length from which the username of a
	// Basic credential may be logged. A wrong username is a much more common
	// mistake than a wrong password of this length.
	SafePasswordLen = 12

	// Hidden replaces any credential that must not be logged.
	Hidden = "<hidden>"

	// HeaderSeparator joins repeated values of one header.
	HeaderSeparator = ", "
)

// Redactor turns header values into a loggable string.
// The zero value only special-cases the Authorization header.
type Redactor struct {
	hidden map[string]struct{}
}

// NewRedactor creates a redactor that additionally hides every value of the
// given headers (e.g. Cookie).
func NewRedactor(hiddenHeaders ...string) *Redactor {
	r := &Redactor{hidden: make(map[string]struct{}, len(hiddenHeaders))}
	for _, name := range hiddenHeaders {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		r.hidden[http.CanonicalHeaderKey(name)] = struct{}{}
	}
	return r
}

// Redact returns the log text for one header. It never mutates values.
func (r *Redactor) Redact(name string, values []string) string {
	if r != nil && len(r.hidden) > 0 {
		if _, ok := r.hidden[http.CanonicalHeaderKey(name)]; ok {
			safe := make([]string, len(values))
			for i := range values {
				safe[i] = Hidden
			}
			return Join(safe)
		}
	}
	return Redact(name, values)
}

// Redact returns the log text for one header, hiding Authorization
// credentials. All other headers are joined unchanged.
func Redact(name string, values []string) string {
	if !strings.EqualFold(name, "Authorization") {
		return Join(values)
	}
	safe := make([]string, len(values))
	for i, value := range values {
		safe[i] = redactAuthorization(value)
	}
	return Join(safe)
}

// Join merges repeated header values in their original order. Surrounding
// whitespace is not part of a field value and is dropped, as on the wire.
func Join(values []string) string {
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	return strings.Join(trimmed, HeaderSeparator)
}

func redactAuthorization(value string) string {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return Hidden
	}
	decoded, err := decodeBase64(credential)
	if err != nil {
		return Hidden
	}
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return Hidden
	}
	if utf8.RuneCountInString(password) >= SafePasswordLen {
		return username + ":" + Hidden
	}
	return Hidden
}

// decodeBase64 accepts the standard alphabet with or without padding.
func decodeBase64(s string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
