package entity

import (
	"mime"
	"strings"
)

// MediaType is a parsed Content-Type value.
type MediaType struct {
	Type    string
	Subtype string
	Params  map[string]string
}

// ParseMediaType parses a Content-Type header value.
// It returns nil when the value is empty or malformed.
func ParseMediaType(value string) *MediaType {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	full, params, err := mime.ParseMediaType(value)
	if err != nil {
		return nil
	}
	typ, sub, ok := strings.Cut(full, "/")
	if !ok || typ == "" || sub == "" {
		return nil
	}
	return &MediaType{
		Type:    typ,
		Subtype: sub,
		Params:  params,
	}
}

// Param returns a parameter value; keys are case-insensitive.
func (m *MediaType) Param(name string) (string, bool) {
	if m == nil || m.Params == nil {
		return "", false
	}
	v, ok := m.Params[strings.ToLower(name)]
	return v, ok
}

func (m *MediaType) String() string {
	if m == nil {
		return ""
	}
	return mime.FormatMediaType(m.Type+"/"+m.Subtype, m.Params)
}
