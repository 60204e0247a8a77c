package service

import (
	"reflect"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"http-logging/domain/entity"
)

func TestIsLoggable(t *testing.T) {
	tests := []struct {
		contentType string
		expected    bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/xml", true},
		{"application/problem+json", true},
		{"application/atom+xml", true},
		{"APPLICATION/JSON", true},
		{"text/plain", true},
		{"text/html; charset=iso-8859-1", true},
		{"text/csv", true},
		{"application/octet-stream", false},
		{"application/jsonp", false},
		{"application/x-www-form-urlencoded", false},
		{"multipart/form-data; boundary=abc", false},
		{"multipart/mixed", false},
		{"image/png", false},
		{"", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			if got := IsLoggable(entity.ParseMediaType(tt.contentType)); got != tt.expected {
				t.Errorf("IsLoggable(%q) = %v, want %v", tt.contentType, got, tt.expected)
			}
		})
	}
}

func TestIsLoggable_Nil(t *testing.T) {
	if IsLoggable(nil) {
		t.Error("absent media type must not be loggable")
	}
}

func TestCharset(t *testing.T) {
	t.Run("absent charset defaults to ISO-8859-1", func(t *testing.T) {
		if got := Charset(entity.ParseMediaType("application/json")); got != charmap.ISO8859_1 {
			t.Errorf("Charset() = %v, want ISO-8859-1", got)
		}
	})

	t.Run("nil media type defaults to ISO-8859-1", func(t *testing.T) {
		if got := Charset(nil); got != charmap.ISO8859_1 {
			t.Errorf("Charset(nil) = %v", got)
		}
	})

	t.Run("unknown charset defaults to ISO-8859-1", func(t *testing.T) {
		if got := Charset(entity.ParseMediaType("text/plain; charset=no-such-charset")); got != charmap.ISO8859_1 {
			t.Errorf("Charset() = %v", got)
		}
	})

	t.Run("utf-8 is resolved", func(t *testing.T) {
		enc := Charset(entity.ParseMediaType("text/plain; charset=UTF-8"))
		if enc != unicode.UTF8 {
			t.Errorf("Charset() = %v, want UTF-8", enc)
		}
	})
}

func TestDecode(t *testing.T) {
	t.Run("latin-1 maps bytes one to one", func(t *testing.T) {
		if got := Decode(charmap.ISO8859_1, []byte{'c', 'a', 'f', 0xe9}); got != "café" {
			t.Errorf("Decode() = %q", got)
		}
	})

	t.Run("utf-8", func(t *testing.T) {
		if got := Decode(unicode.UTF8, []byte("café")); got != "café" {
			t.Errorf("Decode() = %q", got)
		}
	})

	t.Run("nil encoding uses default", func(t *testing.T) {
		if got := Decode(nil, []byte("abc")); got != "abc" {
			t.Errorf("Decode() = %q", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := Decode(unicode.UTF8, nil); got != "" {
			t.Errorf("Decode() = %q", got)
		}
	})
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single line", `{"payload":"test"}`, []string{`{"payload":"test"}`}},
		{"trailing newline", "a\n", []string{"a"}},
		{"two lines", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"bare cr", "a\rb", []string{"a", "b"}},
		{"blank line kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"only newline", "\n", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.input); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
