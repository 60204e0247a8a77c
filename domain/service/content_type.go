package service

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"

	"http-logging/domain/entity"
)

// DefaultCharset is used when a loggable body declares no (known) charset.
// HTTP historically defaults to Latin-1, which also maps every byte.
var DefaultCharset encoding.Encoding = charmap.ISO8859_1

// IsLoggable reports whether a body of the given media type is text that is
// useful to log: application/json, application/xml, their +json/+xml
// structured syntax suffixes, and any text/* type.
func IsLoggable(mt *entity.MediaType) bool {
	if mt == nil {
		return false
	}
	return isApplication(mt, "json") ||
		isApplication(mt, "xml") ||
		mt.Type == "text"
}

func isApplication(mt *entity.MediaType, subtype string) bool {
	return mt.Type == "application" &&
		(mt.Subtype == subtype || strings.HasSuffix(mt.Subtype, "+"+subtype))
}

// Charset resolves the charset parameter of a media type, falling back to
// DefaultCharset when it is absent or unknown.
func Charset(mt *entity.MediaType) encoding.Encoding {
	name, ok := mt.Param("charset")
	if !ok || strings.TrimSpace(name) == "" {
		return DefaultCharset
	}
	enc, err := ianaindex.IANA.Encoding(strings.TrimSpace(name))
	if err != nil || enc == nil {
		return DefaultCharset
	}
	return enc
}

// Decode converts body bytes to text for logging. Undecodable input falls
// back to DefaultCharset, which never fails.
func Decode(enc encoding.Encoding, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if enc == nil {
		enc = DefaultCharset
	}
	text, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		text, _ = DefaultCharset.NewDecoder().Bytes(data)
	}
	return string(text)
}

// SplitLines splits text on \n, \r\n and \r. A trailing line terminator
// does not produce an empty last line, and empty text yields no lines.
func SplitLines(text string) []string {
	var lines []string
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	return lines
}
