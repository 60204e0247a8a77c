package logging

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// maskingCore 脱敏核心
// It always strips the body line marker; with a nil masker nothing is masked.
// Body lines are logged verbatim even when masking is on.
type maskingCore struct {
	zapcore.Core
	masker *SensitiveDataMasker
}

func (c *maskingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	fields, bodyLine := stripBodyLine(fields)
	if c.masker != nil {
		if !bodyLine {
			entry.Message = c.masker.Mask(entry.Message)
		}
		c.maskFields(fields)
	}
	return c.Core.Write(entry, fields)
}

func (c *maskingCore) With(fields []zapcore.Field) zapcore.Core {
	fields, _ = stripBodyLine(fields)
	if c.masker != nil {
		c.maskFields(fields)
	}
	return &maskingCore{Core: c.Core.With(fields), masker: c.masker}
}

func (c *maskingCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c *maskingCore) maskFields(fields []zapcore.Field) {
	for i := range fields {
		if fields[i].Type == zapcore.StringType {
			fields[i].String = c.masker.Mask(fields[i].String)
		}
	}
}

// stripBodyLine returns fields without the body line marker and whether
// the marker was present. The input slice is not modified.
func stripBodyLine(fields []zapcore.Field) ([]zapcore.Field, bool) {
	at := -1
	for i, f := range fields {
		if f.Key == bodyLineKey {
			at = i
			break
		}
	}
	if at < 0 {
		return fields, false
	}
	out := make([]zapcore.Field, 0, len(fields)-1)
	for _, f := range fields {
		if f.Key != bodyLineKey {
			out = append(out, f)
		}
	}
	return out, true
}

// SensitiveDataMasker catches credentials that reach a log line outside of
// header redaction, e.g. inside a URI or a body.
type SensitiveDataMasker struct{}

func NewSensitiveDataMasker() *SensitiveDataMasker {
	return &SensitiveDataMasker{}
}

// every pattern captures the prefix to keep in group 1
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(basic\s+)([a-z0-9+/]{12,}={0,2})`),
	regexp.MustCompile(`(?i)(bearer\s+)([a-z0-9\-_.~+/]{16,}=*)`),
	regexp.MustCompile(`(?i)(api[_-]?key["\s:=]+)([a-z0-9\-_]{16,})`),
	regexp.MustCompile(`(?i)(password["\s:=]+)([^\s"&,]{8,})`),
	regexp.MustCompile(`(?i)(token["\s:=]+)([a-z0-9\-_.]{16,})`),
	regexp.MustCompile(`(?i)(secret["\s:=]+)([a-z0-9\-_]{16,})`),
	regexp.MustCompile(`(://[^/\s:@]+:)([^/\s@]+)(@)`),
}

func (m *SensitiveDataMasker) Mask(data string) string {
	result := data
	for _, pattern := range sensitivePatterns {
		if pattern.NumSubexp() == 3 {
			result = pattern.ReplaceAllString(result, "${1}****${3}")
			continue
		}
		result = pattern.ReplaceAllString(result, "${1}****")
	}
	return result
}

var bufferPool = buffer.NewPool()

const (
	exchangeIDKey = "exchange_id"
	bodyLineKey   = "body_line"
)

// consoleEncoder renders one line per entry:
//
//	15:04:05 | DEBUG | channel | exchange_id | message [k=v, ...]
//
// Context added with Logger.With is kept in the embedded map encoder.
type consoleEncoder struct {
	*zapcore.MapObjectEncoder
	colored bool
	palette *exchangePalette
}

func newConsoleEncoder(colored bool) zapcore.Encoder {
	return &consoleEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		colored:          colored,
		palette:          globalPalette,
	}
}

func (enc *consoleEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &consoleEncoder{
		MapObjectEncoder: clone,
		colored:          enc.colored,
		palette:          enc.palette,
	}
}

func (enc *consoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := bufferPool.Get()

	line.AppendString(enc.paint(timeStyle, entry.Time.Format("15:04:05")))
	line.AppendString(" | ")
	line.AppendString(enc.level(entry.Level))
	line.AppendString(" | ")
	line.AppendString(enc.paint(channelStyle, entry.LoggerName))
	line.AppendString(" | ")

	exchangeID, _ := enc.Fields[exchangeIDKey].(string)
	pairs := enc.contextPairs()
	for _, field := range fields {
		if field.Key == exchangeIDKey && field.Type == zapcore.StringType {
			exchangeID = field.String
			continue
		}
		pairs = append(pairs, [2]string{field.Key, fieldValueString(field)})
	}
	if exchangeID != "" {
		if enc.colored {
			line.AppendString(enc.palette.Style(exchangeID).Render(exchangeID))
		} else {
			line.AppendString(exchangeID)
		}
	}
	line.AppendString(" | ")

	line.AppendString(enc.message(entry.Message))

	if len(pairs) > 0 {
		line.AppendString(" [")
		for i, kv := range pairs {
			if i > 0 {
				line.AppendString(", ")
			}
			line.AppendString(enc.paint(fieldKeyStyle, kv[0]))
			line.AppendByte('=')
			line.AppendString(kv[1])
		}
		line.AppendByte(']')
	}
	if entry.Stack != "" {
		line.AppendByte('\n')
		line.AppendString(entry.Stack)
	}
	line.AppendString(zapcore.DefaultLineEnding)
	return line, nil
}

// contextPairs returns the With fields in key order, without the exchange ID.
func (enc *consoleEncoder) contextPairs() [][2]string {
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		if k != exchangeIDKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprint(enc.Fields[k])})
	}
	return pairs
}

func (enc *consoleEncoder) paint(style styleFunc, s string) string {
	if !enc.colored || s == "" {
		return s
	}
	return style(s)
}

func (enc *consoleEncoder) level(l zapcore.Level) string {
	text := fmt.Sprintf("%-5s", l.CapitalString())
	if !enc.colored {
		return text
	}
	return levelStyle(l)(text)
}

// message highlights the direction arrow of exchange lines.
func (enc *consoleEncoder) message(msg string) string {
	if !enc.colored {
		return msg
	}
	arrow, rest, ok := strings.Cut(msg, " ")
	if !ok {
		return msg
	}
	switch arrow {
	case ">>", ">>>":
		return requestArrowStyle(arrow) + " " + rest
	case "<<", "<<<":
		return responseArrowStyle(arrow) + " " + rest
	}
	return msg
}

func fieldValueString(field zapcore.Field) string {
	switch field.Type {
	case zapcore.StringType:
		return field.String
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer)
	case zapcore.BoolType:
		if field.Integer == 1 {
			return "true"
		}
		return "false"
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error()
		}
		return ""
	default:
		if field.Interface != nil {
			return fmt.Sprint(field.Interface)
		}
		return field.String
	}
}
