package port

const (
	FieldExchangeID = "exchange_id"
	FieldRequestID  = "request_id"
	FieldStatusCode = "status_code"
	FieldMaxBytes   = "max_bytes"
	// FieldBodyLine marks an entry whose message is a verbatim body line.
	// Sinks drop the field and never rewrite such a message.
	FieldBodyLine = "body_line"
)

func ExchangeID(id string) Field {
	return String(FieldExchangeID, id)
}

func RequestID(id string) Field {
	return String(FieldRequestID, id)
}

func StatusCode(code int) Field {
	return Int(FieldStatusCode, code)
}

func MaxBytes(n int64) Field {
	return Int64(FieldMaxBytes, n)
}

func BodyLine() Field {
	return Bool(FieldBodyLine, true)
}
