package usecase

import (
	"strings"
	"sync"

	"http-logging/domain/entity"
	"http-logging/domain/port"
)

// logRecord is one message captured by MockLogger.
type logRecord struct {
	channel string
	message string
	fields  []port.Field
}

// logSink collects records from every MockLogger derived from it.
type logSink struct {
	mu      sync.Mutex
	records []logRecord
}

func (s *logSink) add(r logRecord) {
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
}

func (s *logSink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.message
	}
	return out
}

func (s *logSink) all() []logRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logRecord(nil), s.records...)
}

func (s *logSink) joined() string {
	return strings.Join(s.messages(), "\n")
}

// MockLogger is a recording implementation of port.Logger
type MockLogger struct {
	sink    *logSink
	channel string
	fields  []port.Field
	debug   bool
}

func (m *MockLogger) Debug(msg string, fields ...port.Field) {
	m.sink.add(logRecord{channel: m.channel, message: msg, fields: append(append([]port.Field(nil), m.fields...), fields...)})
}
func (m *MockLogger) Info(msg string, fields ...port.Field)  { m.Debug(msg, fields...) }
func (m *MockLogger) Warn(msg string, fields ...port.Field)  { m.Debug(msg, fields...) }
func (m *MockLogger) Error(msg string, fields ...port.Field) { m.Debug(msg, fields...) }
func (m *MockLogger) DebugEnabled() bool                     { return m.debug }
func (m *MockLogger) With(fields ...port.Field) port.Logger {
	return &MockLogger{
		sink:    m.sink,
		channel: m.channel,
		fields:  append(append([]port.Field(nil), m.fields...), fields...),
		debug:   m.debug,
	}
}

// gate holds body lines until release is closed and signals entered on
// the first one.
type gate struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), release: make(chan struct{})}
}

// gatedLogger is a MockLogger whose body lines wait on a gate.
type gatedLogger struct {
	*MockLogger
	gate *gate
}

func (g *gatedLogger) Debug(msg string, fields ...port.Field) {
	if hasField(fields, port.FieldBodyLine) {
		g.gate.once.Do(func() { close(g.gate.entered) })
		<-g.gate.release
	}
	g.MockLogger.Debug(msg, fields...)
}

func (g *gatedLogger) With(fields ...port.Field) port.Logger {
	return &gatedLogger{MockLogger: g.MockLogger.With(fields...).(*MockLogger), gate: g.gate}
}

func hasField(fields []port.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// MockSelector is a mock implementation of port.LoggerSelector
type MockSelector struct {
	sink     *logSink
	debug    bool
	channels map[string]string
	selects  int
}

func newMockSelector(debug bool) *MockSelector {
	return &MockSelector{sink: &logSink{}, debug: debug, channels: map[string]string{}}
}

func (m *MockSelector) Select(ex *entity.Exchange, fallback string) (string, bool) {
	m.selects++
	if name, ok := m.channels[ex.Endpoint]; ok && ex.Endpoint != "" {
		return name, m.debug
	}
	return fallback, m.debug
}

func (m *MockSelector) Channel(name string) port.Logger {
	return &MockLogger{sink: m.sink, channel: name, debug: m.debug}
}

// gatedSelector hands out gated channel loggers.
type gatedSelector struct {
	*MockSelector
	gate *gate
}

func (s *gatedSelector) Channel(name string) port.Logger {
	return &gatedLogger{MockLogger: s.MockSelector.Channel(name).(*MockLogger), gate: s.gate}
}

// MockMetricsProvider is a recording implementation of port.MetricsProvider
type MockMetricsProvider struct {
	mu        sync.Mutex
	exchanges map[string]int
	outcomes  map[string]int
	bytes     map[string]int
}

func newMockMetrics() *MockMetricsProvider {
	return &MockMetricsProvider{
		exchanges: map[string]int{},
		outcomes:  map[string]int{},
		bytes:     map[string]int{},
	}
}

func (m *MockMetricsProvider) IncExchanges(direction string) {
	m.mu.Lock()
	m.exchanges[direction]++
	m.mu.Unlock()
}

func (m *MockMetricsProvider) ObserveBody(direction, outcome string, bytes int) {
	m.mu.Lock()
	m.outcomes[direction+"/"+outcome]++
	m.bytes[direction] += bytes
	m.mu.Unlock()
}

func (m *MockMetricsProvider) outcome(direction, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[direction+"/"+outcome]
}
