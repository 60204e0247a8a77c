package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"http-logging/domain/entity"
	"http-logging/domain/port"
)

// ChannelSource hands out named zap loggers.
type ChannelSource interface {
	Logger(name string) *zap.Logger
}

// ChannelSelector picks the log channel of an exchange: the channel mapped
// to its endpoint, or the fallback channel of the calling role.
type ChannelSelector struct {
	source ChannelSource

	mu        sync.RWMutex
	endpoints map[string]string
	adapters  map[string]*ZapLoggerAdapter
}

// NewChannelSelector creates a selector over source. endpoints maps an
// endpoint handle (e.g. "POST /ping") to a channel name.
func NewChannelSelector(source ChannelSource, endpoints map[string]string) *ChannelSelector {
	s := &ChannelSelector{
		source:   source,
		adapters: make(map[string]*ZapLoggerAdapter),
	}
	s.SetEndpoints(endpoints)
	return s
}

// SetEndpoints replaces the endpoint table, e.g. after a config reload.
func (s *ChannelSelector) SetEndpoints(endpoints map[string]string) {
	table := make(map[string]string, len(endpoints))
	for endpoint, channel := range endpoints {
		table[endpoint] = channel
	}
	s.mu.Lock()
	s.endpoints = table
	s.mu.Unlock()
}

func (s *ChannelSelector) Select(ex *entity.Exchange, fallback string) (string, bool) {
	name := fallback
	if ex != nil && ex.Endpoint != "" {
		s.mu.RLock()
		if channel, ok := s.endpoints[ex.Endpoint]; ok {
			name = channel
		}
		s.mu.RUnlock()
	}
	return name, s.source.Logger(name).Core().Enabled(zapcore.DebugLevel)
}

func (s *ChannelSelector) Channel(name string) port.Logger {
	s.mu.RLock()
	adapter, ok := s.adapters[name]
	s.mu.RUnlock()
	if ok {
		return adapter
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if adapter, ok := s.adapters[name]; ok {
		return adapter
	}
	adapter = NewZapLoggerAdapter(s.source.Logger(name).Sugar())
	s.adapters[name] = adapter
	return adapter
}

var _ port.LoggerSelector = (*ChannelSelector)(nil)
