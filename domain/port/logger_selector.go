package port

import "http-logging/domain/entity"

// LoggerSelector picks the log channel for an exchange.
//
// Implementations route per endpoint (e.g. one channel per handler) and
// fall back to the caller's own channel when no endpoint is resolved.
// The result must not be cached across exchanges.
type LoggerSelector interface {
	// Select returns the channel name for the exchange and whether that
	// channel currently logs at debug level.
	Select(ex *entity.Exchange, fallback string) (channel string, debug bool)
	// Channel returns the logger for a channel name.
	Channel(name string) Logger
}
