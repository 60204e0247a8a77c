package http

import (
	"net"
	"net/http"
	"time"

	"http-logging/infrastructure/config"
)

const (
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
	defaultMaxIdleConns    = 20
)

// NewHTTPClient builds the outbound client used by the indirect ping route.
// Logging is attached separately with RegisterClient.
func NewHTTPClient(cfg config.ClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.GetConnectTimeout(),
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		TLSHandshakeTimeout: cfg.GetConnectTimeout(),
		IdleConnTimeout:     defaultIdleConnTimeout,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConns / 4,
	}

	return &http.Client{
		Timeout:   cfg.GetTotalTimeout(),
		Transport: transport,
	}
}
