package http

import (
	"encoding/json"
	"net/http"

	"http-logging/domain/port"
	"http-logging/infrastructure/config"
)

// ConfigProvider returns the current configuration.
type ConfigProvider interface {
	Get() *config.Config
}

type HealthHandler struct {
	configProvider ConfigProvider
	logger         port.Logger
}

func NewHealthHandler(configProvider ConfigProvider, logger port.Logger) *HealthHandler {
	if logger == nil {
		logger = &port.NopLogger{}
	}
	return &HealthHandler{
		configProvider: configProvider,
		logger:         logger,
	}
}

type HealthStatus struct {
	Status    string `json:"status"`
	LogLevel  string `json:"log_level"`
	Endpoints int    `json:"endpoints"`
	Channels  int    `json:"channels"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.configProvider.Get()

	status := HealthStatus{
		Status:    "healthy",
		LogLevel:  cfg.Logging.GetLevel(),
		Endpoints: len(cfg.HTTPLogging.Endpoints),
		Channels:  len(cfg.Logging.Channels),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		h.logger.Error("failed to encode health status", port.Error(err))
	}
}
