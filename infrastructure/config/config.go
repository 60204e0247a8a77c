package config

import (
	"strings"
	"time"
)

// Config is the root of the YAML configuration file.
type Config struct {
	Listen      string            `yaml:"listen"`
	Router      string            `yaml:"router"` // servemux (default) or chi
	Logging     Logging           `yaml:"logging"`
	HTTPLogging HTTPLoggingConfig `yaml:"http_logging"`
	Client      ClientConfig      `yaml:"client"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

func (c *Config) GetListen() string {
	if c.Listen == "" {
		return ":8080"
	}
	return c.Listen
}

func (c *Config) GetRouter() string {
	if c.Router == "" {
		return "servemux"
	}
	return strings.ToLower(c.Router)
}

// Logging 日志后端配置
type Logging struct {
	Level         string            `yaml:"level"`
	MaskSensitive *bool             `yaml:"mask_sensitive,omitempty"`
	Console       ConsoleConfig     `yaml:"console"`
	File          FileConfig        `yaml:"file"`
	Channels      map[string]string `yaml:"channels"` // channel -> level
}

// ConsoleConfig 控制台输出配置
type ConsoleConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Colorize *bool  `yaml:"colorize,omitempty"`
	Format   string `yaml:"format"` // console/json
}

// FileConfig 文件输出配置
type FileConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxAgeDays int    `yaml:"max_age_days"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

func (l *Logging) GetLevel() string {
	if l.Level == "" {
		return "info"
	}
	return l.Level
}

// GetChannelLevel returns the level configured for a channel, or the
// root level when the channel is not listed.
func (l *Logging) GetChannelLevel(channel string) string {
	if lvl, ok := l.Channels[channel]; ok && lvl != "" {
		return lvl
	}
	return l.GetLevel()
}

func (l *Logging) ShouldMaskSensitive() bool {
	return l.MaskSensitive == nil || *l.MaskSensitive
}

func (c *ConsoleConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

func (c *ConsoleConfig) GetColorize() bool {
	return c.Colorize == nil || *c.Colorize
}

func (c *ConsoleConfig) GetFormat() string {
	if c.Format == "" {
		return "console"
	}
	return c.Format
}

func (f *FileConfig) GetPath() string {
	if f.Path == "" {
		return "./logs/http-logging.log"
	}
	return f.Path
}

func (f *FileConfig) GetMaxSizeMB() int {
	if f.MaxSizeMB <= 0 {
		return 100
	}
	return f.MaxSizeMB
}

func (f *FileConfig) GetMaxAgeDays() int {
	if f.MaxAgeDays <= 0 {
		return 7
	}
	return f.MaxAgeDays
}

func (f *FileConfig) GetMaxBackups() int {
	if f.MaxBackups <= 0 {
		return 10
	}
	return f.MaxBackups
}

// HTTPLoggingConfig configures the exchange loggers.
type HTTPLoggingConfig struct {
	MaxBodyBytes  int64             `yaml:"max_body_bytes"`
	ClientChannel string            `yaml:"client_channel"`
	ServerChannel string            `yaml:"server_channel"`
	HiddenHeaders []string          `yaml:"hidden_headers"`
	Endpoints     map[string]string `yaml:"endpoints"` // endpoint -> channel
}

func (h *HTTPLoggingConfig) GetMaxBodyBytes() int64 {
	if h.MaxBodyBytes <= 0 {
		return 64 * 1024
	}
	return h.MaxBodyBytes
}

func (h *HTTPLoggingConfig) GetClientChannel() string {
	if h.ClientChannel == "" {
		return "http-logging.client"
	}
	return h.ClientChannel
}

func (h *HTTPLoggingConfig) GetServerChannel() string {
	if h.ServerChannel == "" {
		return "http-logging.server"
	}
	return h.ServerChannel
}

// ClientConfig holds the timeouts of the outgoing HTTP client.
type ClientConfig struct {
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	TotalTimeout   time.Duration `yaml:"total_timeout"`
}

func (c *ClientConfig) GetConnectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return 10 * time.Second
	}
	return c.ConnectTimeout
}

func (c *ClientConfig) GetTotalTimeout() time.Duration {
	if c.TotalTimeout <= 0 {
		return 30 * time.Second
	}
	return c.TotalTimeout
}

type RateLimitConfig struct {
	Enabled     bool    `yaml:"enabled"`
	GlobalRPS   float64 `yaml:"global_rps"`
	PerIPRPS    float64 `yaml:"per_ip_rps"`
	BurstFactor float64 `yaml:"burst_factor"`
}

func (r *RateLimitConfig) GetGlobalRPS() float64 {
	if r.GlobalRPS <= 0 {
		return 1000
	}
	return r.GlobalRPS
}

func (r *RateLimitConfig) GetPerIPRPS() float64 {
	if r.PerIPRPS <= 0 {
		return 100
	}
	return r.PerIPRPS
}

func (r *RateLimitConfig) GetBurstFactor() float64 {
	if r.BurstFactor <= 0 {
		return 1.5
	}
	return r.BurstFactor
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func (m *MetricsConfig) GetPath() string {
	if m.Path == "" {
		return "/metrics"
	}
	return m.Path
}
