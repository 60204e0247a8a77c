package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	apierrors "http-logging/errors"
	"http-logging/infrastructure/config"
)

// ConfigProvider returns the current configuration.
type ConfigProvider interface {
	Get() *config.Config
}

type RateLimiter struct {
	global       *rate.Limiter
	perIP        map[string]*rate.Limiter
	mu           sync.RWMutex
	configGetter func() config.RateLimitConfig
}

// NewRateLimiter creates a new rate limiter with the given config provider.
// Call Update after the configuration changes.
func NewRateLimiter(configProvider ConfigProvider) *RateLimiter {
	rl := &RateLimiter{
		perIP: make(map[string]*rate.Limiter),
		configGetter: func() config.RateLimitConfig {
			return configProvider.Get().RateLimit
		},
	}
	rl.Update()
	return rl
}

// Update 更新限流器配置，当配置变更时调用此方法
func (rl *RateLimiter) Update() {
	cfg := rl.configGetter()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if cfg.Enabled {
		rl.global = newLimiter(cfg.GetGlobalRPS(), cfg.GetBurstFactor())
	} else {
		rl.global = nil
	}
	// 清除缓存的 perIP limiter，下次请求时重新创建
	rl.perIP = make(map[string]*rate.Limiter)
}

func newLimiter(rps, burstFactor float64) *rate.Limiter {
	burst := int(rps * burstFactor)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (rl *RateLimiter) getIPLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.perIP[ip]
	rl.mu.RUnlock()
	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if limiter, exists = rl.perIP[ip]; exists {
		return limiter
	}
	cfg := rl.configGetter()
	limiter = newLimiter(cfg.GetPerIPRPS(), cfg.GetBurstFactor())
	rl.perIP[ip] = limiter
	return limiter
}

func (rl *RateLimiter) Allow(ip string) bool {
	cfg := rl.configGetter()
	if !cfg.Enabled {
		return true
	}
	rl.mu.RLock()
	global := rl.global
	rl.mu.RUnlock()
	if global != nil && !global.Allow() {
		return false
	}
	if ip != "" && !rl.getIPLimiter(ip).Allow() {
		return false
	}
	return true
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(ExtractIP(r)) {
			w.Header().Set("Retry-After", "1")
			apierrors.WriteJSONError(w, apierrors.ErrRateLimited, http.StatusTooManyRequests, r.Header.Get("X-Request-ID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
