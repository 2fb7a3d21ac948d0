package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/virelia/pancrisk/internal/monitoring"
)

// Config holds rate limiter configuration
type Config struct {
	IPLimitPerMin   int // per-IP requests per minute
	BurstMultiplier int // burst capacity multiplier
}

// DefaultConfig returns default rate limiting configuration
func DefaultConfig() Config {
	return Config{
		IPLimitPerMin:   60,
		BurstMultiplier: 2,
	}
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter provides per-IP token bucket rate limiting.
type Limiter struct {
	config  Config
	metrics *monitoring.Metrics

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewLimiter creates a limiter and starts the idle-visitor sweeper.
func NewLimiter(config Config, metrics *monitoring.Metrics) *Limiter {
	l := &Limiter{
		config:   config,
		metrics:  metrics,
		visitors: make(map[string]*visitor),
	}
	go l.sweep()
	return l
}

// AllowIP checks whether the IP may make another request this minute.
func (l *Limiter) AllowIP(ip string) *Result {
	limit := l.config.IPLimitPerMin

	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		burst := limit * l.config.BurstMultiplier
		if burst < 5 {
			burst = 5
		}
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(float64(limit)/60.0), burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()

	allowed := v.limiter.Allow()

	remaining := int(v.limiter.Tokens())
	if remaining < 0 {
		remaining = 0
	}

	res := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(time.Minute),
	}
	if !allowed {
		res.RetryAfter = time.Until(res.ResetAt)
		if l.metrics != nil {
			l.metrics.IncrementRateLimitBlock()
		}
	}
	return res
}

// sweep drops visitors that have been idle for a while.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)
		l.mu.Lock()
		for ip, v := range l.visitors {
			if v.lastSeen.Before(cutoff) {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Stats returns rate limiter statistics
func (l *Limiter) Stats() map[string]interface{} {
	l.mu.Lock()
	count := len(l.visitors)
	l.mu.Unlock()

	return map[string]interface{}{
		"tracked_ips":      count,
		"limit_per_minute": l.config.IPLimitPerMin,
	}
}
