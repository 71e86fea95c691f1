package config

import "time"

// RateLimitConfig controls the Redis token-bucket limiter applied at the
// HTTP layer.  This is the outer, per-caller gate; the ingestion pipeline
// additionally enforces its own per-session time gate against stored
// samples, which this limiter does not replace.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string // "ip", "user", or "ip_user_route" (default)
    Prefix         string
}

// LoadRateLimitConfig builds a RateLimitConfig from the environment with
// conservative defaults.  Values are clamped so a misconfigured deployment
// still gets a working limiter.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    if cfg.Capacity < 1 {
        cfg.Capacity = 1
    }
    if cfg.RefillTokens < 1 {
        cfg.RefillTokens = 1
    }
    if cfg.RefillInterval <= 0 {
        cfg.RefillInterval = time.Second
    }
    if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
        cfg.TTL = minTTL
    }
    return cfg
}
