package config

// env.go groups the small helpers used by the optional config loaders in
// this package.  Unlike must(), these return a default instead of exiting,
// because the features they configure can run with sane defaults.

import (
    "os"
    "strconv"
    "time"
)

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envFloat(k string, d float64) float64 {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if f, err := strconv.ParseFloat(v, 64); err == nil {
        return f
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
