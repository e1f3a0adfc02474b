package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/loanportal/internal/flagx"
	"github.com/dmitrijs2005/loanportal/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "24h"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SessionSecret    string         `json:"session_secret"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	SessionBackend   string         `json:"session_backend"`
	RedisURL         string         `json:"redis_url"`
	AppEnv           string         `json:"app_env"`
	LogLevel         string         `json:"log_level"`
	LogFormat        string         `json:"log_format"`
	KDFConcurrency   int            `json:"kdf_concurrency"`
	LoginRateLimit   float64        `json:"login_rate_limit"`
	LoginRateBurst   int            `json:"login_rate_burst"`
}

// parseJson loads the file named by -c/-config, if any, and copies every
// field that is set in the file into config. Unreadable files and invalid
// JSON panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFileFlag(args)

	// nothing to load
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SessionSecret, c.SessionSecret)
	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.AppEnv, c.AppEnv)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.KDFConcurrency > 0 {
		config.KDFConcurrency = c.KDFConcurrency
	}
	if c.LoginRateLimit > 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
	if c.LoginRateBurst > 0 {
		config.LoginRateBurst = c.LoginRateBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
