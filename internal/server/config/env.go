package config

// parseEnv overlays the environment variables the deployment sets:
// PORT, DATABASE_URL, SESSION_SECRET, APP_ENV, REDIS_URL, LOG_LEVEL.
// Empty variables leave the current value alone.
func parseEnv(config *Config, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		config.DatabaseDSN = v
	}
	if v := getenv("SESSION_SECRET"); v != "" {
		config.SessionSecret = v
	}
	if v := getenv("APP_ENV"); v != "" {
		config.AppEnv = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		config.RedisURL = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}
