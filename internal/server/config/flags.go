package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   session cookie secret
//	-t int      session ttl, minutes
//	-b string   session backend: postgres, redis or memory
//	-r string   Redis URL
//	-e string   app environment
//	-l string   log level
//	-f string   log format (text or json)
//	-k int      concurrent password derivations
//	-q float    login requests per second per IP
//	-u int      login burst per IP
//
// Args are filtered through flagx.FilterArgs first so that -c/-config and
// flags of other components do not fail parsing. Invalid values panic.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-b", "-r", "-e", "-l", "-f", "-k", "-q", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session secret")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")

	fs.StringVar(&config.SessionBackend, "b", config.SessionBackend, "session backend (postgres, redis, memory)")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.AppEnv, "e", config.AppEnv, "app environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (text, json)")
	fs.IntVar(&config.KDFConcurrency, "k", config.KDFConcurrency, "concurrent password derivations")
	fs.Float64Var(&config.LoginRateLimit, "q", config.LoginRateLimit, "login requests per second per IP")
	fs.IntVar(&config.LoginRateBurst, "u", config.LoginRateBurst, "login burst per IP")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
}
