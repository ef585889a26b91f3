package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Only JWT_SECRET is mandatory; everything
// else has a default suitable for local development.
type Config struct {
	Env                  string // application environment (e.g. "dev", "prod")
	Port                 string // HTTP port to listen on
	DBPath               string // path of the SQLite database file
	JWTSecret            string // secret used to sign session tokens
	TokenTTLMin          int    // session token time-to-live in minutes
	BcryptCost           int    // bcrypt cost for password hashing
	AuditConsumerEnabled bool   // start the background audit log consumer
}

// Load reads configuration values from environment variables and returns
// a Config. A missing JWT_SECRET causes the program to exit with a fatal
// log message.
func Load() Config {
	return Config{
		Env:                  envStr("APP_ENV", "dev"),
		Port:                 envStr("APP_PORT", "5000"),
		DBPath:               envStr("DB_PATH", "dbdata/database.sqlite"),
		JWTSecret:            must("JWT_SECRET"),
		TokenTTLMin:          envInt("TOKEN_TTL_MIN", 720),
		BcryptCost:           envInt("BCRYPT_COST", 10),
		AuditConsumerEnabled: envBool("AUDIT_CONSUMER_ENABLED", false),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
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

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
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
