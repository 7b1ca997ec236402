package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits comma separated lists

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs.
type Config struct {
	Env          string   // application environment (e.g. "dev", "prod")
	Port         string   // HTTP port to listen on
	MongoURI     string   // MongoDB connection string
	JWTSecret    string   // secret used to sign session tokens
	TokenTTLDays int      // session token time-to-live in days
	BcryptCost   int      // bcrypt cost for password hashing
	CORSOrigins  []string // allowed browser origins, comma separated in env
	AMQPURL      string   // message broker URL (optional; events disabled when empty)
	AIServiceURL string   // external text-extraction service base URL
	AIServiceKey string   // API key for the extraction service (optional)
}

// Load reads configuration from the environment. A .env file is honoured
// when present so local development does not need exported variables.
// Required variables are enforced by must() and missing values cause the
// program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         envStr("APP_PORT", "4000"),
		MongoURI:     must("MONGO_URI"),
		JWTSecret:    must("JWT_SECRET"),
		TokenTTLDays: envInt("TOKEN_TTL_DAYS", 30),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		CORSOrigins:  splitCSV(os.Getenv("CORS_ORIGINS")),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AIServiceURL: os.Getenv("AI_SERVICE_URL"),
		AIServiceKey: os.Getenv("AI_SERVICE_KEY"),
	}
}

// IsProd reports whether the app runs with production error reporting
// (debug detail withheld from clients).
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

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

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
