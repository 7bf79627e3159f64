package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default-secret-key-change-in-production"

type Config struct {
	Port        string
	StoreDriver string

	MongoURL string
	MongoDB  string
	DBUrl    string

	JWTSecret        string
	JWTSecretDefault bool
	TokenTTL         time.Duration

	HashConcurrency       int
	AllowPrivilegedSignup bool

	RateLimitRPS         float64
	RateLimitBurst       int
	SlowRequestThreshold time.Duration

	LogLevel  string
	LogFormat string
}

// LoadConfig reads the given .env files (or ./.env when none are given) and
// then the process environment. Missing files are not an error.
func LoadConfig(envFiles ...string) Config {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println(".env file not found, using environment and defaults")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("SECRET")
	}
	secretDefault := false
	if secret == "" {
		secret = defaultJWTSecret
		secretDefault = true
	}

	return Config{
		Port:        getEnv("PORT", "4000"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),

		MongoURL: getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "marketplace"),
		DBUrl:    withParseTime(os.Getenv("DB_URL")),

		JWTSecret:        secret,
		JWTSecretDefault: secretDefault,
		TokenTTL:         getDuration("TOKEN_TTL", 7*24*time.Hour),

		HashConcurrency:       getInt("HASH_CONCURRENCY", runtime.GOMAXPROCS(0)),
		AllowPrivilegedSignup: getBool("ALLOW_PRIVILEGED_SIGNUP", true),

		RateLimitRPS:         getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getInt("RATE_LIMIT_BURST", 20),
		SlowRequestThreshold: getDuration("SLOW_REQUEST_THRESHOLD", time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// withParseTime makes the MySQL driver scan DATETIME columns into time.Time.
func withParseTime(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "parseTime=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true"
	}
	return dsn + "?parseTime=true"
}
