package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ListenAddr  string
	LogLevel    string

	DatabaseURL string

	JWTSecret       []byte
	AccessTTLMin    int
	RefreshTTLHours int

	AuthURL  string
	UserURL  string
	OrderURL string

	KafkaBrokers []string
	RedisAddr    string
	ESURL        string
	ESUser       string
	ESPassword   string
}

func Load(service string) Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", service),
		ListenAddr:  EnvDefault("LISTEN_ADDR", ":8080"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:       []byte(os.Getenv("JWT_HS256_SECRET")),
		AccessTTLMin:    EnvIntDefault("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLHours: EnvIntDefault("REFRESH_TOKEN_TTL_HOURS", 7*24),

		AuthURL:  os.Getenv("AUTH_URL"),
		UserURL:  os.Getenv("USER_URL"),
		OrderURL: os.Getenv("ORDER_URL"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		ESURL:        os.Getenv("ES_URL"),
		ESUser:       os.Getenv("ES_USER"),
		ESPassword:   os.Getenv("ES_PASSWORD"),
	}
}

// MustHave exits the process when a required key is empty. Per-service Load
// wrappers call it for the keys the service cannot start without.
func MustHave(envName, value string) {
	if value == "" {
		log.Fatalf("config: required env %s is not set", envName)
	}
}

func MustHaveBytes(envName string, value []byte) {
	MustHave(envName, string(value))
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
