package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ServerPort int

	StoreDriver string
	DatabaseURL string

	JWTAccessSecret []byte

	KafkaBrokers []string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "academy"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ServerPort: EnvIntDefault("PORT", 5000),

		StoreDriver: strings.ToLower(EnvDefault("STORE_DRIVER", "mongo")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret: []byte(os.Getenv("ACCESS_TOKEN")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
	}
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
