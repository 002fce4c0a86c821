// Package config assembles the academy service settings from .env and the environment.
package config

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/sport_academy/internal/repo"
	pkgconfig "github.com/Skotchmaster/sport_academy/pkg/config"
)

type Config struct {
	pkgconfig.Config

	MongoURI string
	MongoDB  string

	ESURL      string
	ESUser     string
	ESPassword string
}

// Load reads .env when present. Environment variables always win over the file.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		Config: pkgconfig.Load(),

		MongoURI: mongoURI(),
		MongoDB:  pkgconfig.EnvDefault("MONGO_DB", repo.DefaultDatabase),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
	}
}

// mongoURI prefers MONGO_URI and otherwise builds the SRV URI from DB_USER, DB_PASS and MONGO_HOST.
func mongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	user, pass, host := os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("MONGO_HOST")
	if user == "" || host == "" {
		return ""
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(user), url.QueryEscape(pass), host)
}

// MustValidate stops the process when a required setting is missing.
func (c *Config) MustValidate() {
	pkgconfig.MustNonEmptyBytes(c.JWTAccessSecret, "ACCESS_TOKEN")
	pkgconfig.MustOneOf(c.StoreDriver, "STORE_DRIVER", "mongo", "postgres", "sqlite")

	switch c.StoreDriver {
	case "mongo":
		pkgconfig.MustNonEmpty(c.MongoURI, "MONGO_URI")
	default:
		pkgconfig.MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	}
}

func (c *Config) SearchEnabled() bool {
	return c.ESURL != ""
}
