package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Which secrets are actually required depends on the active driver,
// connectors verify their own on Connect().
type secrets struct {
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	MongoURI      string
	MongoDatabase string

	ElasticAddresses []string
	ElasticUser      string
	ElasticPassword  string

	SentryDSN string
}

var Secret secrets

func getEnv(key string) string {
	env, _ := os.LookupEnv(key)

	configLogger.Info("Loaded: "+key, nil)

	return env
}

func loadSecrets() {
	configLogger.Info("Loading environment variables...", nil)

	if err := godotenv.Load(); err != nil {
		// .env is optional, env may come from the process environment
		configLogger.Warning("No .env file loaded: "+err.Error(), nil)
	}

	Secret = secrets{
		DatabaseHost:     getEnv("DATABASE_HOST"),
		DatabasePort:     getEnv("DATABASE_PORT"),
		DatabaseName:     getEnv("DATABASE_NAME"),
		DatabaseUser:     getEnv("DATABASE_USER"),
		DatabasePassword: getEnv("DATABASE_PASSWORD"),

		MongoURI:      getEnv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE"),

		ElasticUser:     getEnv("ELASTIC_USER"),
		ElasticPassword: getEnv("ELASTIC_PASSWORD"),

		SentryDSN: getEnv("SENTRY_DSN"),
	}

	if raw := getEnv("ELASTIC_ADDRESSES"); raw != "" {
		Secret.ElasticAddresses = strings.Split(raw, ",")
	}

	configLogger.Info("Loading environment variables: OK", nil)
}
