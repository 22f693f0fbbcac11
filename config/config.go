package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	Port           string `envconfig:"PORT"            default:":8080"`
	LogLevel       string `envconfig:"LOG_LEVEL"       default:"info"`
	AdminEmail     string `envconfig:"ADMIN_EMAIL"     default:"admin@example.com"`
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"postgres"` // postgres or memory
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Port=%s, LogLevel=%s, StorageBackend=%s", config.Port, config.LogLevel, config.StorageBackend)
		if config.StorageBackend == "postgres" && config.DatabaseURL == "" {
			logger.Fatal("Configuration error: DATABASE_URL is not set")
		}
	})
	return &config
}
