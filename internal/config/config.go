package config

import (
	"os"
)

type Config struct {
	Port        string
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	StorageRoot string
	BaseURL     string
	GinMode     string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "projectuser"),
		DBPassword:  getEnv("DB_PASSWORD", "projectpassword"),
		DBName:      getEnv("DB_NAME", "project_management"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		StorageRoot: getEnv("STORAGE_ROOT", "./storage"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
