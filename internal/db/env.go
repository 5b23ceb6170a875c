package db

import (
	"github.com/resumeforge/forge/config"
)

// OptionsFromEnv builds connection options from DB_* environment variables.
func OptionsFromEnv() Options {
	return Options{
		Host:       config.GetEnv("DB_HOST", DefaultHost),
		User:       config.GetEnv("DB_USER", DefaultUser),
		Password:   config.GetEnv("DB_PASSWORD", DefaultPassword),
		DBName:     config.GetEnv("DB_NAME", DefaultDBName),
		Port:       config.GetEnvInt("DB_PORT", DefaultPort),
		SSLEnabled: config.GetEnv("DB_SSL_MODE", "disable") != "disable",
	}
}
