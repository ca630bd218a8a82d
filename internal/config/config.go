package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Addr           string        `mapstructure:"ADDR"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	RevealCooldown time.Duration `mapstructure:"REVEAL_COOLDOWN"`
	Debug          bool          `mapstructure:"DEBUG"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("ADDR", ":8080")
	viper.SetDefault("SESSION_TTL", 14*24*time.Hour)
	viper.SetDefault("REVEAL_COOLDOWN", time.Hour)
	viper.SetDefault("DEBUG", false)

	if err := viper.ReadInConfig(); err != nil {
		logrus.Warn(".env file not found, loading from environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		logrus.Fatalf("Unable to decode config into struct: %v", err)
	}
}
