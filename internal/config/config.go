package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Codeforces API
	CodeforcesAPIBase string `mapstructure:"CF_API_BASE"`
	// Fallback sync schedule; the Config table value wins once seeded.
	SyncSchedule string `mapstructure:"CODEFORCES_SYNC_SCHEDULE"`

	// SMTP for inactivity reminders
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASS"`
	EmailFrom    string `mapstructure:"EMAIL_FROM"`
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "5001")
	viper.SetDefault("CF_API_BASE", "https://codeforces.com/api")
	viper.SetDefault("CODEFORCES_SYNC_SCHEDULE", "0 2 * * *")
	viper.SetDefault("SMTP_PORT", 587)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}
