package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabasePath                  string        `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	SecureCookies                 bool          `mapstructure:"SECURE_COOKIES"`
	SessionBackend                string        `mapstructure:"SESSION_BACKEND"`
	SessionTTL                    time.Duration `mapstructure:"SESSION_TTL"`
	SessionMaxEntries             int           `mapstructure:"SESSION_MAX_ENTRIES"`
	RedisAddr                     string        `mapstructure:"REDIS_ADDR"`
	CatalogPath                   string        `mapstructure:"CATALOG_PATH"`
	PublicURL                     string        `mapstructure:"PUBLIC_URL"`
	LogLevel                      string        `mapstructure:"LOG_LEVEL"`
	LogFormat                     string        `mapstructure:"LOG_FORMAT"`
	DiscordClientID               string        `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string        `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string        `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordGuildID                string        `mapstructure:"DISCORD_GUILD_ID"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
}

func LoadConfig() *Config {
	// A missing .env is fine, the environment wins anyway.
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "mosaic.db")
	viper.SetDefault("SECURE_COOKIES", false)
	viper.SetDefault("SESSION_BACKEND", "memory")
	viper.SetDefault("SESSION_TTL", 2*time.Hour)
	viper.SetDefault("SESSION_MAX_ENTRIES", 10000)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("PUBLIC_URL", "http://127.0.0.1:8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("CATALOG_PATH")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_GUILD_ID")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	if config.JWTSecret == "" {
		log.Fatalf("JWT_SECRET must be set")
	}

	return &config
}
