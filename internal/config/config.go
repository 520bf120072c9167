package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port                          string `mapstructure:"PORT"`
	DatabasePath                  string `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string `mapstructure:"JWT_SECRET"`
	FrontendURL                   string `mapstructure:"FRONTEND_URL"`
	MailFrom                      string `mapstructure:"MAIL_FROM"`
	ResendAPIKey                  string `mapstructure:"RESEND_API_KEY"`
	MailWorkers                   int    `mapstructure:"MAIL_WORKERS"`
	MailSendTimeoutSeconds        int    `mapstructure:"MAIL_SEND_TIMEOUT_SECONDS"`
	PollIntervalSeconds           int    `mapstructure:"POLL_INTERVAL_SECONDS"`
	FeedbackGraceMinutes          int    `mapstructure:"FEEDBACK_GRACE_MINUTES"`
	DiscordBotToken               string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "eventhub.db")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000")
	viper.SetDefault("MAIL_FROM", "EventHub <noreply@eventhub.local>")
	viper.SetDefault("MAIL_WORKERS", 4)
	viper.SetDefault("MAIL_SEND_TIMEOUT_SECONDS", 10)
	viper.SetDefault("POLL_INTERVAL_SECONDS", 60)
	viper.SetDefault("FEEDBACK_GRACE_MINUTES", 1)

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("MAIL_FROM")
	viper.BindEnv("RESEND_API_KEY")
	viper.BindEnv("MAIL_WORKERS")
	viper.BindEnv("MAIL_SEND_TIMEOUT_SECONDS")
	viper.BindEnv("POLL_INTERVAL_SECONDS")
	viper.BindEnv("FEEDBACK_GRACE_MINUTES")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal().Err(err).Msg("Unable to decode config")
	}

	return &config
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func (c *Config) FeedbackGrace() time.Duration {
	return time.Duration(c.FeedbackGraceMinutes) * time.Minute
}

func (c *Config) MailSendTimeout() time.Duration {
	return time.Duration(c.MailSendTimeoutSeconds) * time.Second
}
