package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`

	// Standard 5-field cron expression driving the sweep cadence.
	SweepSchedule string `env:"SWEEP_SCHEDULE,default=0 * * * *"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	TextGatewayURL   string `env:"TEXT_GATEWAY_URL"`
	TextGatewayToken string `env:"TEXT_GATEWAY_TOKEN"`
	TextFrom         string `env:"TEXT_FROM"`

	SendTimeoutSec    int    `env:"SEND_TIMEOUT_SEC,default=15"`
	ChannelRatePerSec int    `env:"CHANNEL_RATE_PER_SEC,default=10"`
	MetricsPort       int    `env:"METRICS_PORT,default=9090"`
	LogLevel          string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
