package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"time"
)

const (
	MailDriverLog        = "log"
	MailDriverSMTP       = "smtp"
	MailDriverMailerSend = "mailersend"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"3333"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseURL    string `env:"DATABASE_URL,required,notEmpty"`
	MigrateOnStart bool   `env:"MIGRATE_ON_START" envDefault:"true"`

	Links  LinksConfig
	Mail   MailConfig
	Notify NotifyConfig

	NATSURL      string `env:"NATS_URL"`
	OTelEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LinksConfig holds the base URLs used to build links sent by email and
// the redirect issued after a trip is confirmed.
type LinksConfig struct {
	APIBaseURL         string `env:"API_BASE_URL" envDefault:"http://localhost:3333"`
	ParticipantBaseURL string `env:"PARTICIPANT_BASE_URL" envDefault:"http://localhost:3333"`
	WebBaseURL         string `env:"WEB_BASE_URL" envDefault:"http://localhost:3000"`
}

type MailConfig struct {
	Driver      string `env:"MAIL_DRIVER" envDefault:"log"`
	FromName    string `env:"MAIL_FROM_NAME" envDefault:"plann.er Team"`
	FromAddress string `env:"MAIL_FROM_ADDRESS" envDefault:"no-reply@plann.er"`

	SMTPHost string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	MailerSendAPIKey string `env:"MAILERSEND_API_KEY"`
}

type NotifyConfig struct {
	Concurrency int           `env:"NOTIFY_CONCURRENCY" envDefault:"8"`
	Timeout     time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Mail.Driver {
	case MailDriverLog, MailDriverSMTP:
	case MailDriverMailerSend:
		if c.Mail.MailerSendAPIKey == "" {
			return errors.New("MAILERSEND_API_KEY is required when MAIL_DRIVER=mailersend")
		}
	default:
		return errors.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver)
	}

	if c.Notify.Concurrency < 1 {
		return errors.Errorf("NOTIFY_CONCURRENCY must be positive, got %d", c.Notify.Concurrency)
	}

	return nil
}
