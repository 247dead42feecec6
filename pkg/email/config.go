package email

import (
	"net/mail"
	"strings"
	"time"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

type Config struct {
	Enabled bool
	// From is the envelope sender; AppName becomes its display name.
	From    string
	AppName string
	// BaseURL prefixes the links to tickets and the login page.
	BaseURL string
	SMTP    SMTP
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS dials implicit TLS (port 465). Otherwise gomail upgrades with
	// STARTTLS when the server offers it.
	TLS     bool
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		AppName: defaultAppName,
		SMTP: SMTP{
			Port:    587,
			Timeout: 30 * time.Second,
		},
	}
}

func FromCentralConfig(c config.EmailConfig) Config {
	cfg := DefaultConfig()
	cfg.Enabled = c.Enabled
	cfg.From = c.From
	cfg.BaseURL = c.BaseURL
	if c.AppName != "" {
		cfg.AppName = c.AppName
	}
	cfg.SMTP.Host = c.SMTP.Host
	if c.SMTP.Port > 0 {
		cfg.SMTP.Port = c.SMTP.Port
	}
	cfg.SMTP.Username = c.SMTP.Username
	cfg.SMTP.Password = c.SMTP.Password
	cfg.SMTP.TLS = c.SMTP.UseTLS
	if c.SMTP.TimeoutSeconds > 0 {
		cfg.SMTP.Timeout = time.Duration(c.SMTP.TimeoutSeconds) * time.Second
	}
	return cfg
}

func (c Config) validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SMTP.Host == "" {
		return ErrInvalidMessage{Reason: "smtp host is required when email is enabled"}
	}
	if _, err := mail.ParseAddress(c.From); err != nil {
		return ErrInvalidMessage{Reason: "from must be a valid address"}
	}
	return nil
}

// domain is the host part of From, used to mint Message-IDs.
func (c Config) domain() string {
	if i := strings.LastIndexByte(c.From, '@'); i >= 0 {
		return strings.TrimRight(c.From[i+1:], ">")
	}
	return "localhost"
}
