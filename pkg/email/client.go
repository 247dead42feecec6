package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/helpdesk_backend/config"
)

// Sender is what callers depend on; *Client implements it over SMTP.
type Sender interface {
	Send(ctx context.Context, m Message) error
	Enabled() bool
}

type Client struct {
	cfg    Config
	dialer *gomail.Dialer
}

var _ Sender = (*Client)(nil)

func NewFromCentral(cfg config.EmailConfig) (*Client, error) {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.SMTP.Timeout <= 0 {
		cfg.SMTP.Timeout = DefaultConfig().SMTP.Timeout
	}
	c := &Client{cfg: cfg}
	if cfg.Enabled {
		d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
		d.SSL = cfg.SMTP.TLS
		d.TLSConfig = &tls.Config{ServerName: cfg.SMTP.Host, MinVersion: tls.VersionTLS12}
		c.dialer = d
	}
	return c, nil
}

func (c *Client) Enabled() bool { return c.cfg.Enabled }

func (c *Client) Config() Config { return c.cfg }

// Send delivers m, giving up when ctx ends or the SMTP timeout passes. The
// dial itself cannot be interrupted; an abandoned attempt finishes in the
// background.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled{}
	}

	msg, err := c.compose(m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SMTP.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "smtp " + c.cfg.SMTP.Host, Err: err}
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send %q: %w", m.Subject, ctx.Err())
	}
}

func (c *Client) compose(m Message) (*gomail.Message, error) {
	to := nonBlank(m.To)
	switch {
	case strings.TrimSpace(c.cfg.From) == "":
		return nil, ErrInvalidMessage{Reason: "from is required"}
	case len(to) == 0:
		return nil, ErrInvalidMessage{Reason: "at least one recipient is required"}
	case strings.TrimSpace(m.Subject) == "":
		return nil, ErrInvalidMessage{Reason: "subject is required"}
	case strings.TrimSpace(m.TextBody) == "" && strings.TrimSpace(m.HTMLBody) == "":
		return nil, ErrInvalidMessage{Reason: "a text or html body is required"}
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", c.cfg.From, c.cfg.AppName)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", strings.TrimSpace(m.Subject))
	if m.ReplyTo != "" {
		msg.SetHeader("Reply-To", m.ReplyTo)
	}

	domain := c.cfg.domain()
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domain))
	if m.Thread != nil {
		root := m.Thread.root(domain)
		msg.SetHeader("In-Reply-To", root)
		msg.SetHeader("References", root)
	}

	switch {
	case m.TextBody != "" && m.HTMLBody != "":
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case m.HTMLBody != "":
		msg.SetBody("text/html", m.HTMLBody)
	default:
		msg.SetBody("text/plain", m.TextBody)
	}
	return msg, nil
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
