package mailer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// DefaultSMTPPort is used when no port is configured.
const DefaultSMTPPort = 587

// implicitTLSPort is the SMTPS port; other ports upgrade with STARTTLS.
const implicitTLSPort = 465

// dialTimeout bounds connecting to the SMTP server.
const dialTimeout = 15 * time.Second

// SMTPConfig holds transport settings.
type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	From string `mapstructure:"from"`
}

// Configured reports whether a real transport can be used.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != ""
}

func (c SMTPConfig) port() int {
	if c.Port <= 0 {
		return DefaultSMTPPort
	}
	return c.Port
}

func (c SMTPConfig) from() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

func (c SMTPConfig) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.port()))
}

// clientOptions selects implicit TLS on 465 and mandatory STARTTLS elsewhere.
func (c SMTPConfig) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(c.port()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.User),
		mail.WithPassword(c.Pass),
		mail.WithTimeout(dialTimeout),
	}
	if c.port() == implicitTLSPort {
		return append(opts, mail.WithSSL())
	}
	return append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
}

type deliverFunc func(ctx context.Context, m *mail.Msg) error

// SMTPSender delivers mail over SMTP.
type SMTPSender struct {
	cfg     SMTPConfig
	deliver deliverFunc
	now     func() time.Time
}

// NewSMTPSender creates an SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{cfg: cfg, now: time.Now}
	s.deliver = s.dialAndSend
	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := s.buildMessage(msg)
	if err != nil {
		return &Error{Message: "failed to build message", Cause: err}
	}
	if err := s.deliver(ctx, m); err != nil {
		return &Error{Message: fmt.Sprintf("failed to send via %s", s.cfg.addr()), Cause: err}
	}
	return nil
}

func (s *SMTPSender) dialAndSend(ctx context.Context, m *mail.Msg) error {
	client, err := mail.NewClient(s.cfg.Host, s.cfg.clientOptions()...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, m)
}

func (s *SMTPSender) buildMessage(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.from()); err != nil {
		return nil, fmt.Errorf("sender %q: %w", s.cfg.from(), err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("recipient %q: %w", msg.To, err)
	}
	if len(msg.CC) > 0 {
		if err := m.Cc(msg.CC...); err != nil {
			return nil, fmt.Errorf("cc: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(s.now())
	m.SetMessageID()
	m.SetEncoding(mail.EncodingQP)
	m.SetBodyString(mail.TypeTextPlain, strings.ReplaceAll(msg.Body, "\r\n", "\n"))
	return m, nil
}
