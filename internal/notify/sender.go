package notify

import (
	"fmt"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/wonny/clientintel/internal/contracts"
	"github.com/wonny/clientintel/pkg/config"
	"github.com/wonny/clientintel/pkg/logger"
)

// dialTimeout bounds the SMTP connection
const dialTimeout = 10 * time.Second

// messageSender is satisfied by *gomail.Dialer
type messageSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends rendered briefings over SMTP
type Mailer struct {
	cfg      config.SMTPConfig
	sender   messageSender
	renderer *Renderer
	logger   *logger.Logger
}

// NewMailer creates a mailer. A Mailer built from an incomplete SMTP config is disabled.
func NewMailer(cfg config.SMTPConfig, log *logger.Logger) *Mailer {
	if log == nil {
		log = logger.Nop()
	}

	m := &Mailer{
		cfg:      cfg,
		renderer: NewRenderer(),
		logger:   log.WithComponent("notify"),
	}

	if cfg.Enabled() {
		dialer := gomail.NewDialer(cfg.Server, cfg.Port, cfg.User, cfg.Password)
		dialer.Timeout = dialTimeout
		m.sender = dialer
	}

	return m
}

// Enabled reports whether Send will attempt delivery
func (m *Mailer) Enabled() bool {
	return m != nil && m.sender != nil
}

// Send renders b and emails it to the configured recipient.
// A disabled mailer returns nil without doing anything.
func (m *Mailer) Send(b *contracts.Briefing) error {
	if !m.Enabled() {
		return nil
	}

	msg, err := m.renderer.Render(b)
	if err != nil {
		return err
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}

	message := gomail.NewMessage()
	message.SetHeader("From", from)
	message.SetHeader("To", m.cfg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Text)
	message.AddAlternative("text/html", msg.HTML)

	if err := m.sender.DialAndSend(message); err != nil {
		m.logger.WithError(err).
			WithField("subject", msg.Subject).
			Error("Failed to send briefing email")
		return fmt.Errorf("send briefing email: %w", err)
	}

	m.logger.WithField("subject", msg.Subject).Info("Briefing email sent")
	return nil
}
