package mailer

import (
	"context"
	"fmt"
	"io"

	"github.com/sqlsaturday/satops/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender submits messages to an SMTP relay. Port 465 uses implicit TLS; any
// other port upgrades with STARTTLS when the server offers it.
type SMTPSender struct {
	from   string
	dialer dialer
	logger *zap.Logger
}

// NewSMTPSender creates an SMTPSender from the smtp config section
func NewSMTPSender(cfg *config.SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Port == 465

	return &SMTPSender{
		from:   cfg.From,
		dialer: d,
		logger: logger,
	}, nil
}

// Send submits one message. Delivery failures reported by the relay after
// acceptance are out of reach here.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := s.build(msg)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending to %s: %w", msg.To, err)
	}

	s.logger.Debug("email submitted", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (s *SMTPSender) build(msg Message) (*gomail.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)

	text, err := PlainText(msg.HTML)
	if err != nil {
		return nil, err
	}
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", msg.HTML)

	if a := msg.Attachment; a != nil {
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/pdf"
		}
		data := a.Data
		m.Attach(a.Name,
			gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m, nil
}

var _ Sender = (*SMTPSender)(nil)
