package mailer

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// Attachment is a file sent along with a message
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one email
type Message struct {
	To      string
	ToName  string
	Subject string
	// HTML is the message body; a plain-text alternative is derived from it
	HTML       string
	Attachment *Attachment
}

// Validate checks the recipient address and that the message has a body
func (m *Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("recipient address is required")
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return errors.New("invalid recipient address: " + m.To)
	}
	if strings.TrimSpace(m.HTML) == "" {
		return errors.New("message body is empty")
	}
	return nil
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
