package attendee

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no attendee has the requested barcode
var ErrNotFound = errors.New("attendee not found")

// Attendee is one registration. Barcode is the ticket key.
type Attendee struct {
	Barcode    string
	OrderID    string
	FirstName  string
	LastName   string
	Email      string
	Company    string
	JobTitle   string
	TicketType string
	PrintedAt  *time.Time
	EmailedAt  *time.Time
}

// FullName returns "First Last"
func (a *Attendee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// Key identifies the attendee in logs and error reports
func (a *Attendee) Key() string {
	if name := a.FullName(); name != "" {
		return a.Barcode + " (" + name + ")"
	}
	return a.Barcode
}

// Validate checks the fields every credential needs
func (a *Attendee) Validate() error {
	if strings.TrimSpace(a.Barcode) == "" {
		return errors.New("barcode is required")
	}
	if a.FullName() == "" {
		return errors.New("attendee name is required")
	}
	return nil
}

// Filter selects attendees for a run. Zero values match everything.
type Filter struct {
	// Name matches a substring of "First Last", case-insensitively
	Name string
	// Email matches a substring of the email address, case-insensitively
	Email string
	// Unprinted keeps attendees whose SpeedPass was never printed
	Unprinted bool
	// Unemailed keeps attendees whose SpeedPass was never emailed
	Unemailed bool
	Limit     int
}
