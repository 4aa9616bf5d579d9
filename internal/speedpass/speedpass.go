package speedpass

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/qrcode"
	"github.com/sqlsaturday/satops/internal/render"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Event is the conference printed on every credential
type Event struct {
	Name          string
	Date          string
	Venue         string
	RaffleTickets int
}

// Compose builds the SpeedPass of one attendee. The admission QR encodes the
// ticket barcode; every raffle ticket carries the attendee's contact card so
// sponsors can scan it at the drawing.
func Compose(ctx context.Context, a attendee.Attendee, ev Event, gen qrcode.Generator) (render.SpeedPass, error) {
	if err := a.Validate(); err != nil {
		return render.SpeedPass{}, err
	}

	first := NormalizeName(a.FirstName)
	last := NormalizeName(a.LastName)
	full := strings.TrimSpace(first + " " + last)

	admission, err := gen.PNG(ctx, a.Barcode)
	if err != nil {
		return render.SpeedPass{}, fmt.Errorf("admission QR: %w", err)
	}

	pass := render.SpeedPass{
		EventName:   ev.Name,
		EventDate:   ev.Date,
		Venue:       ev.Venue,
		Barcode:     a.Barcode,
		FirstName:   first,
		FullName:    full,
		Company:     strings.TrimSpace(a.Company),
		JobTitle:    strings.TrimSpace(a.JobTitle),
		TicketType:  strings.TrimSpace(a.TicketType),
		AdmissionQR: template.URL(qrcode.DataURI(admission)),
	}

	if ev.RaffleTickets > 0 {
		contact, err := gen.PNG(ctx, ContactCard(a, first, last))
		if err != nil {
			return render.SpeedPass{}, fmt.Errorf("raffle QR: %w", err)
		}
		uri := template.URL(qrcode.DataURI(contact))
		for i := 1; i <= ev.RaffleTickets; i++ {
			pass.Raffles = append(pass.Raffles, render.RaffleTicket{
				Number:  i,
				Name:    full,
				Email:   strings.TrimSpace(a.Email),
				Company: pass.Company,
				QR:      uri,
			})
		}
	}

	return pass, nil
}

// vcardEscaper escapes text values per RFC 6350 section 3.4
var vcardEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\r\n", `\n`, "\n", `\n`)

// ContactCard is the vCard payload of a raffle ticket QR code
func ContactCard(a attendee.Attendee, first, last string) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + vcardEscaper.Replace(last) + ";" + vcardEscaper.Replace(first),
		"FN:" + vcardEscaper.Replace(strings.TrimSpace(first+" "+last)),
	}
	if email := strings.TrimSpace(a.Email); email != "" {
		lines = append(lines, "EMAIL:"+email)
	}
	if company := strings.TrimSpace(a.Company); company != "" {
		lines = append(lines, "ORG:"+vcardEscaper.Replace(company))
	}
	if title := strings.TrimSpace(a.JobTitle); title != "" {
		lines = append(lines, "TITLE:"+vcardEscaper.Replace(title))
	}
	lines = append(lines, "END:VCARD")
	return strings.Join(lines, "\n")
}

// NormalizeName title-cases names typed entirely in lower or upper case and
// leaves mixed-case names ("McDonald", "de la Cruz") as entered
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return name
	}
	if name != strings.ToLower(name) && name != strings.ToUpper(name) {
		return name
	}
	return cases.Title(language.English).String(name)
}

// FileName is the file a single SpeedPass is written to:
// SpeedPass_<Last>_<First>_<barcode>.pdf
func FileName(a attendee.Attendee) string {
	return fmt.Sprintf("SpeedPass_%s_%s_%s.pdf",
		sanitize(NormalizeName(a.LastName)),
		sanitize(NormalizeName(a.FirstName)),
		sanitize(a.Barcode))
}

// sanitize keeps letters, digits and hyphens; spaces become hyphens
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "Unknown"
	}
	return b.String()
}
