package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/sqlsaturday/satops/internal/layout"
	"github.com/sqlsaturday/satops/internal/paper"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// ScheduleMargin is the page margin of schedule documents, in inches
const ScheduleMargin = paper.Margin

// ScheduleData is the view model of one day's schedule document
type ScheduleData struct {
	EventName  string
	DayLabel   string
	Color      template.CSS
	PageWidth  template.CSS
	PageHeight template.CSS
	Margin     template.CSS
	TimeColumn template.CSS
	Generated  string
	Pages      []SchedulePage
}

// SchedulePage is one printed side
type SchedulePage struct {
	Number  int
	Of      int
	Columns []ScheduleColumn
	Rows    []ScheduleRow
}

type ScheduleColumn struct {
	Lines []string
	Width template.CSS
}

type ScheduleRow struct {
	Time  string
	Kind  string
	Cells []ScheduleCell
}

type ScheduleCell struct {
	Kind     string
	Span     int
	Title    string
	Speakers string
	Meta     string
	Event    string
}

func inches(v float64) template.CSS {
	return template.CSS(fmt.Sprintf("%.2fin", v))
}

// NewScheduleData converts a computed day layout into the schedule view model.
// color must already be validated as a CSS hex color.
func NewScheduleData(eventName, color string, size paper.Size, l *layout.DayLayout, generated time.Time) ScheduleData {
	land := size.Landscape()
	data := ScheduleData{
		EventName:  eventName,
		DayLabel:   l.Day.Label(),
		Color:      template.CSS(color),
		PageWidth:  inches(land.Width),
		PageHeight: inches(land.Height),
		Margin:     inches(ScheduleMargin),
		TimeColumn: inches(paper.TimeColumnWidth),
		Generated:  generated.Format("Jan 2, 2006 3:04 PM"),
	}

	for i, p := range l.Pages {
		sp := SchedulePage{Number: i + 1, Of: len(l.Pages)}
		for _, c := range p.Columns {
			sp.Columns = append(sp.Columns, ScheduleColumn{Lines: c.Lines(), Width: inches(c.Width)})
		}
		for _, row := range l.Rows(p) {
			sp.Rows = append(sp.Rows, scheduleRow(row))
		}
		data.Pages = append(data.Pages, sp)
	}
	return data
}

func scheduleRow(row layout.Row) ScheduleRow {
	out := ScheduleRow{Time: row.TimeLabel(), Kind: string(row.Kind)}
	for _, c := range row.Cells {
		cell := ScheduleCell{Kind: string(c.Kind), Span: c.Span, Event: string(c.Event)}
		if c.Session != nil {
			cell.Title = c.Session.Title
			cell.Speakers = strings.Join(c.Session.SpeakerNames(), ", ")
			var meta []string
			meta = append(meta, c.Session.Category("Level")...)
			meta = append(meta, c.Session.Category("Track")...)
			cell.Meta = strings.Join(meta, " · ")
		}
		out.Cells = append(out.Cells, cell)
	}
	return out
}

// ScheduleHTML renders the schedule document
func ScheduleHTML(data ScheduleData) (string, error) {
	return execute("schedule.html", data)
}

// SpeedPassData is the view model of a SpeedPass document, one sheet per pass
type SpeedPassData struct {
	Title   string
	LogoURL string
	Passes  []SpeedPass
}

// SpeedPass is one attendee's credential sheet
type SpeedPass struct {
	EventName   string
	EventDate   string
	Venue       string
	Barcode     string
	FirstName   string
	FullName    string
	Company     string
	JobTitle    string
	TicketType  string
	AdmissionQR template.URL
	Raffles     []RaffleTicket
}

// RaffleTicket is one tear-off raffle ticket
type RaffleTicket struct {
	Number  int
	Name    string
	Email   string
	Company string
	QR      template.URL
}

// SpeedPassHTML renders the SpeedPass document
func SpeedPassHTML(data SpeedPassData) (string, error) {
	if len(data.Passes) == 0 {
		return "", NewError(ErrCodeInvalidHTML, "no SpeedPasses to render", nil)
	}
	return execute("speedpass.html", data)
}

// EmailData is the view model of the SpeedPass email body
type EmailData struct {
	FirstName   string
	EventName   string
	EventDate   string
	Venue       string
	ScheduleURL string
}

// SpeedPassEmailHTML renders the body of the email that carries a SpeedPass
func SpeedPassEmailHTML(data EmailData) (string, error) {
	return execute("email.html", data)
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewError(ErrCodeRenderFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}
