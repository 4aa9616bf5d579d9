package ticketing

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sqlsaturday/satops/internal/attendee"
)

const (
	apiTimeout = 30 * time.Second
	// maxPages bounds a misbehaving API that never stops reporting more items
	maxPages = 500
)

// APISource pages through the attendees endpoint of the ticketing REST API
type APISource struct {
	http    *resty.Client
	eventID string
}

// NewAPISource creates an APISource. baseURL is the API root, e.g.
// https://www.eventbriteapi.com/v3
func NewAPISource(baseURL, token, eventID string) *APISource {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(apiTimeout).
		SetAuthToken(token).
		SetHeader("Accept", "application/json")

	return &APISource{http: client, eventID: eventID}
}

type attendeePage struct {
	Pagination struct {
		PageNumber   int  `json:"page_number"`
		PageCount    int  `json:"page_count"`
		HasMoreItems bool `json:"has_more_items"`
	} `json:"pagination"`
	Attendees []apiAttendee `json:"attendees"`
}

type apiAttendee struct {
	ID              string `json:"id"`
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	Cancelled       bool   `json:"cancelled"`
	Refunded        bool   `json:"refunded"`
	TicketClassName string `json:"ticket_class_name"`
	Profile         struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Company   string `json:"company"`
		JobTitle  string `json:"job_title"`
	} `json:"profile"`
	Barcodes []struct {
		Barcode string `json:"barcode"`
	} `json:"barcodes"`
}

func (a apiAttendee) active() bool {
	return !a.Cancelled && !a.Refunded && !strings.EqualFold(a.Status, "Not Attending")
}

func (a apiAttendee) toAttendee() attendee.Attendee {
	barcode := a.ID
	if len(a.Barcodes) > 0 && a.Barcodes[0].Barcode != "" {
		barcode = a.Barcodes[0].Barcode
	}
	return attendee.Attendee{
		Barcode:    barcode,
		OrderID:    a.OrderID,
		FirstName:  strings.TrimSpace(a.Profile.FirstName),
		LastName:   strings.TrimSpace(a.Profile.LastName),
		Email:      strings.TrimSpace(a.Profile.Email),
		Company:    strings.TrimSpace(a.Profile.Company),
		JobTitle:   strings.TrimSpace(a.Profile.JobTitle),
		TicketType: a.TicketClassName,
	}
}

// Attendees fetches every page. Cancelled and refunded registrations are skipped.
func (s *APISource) Attendees(ctx context.Context) ([]attendee.Attendee, error) {
	var out []attendee.Attendee
	for page := 1; page <= maxPages; page++ {
		var body attendeePage
		resp, err := s.http.R().
			SetContext(ctx).
			SetPathParam("event", s.eventID).
			SetQueryParam("page", strconv.Itoa(page)).
			SetResult(&body).
			Get("/events/{event}/attendees/")
		if err != nil {
			return nil, fmt.Errorf("fetching attendees page %d: %w", page, err)
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("fetching attendees page %d: unexpected status code: %d", page, resp.StatusCode())
		}

		for _, a := range body.Attendees {
			if a.active() {
				out = append(out, a.toAttendee())
			}
		}
		if !body.Pagination.HasMoreItems {
			return out, nil
		}
	}
	return nil, fmt.Errorf("attendee listing exceeded %d pages", maxPages)
}

var _ Source = (*APISource)(nil)
