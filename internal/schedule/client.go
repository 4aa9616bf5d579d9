package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	UserAgent = "satops/1.0 (SQL Saturday operations)"
	Timeout   = 30 * time.Second
)

// Client fetches the schedule grid from a conference-scheduling API
type Client struct {
	http *resty.Client
	url  string
}

// NewClient creates a Client for the given grid endpoint. The URL must be absolute http(s).
func NewClient(apiURL string) (*Client, error) {
	if err := ValidateURL(apiURL); err != nil {
		return nil, err
	}

	client := resty.New().
		SetTimeout(Timeout).
		SetHeader("User-Agent", UserAgent).
		SetHeader("Accept", "application/json")

	return &Client{
		http: client,
		url:  apiURL,
	}, nil
}

// ValidateURL rejects anything that is not an absolute http or https URL
func ValidateURL(apiURL string) error {
	u, err := url.Parse(apiURL)
	if err != nil {
		return fmt.Errorf("invalid schedule API URL %q: %w", apiURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid schedule API URL %q: must be an absolute http(s) URL", apiURL)
	}
	return nil
}

// FetchGrid fetches every day of the schedule grid. A failed fetch is not retried.
func (c *Client) FetchGrid(ctx context.Context) ([]Day, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	return ParseGrid(resp.Body())
}

// ParseGrid decodes the grid JSON document
func ParseGrid(data []byte) ([]Day, error) {
	var days []Day
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, fmt.Errorf("parsing schedule: %w", err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("schedule contains no days")
	}
	return days, nil
}
