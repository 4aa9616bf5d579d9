package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/config"
	"github.com/sqlsaturday/satops/internal/logger"
	"github.com/sqlsaturday/satops/internal/mailer"
	"github.com/sqlsaturday/satops/internal/output"
	"github.com/sqlsaturday/satops/internal/render"
	"github.com/sqlsaturday/satops/internal/schedule"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testEnv(t *testing.T) (*env, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{}
	cfg.SetDefaults()

	var buf bytes.Buffer
	return &env{
		cfg:     cfg,
		log:     logger.Wrap(zaptest.NewLogger(t)),
		metrics: logger.NewMetrics(),
		stdout:  &buf,
		format:  FormatText,
	}, &buf
}

func testDir(t *testing.T) *output.Dir {
	t.Helper()
	dir, err := output.New(t.TempDir())
	require.NoError(t, err)
	return dir
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)
}

type fakeRenderer struct {
	mu       sync.Mutex
	requests []*render.Request
	failOn   map[string]bool
}

func (f *fakeRenderer) Render(ctx context.Context, req *render.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.failOn[req.Title] {
		return nil, render.NewError(render.ErrCodeRenderFailed, "chromedp execution failed", errors.New("target closed"))
	}
	return []byte("%PDF-1.4 " + req.Title), nil
}

func (f *fakeRenderer) Close() error { return nil }

type fakeGrid struct {
	days []schedule.Day
	err  error
}

func (f *fakeGrid) FetchGrid(ctx context.Context) ([]schedule.Day, error) {
	return f.days, f.err
}

func loadGrid(t *testing.T) []schedule.Day {
	t.Helper()
	data, err := os.ReadFile("../schedule/testdata/grid.json")
	require.NoError(t, err)
	days, err := schedule.ParseGrid(data)
	require.NoError(t, err)
	return days
}

type fakeStore struct {
	list     []attendee.Attendee
	listErr  error
	filters  []attendee.Filter
	printed  []string
	emailed  []string
	failMark map[string]bool
}

func (f *fakeStore) List(ctx context.Context, filter attendee.Filter) ([]attendee.Attendee, error) {
	f.filters = append(f.filters, filter)
	return f.list, f.listErr
}

func (f *fakeStore) MarkPrinted(ctx context.Context, barcode string, at time.Time) error {
	if f.failMark[barcode] {
		return attendee.ErrNotFound
	}
	f.printed = append(f.printed, barcode)
	return nil
}

func (f *fakeStore) MarkEmailed(ctx context.Context, barcode string, at time.Time) error {
	if f.failMark[barcode] {
		return attendee.ErrNotFound
	}
	f.emailed = append(f.emailed, barcode)
	return nil
}

type fakeQR struct{}

func (fakeQR) PNG(ctx context.Context, text string) ([]byte, error) {
	return []byte("png"), nil
}

type fakeSender struct {
	sent   []mailer.Message
	failTo map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	if f.failTo[msg.To] {
		return errors.New("550 mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func attendees() []attendee.Attendee {
	return []attendee.Attendee{
		{Barcode: "111", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Company: "Engines"},
		{Barcode: "222", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		{Barcode: "333", Email: "nobody@example.com"},
	}
}
