package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadGrid(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/grid.json")
	require.NoError(t, err)
	return data
}

func TestFetchGrid(t *testing.T) {
	data := loadGrid(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer server.Close()

	client, err := NewClient(server.URL + "/api/v2/abc/view/GridSmart")
	require.NoError(t, err)

	days, err := client.FetchGrid(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)

	day := days[0]
	assert.Len(t, day.Rooms, 4)
	assert.Len(t, day.TimeSlots, 6)
	assert.Equal(t, "Saturday, March 15, 2025", day.Label())

	slot := day.TimeSlots[2]
	start, err := slot.Start()
	require.NoError(t, err)
	assert.Equal(t, "9:30 AM", start.String())

	session := slot.SessionInRoom(11)
	require.NotNil(t, session)
	assert.Equal(t, []string{"Edgar Codd", "Jim Gray"}, session.SpeakerNames())
	assert.True(t, session.IsRegular())

	first := slot.SessionInRoom(10)
	require.NotNil(t, first)
	assert.Equal(t, []string{"Intermediate"}, first.Category("level"))
	assert.Equal(t, []string{"Analytics"}, first.Category("Track"))
	end, ok := first.EndClock()
	assert.True(t, ok)
	assert.Equal(t, NewClock(10, 30), end)
}

func TestFetchGrid_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.FetchGrid(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestParseGrid_Invalid(t *testing.T) {
	_, err := ParseGrid([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseGrid([]byte("[]"))
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://sessionize.com/api/v2/x/view/GridSmart", false},
		{"http://localhost:8080/grid", false},
		{"sessionize.com/api", true},
		{"ftp://example.com/grid", true},
		{"://bad", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"08:00:00", "8:00 AM"},
		{"12:15:00", "12:15 PM"},
		{"00:05", "12:05 AM"},
		{"16:30:00", "4:30 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseClock(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}

	_, err := ParseClock("noon")
	assert.Error(t, err)
}
