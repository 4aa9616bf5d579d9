package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	slotStartLayout = "15:04:05"
	timestampLayout = "2006-01-02T15:04:05"
)

// Day is one conference day of the schedule grid
type Day struct {
	Date      string     `json:"date"`
	IsDefault bool       `json:"isDefault"`
	Rooms     []Room     `json:"rooms"`
	TimeSlots []TimeSlot `json:"timeSlots"`
}

// Room is a physical room with its raw display name (which may carry a building prefix)
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TimeSlot is one start time in the grid with the occupant of each room
type TimeSlot struct {
	SlotStart string     `json:"slotStart"`
	Rooms     []SlotRoom `json:"rooms"`
}

// SlotRoom pairs a room with the session occupying it during a slot.
// Session is nil when the room is empty.
type SlotRoom struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Session *Session `json:"session"`
	Index   int      `json:"index"`
}

// Session is a talk, a plenum event (keynote, lunch, raffle, registration) or a
// service filler entry
type Session struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	StartsAt         string     `json:"startsAt"`
	EndsAt           string     `json:"endsAt"`
	IsServiceSession bool       `json:"isServiceSession"`
	IsPlenumSession  bool       `json:"isPlenumSession"`
	Speakers         []Speaker  `json:"speakers"`
	Categories       []Category `json:"categories"`
	RoomID           int        `json:"roomId"`
	Room             string     `json:"room"`
}

// Speaker is a session speaker
type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category is a session metadata group such as "Level" or "Track"
type Category struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	CategoryItems []CategoryItem `json:"categoryItems"`
}

// CategoryItem is one value of a Category
type CategoryItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Clock is a wall-clock time of day with minute precision
type Clock int

// NewClock returns the Clock for hour:minute
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses "15:04:05" or "15:04"
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(slotStartLayout, s)
	if err != nil {
		t, err = time.Parse("15:04", s)
		if err != nil {
			return 0, fmt.Errorf("parsing time of day %q: %w", s, err)
		}
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

// Hour returns the 24-hour component
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component
func (c Clock) Minute() int { return int(c) % 60 }

// String formats the clock as "8:05 AM"
func (c Clock) String() string {
	h := c.Hour()
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, c.Minute(), suffix)
}

// Start returns the slot start as a Clock
func (ts *TimeSlot) Start() (Clock, error) {
	return ParseClock(ts.SlotStart)
}

// Sessions returns the non-nil sessions of the slot in room order
func (ts *TimeSlot) Sessions() []*Session {
	sessions := make([]*Session, 0, len(ts.Rooms))
	for _, r := range ts.Rooms {
		if r.Session != nil {
			sessions = append(sessions, r.Session)
		}
	}
	return sessions
}

// SessionInRoom returns the session occupying roomID, or nil
func (ts *TimeSlot) SessionInRoom(roomID int) *Session {
	for _, r := range ts.Rooms {
		if r.ID == roomID {
			return r.Session
		}
	}
	return nil
}

// IsRegular reports whether the session is a normal concurrent talk
func (s *Session) IsRegular() bool {
	return !s.IsServiceSession && !s.IsPlenumSession
}

// StartTime parses StartsAt. Returns the zero time if it is absent or malformed.
func (s *Session) StartTime() time.Time {
	return parseTimestamp(s.StartsAt)
}

// EndTime parses EndsAt. Returns the zero time if it is absent or malformed.
func (s *Session) EndTime() time.Time {
	return parseTimestamp(s.EndsAt)
}

// EndClock returns the session end as a Clock and whether it was known
func (s *Session) EndClock() (Clock, bool) {
	end := s.EndTime()
	if end.IsZero() {
		return 0, false
	}
	return NewClock(end.Hour(), end.Minute()), true
}

// SpeakerNames returns the speaker names in listed order
func (s *Session) SpeakerNames() []string {
	names := make([]string, 0, len(s.Speakers))
	for _, sp := range s.Speakers {
		if name := strings.TrimSpace(sp.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Category returns the item names of the category with the given name
// (case-insensitive), e.g. "Level" or "Track"
func (s *Session) Category(name string) []string {
	var items []string
	for _, c := range s.Categories {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		for _, item := range c.CategoryItems {
			items = append(items, item.Name)
		}
	}
	return items
}

// ParseDate returns the calendar date of the day, or the zero time
func (d *Day) ParseDate() time.Time {
	return parseTimestamp(d.Date)
}

// Label formats the day date for headings, falling back to the raw value
func (d *Day) Label() string {
	t := d.ParseDate()
	if t.IsZero() {
		return d.Date
	}
	return t.Format("Monday, January 2, 2006")
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
