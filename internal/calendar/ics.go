package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sqlsaturday/satops/internal/schedule"
)

// maxLineOctets is the RFC 5545 content line limit before folding
const maxLineOctets = 75

var now = time.Now

// GenerateICS generates an iCalendar (.ics) file with one event per regular or
// plenum session of the day. Service sessions are skipped. Session times carry no
// zone in the schedule feed, so they are written as floating local times.
func GenerateICS(eventName string, day *schedule.Day) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//SQL Saturday//satops//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	writeLine(&ics, "X-WR-CALNAME:"+escapeICS(eventName))

	stamp := formatUTC(now())
	rooms := roomNames(day)
	for _, s := range sessions(day) {
		writeEvent(&ics, eventName, s, rooms[s.RoomID], stamp)
	}

	ics.WriteString("END:VCALENDAR\r\n")
	return ics.String()
}

func writeEvent(ics *strings.Builder, eventName string, s *schedule.Session, room, stamp string) {
	start := s.StartTime()
	if start.IsZero() {
		return
	}
	end := s.EndTime()
	if end.IsZero() || !end.After(start) {
		end = start.Add(time.Hour)
	}

	ics.WriteString("BEGIN:VEVENT\r\n")
	writeLine(ics, fmt.Sprintf("UID:%s-%s@sqlsaturday", start.Format("20060102"), escapeICS(s.ID)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", stamp))
	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatLocal(start)))
	ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatLocal(end)))
	writeLine(ics, "SUMMARY:"+escapeICS(s.Title))

	var desc []string
	if names := s.SpeakerNames(); len(names) > 0 {
		desc = append(desc, "Speakers: "+strings.Join(names, ", "))
	}
	if levels := s.Category("Level"); len(levels) > 0 {
		desc = append(desc, "Level: "+strings.Join(levels, ", "))
	}
	if d := strings.TrimSpace(s.Description); d != "" {
		desc = append(desc, "", d)
	}
	if len(desc) > 0 {
		writeLine(ics, "DESCRIPTION:"+escapeICS(strings.Join(desc, "\n")))
	}

	if room != "" {
		writeLine(ics, "LOCATION:"+escapeICS(room))
	}
	writeLine(ics, "CATEGORIES:"+escapeICS(eventName))
	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")
	ics.WriteString("END:VEVENT\r\n")
}

// sessions returns the day's regular and plenum sessions once each, ordered by
// start time and then title
func sessions(day *schedule.Day) []*schedule.Session {
	seen := make(map[string]bool)
	var out []*schedule.Session
	for i := range day.TimeSlots {
		for _, s := range day.TimeSlots[i].Sessions() {
			if s.IsServiceSession || seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].StartTime(), out[j].StartTime()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func roomNames(day *schedule.Day) map[int]string {
	names := make(map[int]string, len(day.Rooms))
	for _, r := range day.Rooms {
		names[r.ID] = r.Name
	}
	return names
}

// writeLine writes a content line, folding it at 75 octets without splitting a
// UTF-8 sequence
func writeLine(ics *strings.Builder, line string) {
	for len(line) > maxLineOctets {
		cut := maxLineOctets
		for cut > 0 && !utf8Start(line[cut]) {
			cut--
		}
		ics.WriteString(line[:cut])
		ics.WriteString("\r\n ")
		line = line[cut:]
	}
	ics.WriteString(line)
	ics.WriteString("\r\n")
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}

// formatUTC formats a time.Time as an iCalendar UTC datetime string
func formatUTC(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatLocal formats a floating iCalendar datetime
func formatLocal(t time.Time) string {
	return t.Format("20060102T150405")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
