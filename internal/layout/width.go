package layout

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultCharWidth is the printed width of one header character, in inches
	DefaultCharWidth = 0.085
	// DefaultColumnPadding is the horizontal padding of a room column, in inches
	DefaultColumnPadding = 0.25
	// MinColumnWidth keeps narrow room columns legible, in inches
	MinColumnWidth = 1.2
)

// Estimator predicts the printed width of a room column from its header text
type Estimator struct {
	// Prefix is stripped from room names before display, e.g. a building code "BEC "
	Prefix    string
	CharWidth float64
	Padding   float64
	MinWidth  float64
}

// NewEstimator returns an Estimator with the default print metrics
func NewEstimator(prefix string) *Estimator {
	return &Estimator{
		Prefix:    prefix,
		CharWidth: DefaultCharWidth,
		Padding:   DefaultColumnPadding,
		MinWidth:  MinColumnWidth,
	}
}

// DisplayName strips the prefix (first occurrence) and breaks the line before the
// first "(" so "BEC 1220 (Analytics)" prints as "1220" over "(Analytics)".
func (e *Estimator) DisplayName(raw string) string {
	name := raw
	if e.Prefix != "" {
		name = strings.Replace(name, e.Prefix, "", 1)
	}
	name = strings.TrimSpace(name)

	if idx := strings.Index(name, "("); idx > 0 {
		name = strings.TrimRight(name[:idx], " ") + "\n" + name[idx:]
	}
	return name
}

// Lines splits a display name into its printed header lines
func Lines(display string) []string {
	return strings.Split(display, "\n")
}

// Width estimates the column width in inches for a raw room name. Header text
// wraps, so the longest line drives the width.
func (e *Estimator) Width(raw string) float64 {
	return e.displayWidth(e.DisplayName(raw))
}

func (e *Estimator) displayWidth(display string) float64 {
	longest := 0
	for _, line := range Lines(display) {
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}

	width := float64(longest)*e.CharWidth + e.Padding
	if width < e.MinWidth {
		width = e.MinWidth
	}
	return width
}
