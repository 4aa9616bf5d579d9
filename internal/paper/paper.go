// Package paper defines the printable paper sizes shared by the layout engine and
// the document renderer.
package paper

import (
	"fmt"
	"strings"
)

// Size is a paper size in inches, portrait orientation
type Size struct {
	Name   string
	Width  float64
	Height float64
}

var (
	Letter = Size{Name: "letter", Width: 8.5, Height: 11}
	Legal  = Size{Name: "legal", Width: 8.5, Height: 14}
	A4     = Size{Name: "a4", Width: 8.27, Height: 11.69}
)

// Margin is the fixed page margin applied on every side, in inches
const Margin = 0.4

// TimeColumnWidth is the width reserved for the time-label column of a schedule grid
const TimeColumnWidth = 0.9

var sizes = map[string]Size{
	Letter.Name: Letter,
	Legal.Name:  Legal,
	A4.Name:     A4,
}

// Lookup returns the size registered under name (case-insensitive)
func Lookup(name string) (Size, error) {
	s, ok := sizes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Size{}, fmt.Errorf("unknown paper size: %s (must be letter, legal or a4)", name)
	}
	return s, nil
}

// Names lists the supported paper size names
func Names() []string {
	return []string{Letter.Name, Legal.Name, A4.Name}
}

// Landscape returns the size rotated to landscape
func (s Size) Landscape() Size {
	if s.Width >= s.Height {
		return s
	}
	return Size{Name: s.Name, Width: s.Height, Height: s.Width}
}

// ScheduleContentWidth is the width available to room columns on a landscape
// schedule page: page width minus both margins minus the time-label column.
func (s Size) ScheduleContentWidth() float64 {
	return s.Landscape().Width - 2*Margin - TimeColumnWidth
}
