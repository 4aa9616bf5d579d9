package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/sqlsaturday/satops/internal/schedule"
)

// widthEpsilon absorbs float noise when comparing summed widths
const widthEpsilon = 1e-9

// Strategy selects the page partitioning algorithm
type Strategy string

const (
	// StrategyChunked splits rooms into equal-count chunks, then moves at most one
	// room off the last page onto the page before it if the last overflows. The
	// move runs toward the previous page, the reverse of shifting the previous
	// page's last room onto the front of the final page, which could only widen
	// an already overflowing final page. A room wider than the content width
	// always gets a page of its own.
	StrategyChunked Strategy = "chunked"
	// StrategySequential fills each page in sorted order until the next room would
	// not fit. Every page fits unless a single room alone is too wide.
	StrategySequential Strategy = "sequential"
)

// ParseStrategy validates a strategy name; empty selects StrategyChunked
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyChunked:
		return StrategyChunked, nil
	case StrategySequential:
		return StrategySequential, nil
	default:
		return "", fmt.Errorf("invalid pagination strategy: %s (must be 'chunked' or 'sequential')", s)
	}
}

// Column is a room with its header text and estimated printed width
type Column struct {
	Room    schedule.Room
	Display string
	Width   float64
}

// Lines returns the wrapped header lines of the column
func (c Column) Lines() []string {
	return Lines(c.Display)
}

// Page is the ordered set of room columns printed on one side
type Page struct {
	Columns []Column
	Width   float64
	// Overflow is set when Width exceeds the content width the page was cut for
	Overflow bool
}

func newPage(cols []Column, contentWidth float64) Page {
	p := Page{Columns: cols}
	p.recompute(contentWidth)
	return p
}

func (p *Page) recompute(contentWidth float64) {
	p.Width = 0
	for _, c := range p.Columns {
		p.Width += c.Width
	}
	p.Overflow = p.Width > contentWidth+widthEpsilon
}

// Partition splits sorted columns across pages. Column order is preserved: the
// concatenation of all pages equals the input. Empty input yields no pages.
func Partition(cols []Column, contentWidth float64, strategy Strategy) []Page {
	if len(cols) == 0 {
		return nil
	}

	total := 0.0
	for _, c := range cols {
		total += c.Width
	}
	if total <= contentWidth+widthEpsilon {
		return []Page{newPage(append([]Column(nil), cols...), contentWidth)}
	}

	if strategy == StrategySequential {
		return partitionSequential(cols, contentWidth)
	}
	return partitionChunked(cols, total, contentWidth)
}

func partitionChunked(cols []Column, total, contentWidth float64) []Page {
	pagesNeeded := int(math.Ceil(total / contentWidth))
	if pagesNeeded < 1 {
		pagesNeeded = 1
	}
	perPage := (len(cols) + pagesNeeded - 1) / pagesNeeded

	var pages []Page
	var current []Column
	flush := func() {
		if len(current) > 0 {
			pages = append(pages, newPage(current, contentWidth))
			current = nil
		}
	}
	for _, c := range cols {
		if c.Width > contentWidth+widthEpsilon {
			flush()
			pages = append(pages, newPage([]Column{c}, contentWidth))
			continue
		}
		current = append(current, c)
		if len(current) == perPage {
			flush()
		}
	}
	flush()

	// One rebalancing move, not iterated: the first room of an overflowing final
	// page moves to the end of the page before it, if that page still fits.
	if n := len(pages); n >= 2 {
		last, prev := &pages[n-1], &pages[n-2]
		if last.Overflow && len(last.Columns) > 1 && prev.Width+last.Columns[0].Width <= contentWidth+widthEpsilon {
			moved := last.Columns[0]
			last.Columns = append([]Column(nil), last.Columns[1:]...)
			prev.Columns = append(prev.Columns, moved)
			prev.recompute(contentWidth)
			last.recompute(contentWidth)
		}
	}

	return pages
}

func partitionSequential(cols []Column, contentWidth float64) []Page {
	var pages []Page
	var current []Column
	width := 0.0
	for _, c := range cols {
		if len(current) > 0 && width+c.Width > contentWidth+widthEpsilon {
			pages = append(pages, newPage(current, contentWidth))
			current, width = nil, 0
		}
		current = append(current, c)
		width += c.Width
	}
	if len(current) > 0 {
		pages = append(pages, newPage(current, contentWidth))
	}
	return pages
}
