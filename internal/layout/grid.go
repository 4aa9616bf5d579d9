package layout

import (
	"sort"
	"strings"

	"github.com/sqlsaturday/satops/internal/paper"
	"github.com/sqlsaturday/satops/internal/schedule"
	"go.uber.org/zap"
)

// Options configures Build
type Options struct {
	Estimator  *Estimator
	Classifier Classifier
	Paper      paper.Size
	Strategy   Strategy
	Logger     *zap.Logger
}

// DayLayout is the computed layout of one conference day
type DayLayout struct {
	Day          *schedule.Day
	Plan         *SlotPlan
	Columns      []Column
	Pages        []Page
	ContentWidth float64
}

// Build classifies the day's slots, sorts and measures its rooms and partitions
// them into pages. Pages wider than the content width are logged, not rejected.
func Build(day *schedule.Day, opts Options) (*DayLayout, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	est := opts.Estimator
	if est == nil {
		est = NewEstimator("")
	}
	size := opts.Paper
	if size.Width == 0 {
		size = paper.Letter
	}

	plan, err := DetectSlots(day, opts.Classifier)
	if err != nil {
		return nil, err
	}

	cols := SortedColumns(day.Rooms, est)
	contentWidth := size.ScheduleContentWidth()
	pages := Partition(cols, contentWidth, opts.Strategy)

	for i, p := range pages {
		if !p.Overflow {
			continue
		}
		fields := []zap.Field{
			zap.String("day", day.Date),
			zap.Int("page", i+1),
			zap.Int("rooms", len(p.Columns)),
			zap.Float64("width_in", p.Width),
			zap.Float64("content_width_in", contentWidth),
		}
		if len(p.Columns) == 1 {
			logger.Info("room wider than printable area, page will overflow", fields...)
		} else {
			logger.Warn("page with several rooms overflows printable area; sequential pagination avoids this", fields...)
		}
	}

	logger.Debug("day layout computed",
		zap.String("day", day.Date),
		zap.Int("rows", len(plan.Slots)),
		zap.Int("rooms", len(cols)),
		zap.Int("pages", len(pages)),
	)

	return &DayLayout{
		Day:          day,
		Plan:         plan,
		Columns:      cols,
		Pages:        pages,
		ContentWidth: contentWidth,
	}, nil
}

// SortedColumns measures rooms and orders them alphabetically by display name.
// Ties fall back to the room ID so ordering never depends on input order.
func SortedColumns(rooms []schedule.Room, est *Estimator) []Column {
	cols := make([]Column, 0, len(rooms))
	for _, r := range rooms {
		display := est.DisplayName(r.Name)
		cols = append(cols, Column{
			Room:    r,
			Display: display,
			Width:   est.displayWidth(display),
		})
	}

	sort.SliceStable(cols, func(i, j int) bool {
		a, b := strings.ToLower(cols[i].Display), strings.ToLower(cols[j].Display)
		if a != b {
			return a < b
		}
		return cols[i].Room.ID < cols[j].Room.ID
	})
	return cols
}

// CellKind distinguishes grid cells
type CellKind string

const (
	CellSession CellKind = "session"
	CellEmpty   CellKind = "empty"
	CellPlenum  CellKind = "plenum"
)

// Cell is one rendered cell of a grid row
type Cell struct {
	Kind    CellKind
	Session *schedule.Session
	// Event is the plenum kind for CellPlenum cells
	Event EventKind
	// Span is the number of room columns covered
	Span int
}

// Row is one grid row of a page
type Row struct {
	Start  schedule.Clock
	End    schedule.Clock
	HasEnd bool
	Kind   EventKind
	Cells  []Cell
	// FullWidth is set when a single plenum block spans every column
	FullWidth bool
}

// TimeLabel formats the row's time range for the time column
func (r Row) TimeLabel() string {
	if !r.HasEnd || r.End <= r.Start {
		return r.Start.String()
	}
	return r.Start.String() + " - " + r.End.String()
}

// Rows builds the grid rows for one page. A plenum event spans each contiguous run
// of columns that has no regular session; a page without regular sessions in that
// slot gets one full-width block.
func (l *DayLayout) Rows(page Page) []Row {
	rows := make([]Row, 0, len(l.Plan.Slots))
	for _, slot := range l.Plan.Slots {
		row := Row{
			Start:  slot.Start,
			End:    slot.End,
			HasEnd: slot.HasEnd,
			Kind:   slot.Kind(),
		}

		if len(slot.Plenum) == 0 {
			for _, c := range page.Columns {
				if s := slot.Regular[c.Room.ID]; s != nil {
					row.Cells = append(row.Cells, Cell{Kind: CellSession, Session: s, Span: 1})
				} else {
					row.Cells = append(row.Cells, Cell{Kind: CellEmpty, Span: 1})
				}
			}
			rows = append(rows, row)
			continue
		}

		plenum := slot.Plenum[0]
		for _, c := range page.Columns {
			if s := slot.Regular[c.Room.ID]; s != nil {
				row.Cells = append(row.Cells, Cell{Kind: CellSession, Session: s, Span: 1})
				continue
			}
			if n := len(row.Cells); n > 0 && row.Cells[n-1].Kind == CellPlenum {
				row.Cells[n-1].Span++
				continue
			}
			row.Cells = append(row.Cells, Cell{Kind: CellPlenum, Session: plenum.Session, Event: plenum.Kind, Span: 1})
		}
		row.FullWidth = len(row.Cells) == 1 && row.Cells[0].Kind == CellPlenum
		rows = append(rows, row)
	}
	return rows
}
