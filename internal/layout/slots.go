package layout

import (
	"sort"

	"github.com/sqlsaturday/satops/internal/schedule"
)

// smallDayRooms is the room count at or below which a single regular session is
// enough to give a slot its own row
const smallDayRooms = 3

// PlenumEvent is a classified plenum session in a slot
type PlenumEvent struct {
	Kind    EventKind
	Session *schedule.Session
}

// Slot is a time slot selected to become a row of the printed grid
type Slot struct {
	Start  schedule.Clock
	End    schedule.Clock
	HasEnd bool
	// Plenum events in room order; empty for a regular row
	Plenum []PlenumEvent
	// Regular sessions keyed by room ID
	Regular map[int]*schedule.Session
}

// Kind is the kind of the slot's first plenum event, or EventRegular
func (s *Slot) Kind() EventKind {
	if len(s.Plenum) == 0 {
		return EventRegular
	}
	return s.Plenum[0].Kind
}

// IsMixed reports whether a plenum event shares the slot with regular sessions
func (s *Slot) IsMixed() bool {
	return len(s.Plenum) > 0 && len(s.Regular) > 0
}

// SlotPlan is the classifier output for one day
type SlotPlan struct {
	// Slots ordered by start time, one per distinct start
	Slots []*Slot
	// Events records the start of the first occurrence of each plenum kind,
	// including registration windows that were not given a row
	Events map[EventKind]schedule.Clock
}

// DetectSlots selects and classifies the rows of a day's grid.
//
// A slot becomes a row when it holds a plenum session, two or more concurrent
// regular sessions, or one regular session on a day with at most three rooms.
// Service sessions are ignored throughout. A slot whose plenum sessions are all
// registration windows and which has no regular session is dropped.
func DetectSlots(day *schedule.Day, classifier Classifier) (*SlotPlan, error) {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}

	merged, err := mergeByStart(day.TimeSlots)
	if err != nil {
		return nil, err
	}

	plan := &SlotPlan{Events: make(map[EventKind]schedule.Clock)}
	for _, m := range merged {
		slot := &Slot{Start: m.start, Regular: make(map[int]*schedule.Session)}
		for _, r := range m.rooms {
			s := r.Session
			if s == nil || s.IsServiceSession {
				continue
			}
			if s.IsPlenumSession {
				slot.Plenum = append(slot.Plenum, PlenumEvent{Kind: classifier.Classify(s.Title), Session: s})
			} else if _, taken := slot.Regular[r.ID]; !taken {
				slot.Regular[r.ID] = s
			}
			if end, ok := s.EndClock(); ok && (!slot.HasEnd || end > slot.End) {
				slot.End, slot.HasEnd = end, true
			}
		}

		for _, p := range slot.Plenum {
			if _, seen := plan.Events[p.Kind]; !seen && p.Kind != EventOther {
				plan.Events[p.Kind] = slot.Start
			}
		}

		if includeSlot(slot, len(day.Rooms)) {
			plan.Slots = append(plan.Slots, slot)
		}
	}

	return plan, nil
}

func includeSlot(slot *Slot, roomCount int) bool {
	regular := len(slot.Regular)
	if len(slot.Plenum) > 0 {
		if regular == 0 && onlyRegistration(slot.Plenum) {
			return false
		}
		return true
	}
	if regular >= 2 {
		return true
	}
	return regular >= 1 && roomCount <= smallDayRooms
}

func onlyRegistration(events []PlenumEvent) bool {
	for _, e := range events {
		if e.Kind != EventRegistration {
			return false
		}
	}
	return true
}

type mergedSlot struct {
	start schedule.Clock
	rooms []schedule.SlotRoom
}

// mergeByStart collapses time slots sharing a start time and orders them
func mergeByStart(slots []schedule.TimeSlot) ([]mergedSlot, error) {
	index := make(map[schedule.Clock]int)
	var merged []mergedSlot
	for i := range slots {
		start, err := slots[i].Start()
		if err != nil {
			return nil, err
		}
		if j, ok := index[start]; ok {
			merged[j].rooms = append(merged[j].rooms, slots[i].Rooms...)
			continue
		}
		index[start] = len(merged)
		rooms := append([]schedule.SlotRoom(nil), slots[i].Rooms...)
		merged = append(merged, mergedSlot{start: start, rooms: rooms})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].start < merged[j].start
	})
	return merged, nil
}
