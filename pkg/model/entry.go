package model

import "strings"

// ScheduleEntry is one committed placement: a course component session pinned
// to a day, a contiguous slot run, one or more rooms and a faculty. Entries
// are never mutated after commit.
type ScheduleEntry struct {
	Department string
	Semester   int
	Section    string
	Code       string
	BaseCode   string
	Basket     string
	Name       string
	Faculty    string
	Type       ComponentType
	Day        int
	Slots      []int
	Rooms      []string
}

// RoomID renders the assigned room(s) as a single identifier; paired lab
// rooms join with "+".
func (e *ScheduleEntry) RoomID() string {
	return strings.Join(e.Rooms, "+")
}

// Overlaps reports whether two entries share a day and at least one slot.
func (e *ScheduleEntry) Overlaps(other *ScheduleEntry) bool {
	if e.Day != other.Day {
		return false
	}
	for _, a := range e.Slots {
		for _, b := range other.Slots {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Timetable is one section's grid of committed entries. It is owned
// exclusively by the section scheduler that builds it.
type Timetable struct {
	Days    int
	Slots   int
	cells   [][]*ScheduleEntry
	entries []*ScheduleEntry
}

// NewTimetable creates an empty grid.
func NewTimetable(days, slots int) *Timetable {
	t := &Timetable{Days: days, Slots: slots}
	t.cells = make([][]*ScheduleEntry, days)
	for d := range t.cells {
		t.cells[d] = make([]*ScheduleEntry, slots)
	}
	return t
}

// At returns the entry occupying (day, slot), or nil.
func (t *Timetable) At(day, slot int) *ScheduleEntry {
	if day < 0 || day >= t.Days || slot < 0 || slot >= t.Slots {
		return nil
	}
	return t.cells[day][slot]
}

// Free reports whether every slot of the run is unoccupied on the day.
func (t *Timetable) Free(day int, run []int) bool {
	for _, s := range run {
		if t.At(day, s) != nil {
			return false
		}
	}
	return true
}

// Place commits an entry into the grid. The caller checks Free first.
func (t *Timetable) Place(e *ScheduleEntry) {
	for _, s := range e.Slots {
		t.cells[e.Day][s] = e
	}
	t.entries = append(t.entries, e)
}

// PlaceOverlay records an entry without claiming cells. Basket members share
// one window by design; the first member holds the cells, the rest overlay.
func (t *Timetable) PlaceOverlay(e *ScheduleEntry) {
	t.entries = append(t.entries, e)
}

// Entries returns the committed entries in placement order.
func (t *Timetable) Entries() []*ScheduleEntry {
	return t.entries
}

// TypeAt returns the component type occupying (day, slot).
func (t *Timetable) TypeAt(day, slot int) (ComponentType, bool) {
	e := t.At(day, slot)
	if e == nil {
		return 0, false
	}
	return e.Type, true
}

// HasComponentOn reports whether a session of (baseCode, type) already sits
// on the day. Drives the same-day exclusion rules.
func (t *Timetable) HasComponentOn(day int, baseCode string, ct ComponentType) bool {
	for _, e := range t.entries {
		if e.Day == day && e.BaseCode == baseCode && e.Type == ct {
			return true
		}
	}
	return false
}
