package engine

import "fmt"

// Ledger tracks per-resource occupancy keyed by (resource id, day, slot).
// One instance serves rooms, another faculty; both are shared globally
// across all departments and sections for the whole run. All overlap
// checks happen here so the no-double-booking invariant has a single
// enforcement point.
type Ledger struct {
	days     int
	occupied map[string][]map[int]bool
}

// NewLedger creates an empty ledger for the given number of days.
func NewLedger(days int) *Ledger {
	return &Ledger{days: days, occupied: make(map[string][]map[int]bool)}
}

func (l *Ledger) slots(id string, day int) map[int]bool {
	byDay, ok := l.occupied[id]
	if !ok {
		byDay = make([]map[int]bool, l.days)
		for d := range byDay {
			byDay[d] = make(map[int]bool)
		}
		l.occupied[id] = byDay
	}
	return byDay[day]
}

// IsFree reports whether the resource is unoccupied for every slot of the
// run on the day.
func (l *Ledger) IsFree(id string, day int, run []int) bool {
	if day < 0 || day >= l.days {
		return false
	}
	taken := l.slots(id, day)
	for _, s := range run {
		if taken[s] {
			return false
		}
	}
	return true
}

// Reserve marks the run occupied. Reserving an already-reserved slot is a
// programming error and is reported, not silently ignored.
func (l *Ledger) Reserve(id string, day int, run []int) error {
	if day < 0 || day >= l.days {
		return fmt.Errorf("ledger: day %d out of range", day)
	}
	taken := l.slots(id, day)
	for _, s := range run {
		if taken[s] {
			return fmt.Errorf("ledger: %s already reserved on day %d slot %d", id, day, s)
		}
	}
	for _, s := range run {
		taken[s] = true
	}
	return nil
}

// OccupiedAt reports whether the resource holds the single slot.
func (l *Ledger) OccupiedAt(id string, day, slot int) bool {
	if day < 0 || day >= l.days {
		return false
	}
	return l.slots(id, day)[slot]
}
