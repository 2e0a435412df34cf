package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Clock is a time of day in minutes from midnight.
type Clock int

// ParseClock parses "HH:MM" into a Clock.
func ParseClock(s string) (Clock, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return Clock(hh*60 + mm), nil
}

// MustClock is ParseClock for literals known to be valid.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TimeSlot is one fixed window of the institutional day.
type TimeSlot struct {
	Start Clock
	End   Clock
}

// Minutes returns the slot duration.
func (t TimeSlot) Minutes() int {
	return int(t.End - t.Start)
}

// Overlaps reports whether two windows share any time.
func (t TimeSlot) Overlaps(start, end Clock) bool {
	return t.Start < end && start < t.End
}

func (t TimeSlot) String() string {
	return t.Start.String() + "-" + t.End.String()
}

// SlotClass classifies a slot for scheduling purposes.
type SlotClass int

const (
	SlotTeaching SlotClass = iota
	SlotBreak
	SlotMinor
)

func (s SlotClass) String() string {
	switch s {
	case SlotBreak:
		return "break"
	case SlotMinor:
		return "minor"
	default:
		return "teaching"
	}
}

// BreakFunc decides whether a slot falls in a break window for a semester.
// Break windows differ between deployments (fixed lunch vs. staggered per
// semester), so the grid takes the rule as a function.
type BreakFunc func(slot TimeSlot, semester int) bool

// FixedLunch returns a BreakFunc blocking a single lunch window for every
// semester.
func FixedLunch(start, end Clock) BreakFunc {
	return func(slot TimeSlot, _ int) bool {
		return slot.Overlaps(start, end)
	}
}

// StaggeredLunch spreads lunch starts evenly across the given semesters
// inside [windowStart, windowEnd], each lasting minutes. Semesters not in
// the list get the whole window blocked.
func StaggeredLunch(windowStart, windowEnd Clock, minutes int, semesters []int) BreakFunc {
	sorted := append([]int(nil), semesters...)
	sort.Ints(sorted)
	windows := make(map[int]TimeSlot, len(sorted))
	span := int(windowEnd-windowStart) - minutes
	step := 0.0
	if len(sorted) > 1 {
		step = float64(span) / float64(len(sorted)-1)
	}
	for i, sem := range sorted {
		start := windowStart + Clock(int(float64(i)*step))
		windows[sem] = TimeSlot{Start: start, End: start + Clock(minutes)}
	}
	return func(slot TimeSlot, semester int) bool {
		if w, ok := windows[semester]; ok {
			return slot.Overlaps(w.Start, w.End)
		}
		return slot.Overlaps(windowStart, windowEnd)
	}
}

// Grid is the ordered catalog of time slots for one institutional day.
type Grid struct {
	slots       []TimeSlot
	isBreak     BreakFunc
	minorBefore Clock
	minorFrom   Clock
}

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithBreaks sets the break window rule.
func WithBreaks(fn BreakFunc) GridOption {
	return func(g *Grid) { g.isBreak = fn }
}

// WithMinorEdges marks slots starting before / at-or-after the given clocks
// as minor (unusable for core classes).
func WithMinorEdges(before, from Clock) GridOption {
	return func(g *Grid) {
		g.minorBefore = before
		g.minorFrom = from
	}
}

// NewGrid builds a grid over the given ordered slots.
func NewGrid(slots []TimeSlot, opts ...GridOption) *Grid {
	g := &Grid{
		slots:       append([]TimeSlot(nil), slots...),
		isBreak:     FixedLunch(MustClock("13:15"), MustClock("14:00")),
		minorBefore: MustClock("08:00"),
		minorFrom:   MustClock("18:30"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of slots in the day.
func (g *Grid) Len() int { return len(g.slots) }

// Slot returns the i-th slot.
func (g *Grid) Slot(i int) TimeSlot { return g.slots[i] }

// Minutes returns the duration of the i-th slot.
func (g *Grid) Minutes(i int) int { return g.slots[i].Minutes() }

// Classify returns the scheduling class of the i-th slot for a semester.
// Break wins over minor so lunch windows at the day edge stay breaks.
func (g *Grid) Classify(i int, semester int) SlotClass {
	slot := g.slots[i]
	if g.isBreak != nil && g.isBreak(slot, semester) {
		return SlotBreak
	}
	if slot.Start < g.minorBefore || slot.Start >= g.minorFrom {
		return SlotMinor
	}
	return SlotTeaching
}

// Teaching reports whether the i-th slot may hold a core class.
func (g *Grid) Teaching(i int, semester int) bool {
	return g.Classify(i, semester) == SlotTeaching
}
