package engine

import (
	"errors"
	"sort"

	"timetabler/pkg/model"
)

// ErrNoRoom means no suitable room exists for the requested run. The caller
// records an unscheduled entry; this is not a fatal error.
var ErrNoRoom = errors.New("no suitable room for slot run")

type stickyKey struct {
	code string
	typ  model.ComponentType
}

// Assignment is the room(s) chosen for one placement. Lab requests may
// resolve to a pair of rooms whose combined capacity covers the strength.
type Assignment struct {
	Rooms []string
}

// ID joins paired rooms with "+", forming the composite room identifier.
func (a Assignment) ID() string {
	out := ""
	for i, r := range a.Rooms {
		if i > 0 {
			out += "+"
		}
		out += r
	}
	return out
}

// RoomAssigner chooses rooms for component sessions: forced override first,
// then sticky reuse, smallest fit, the overflow hall for very large courses,
// and lab pairing as a last resort. It records sticky mappings so every
// session of a component lands in the same room.
type RoomAssigner struct {
	rooms  []*model.Room
	byID   map[string]*model.Room
	ledger *Ledger
	sticky map[stickyKey]Assignment

	overflowHall  string
	overflowAbove int
}

// NewRoomAssigner builds an assigner over the room inventory. Rooms are kept
// sorted by capacity so scans naturally find the tightest fit first.
func NewRoomAssigner(rooms []*model.Room, ledger *Ledger, overflowHall string, overflowAbove int) *RoomAssigner {
	sorted := append([]*model.Room(nil), rooms...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Capacity < sorted[j].Capacity
	})
	byID := make(map[string]*model.Room, len(sorted))
	for _, r := range sorted {
		byID[r.ID] = r
	}
	return &RoomAssigner{
		rooms:         sorted,
		byID:          byID,
		ledger:        ledger,
		sticky:        make(map[stickyKey]Assignment),
		overflowHall:  overflowHall,
		overflowAbove: overflowAbove,
	}
}

// Ledger exposes the room occupancy ledger for commits and verification.
func (ra *RoomAssigner) Ledger() *Ledger { return ra.ledger }

func (ra *RoomAssigner) suits(r *model.Room, want model.RoomType) bool {
	if want == model.ComputerLab {
		return r.SuitsLab()
	}
	return r.SuitsLecture()
}

// Assign picks room(s) for one session of the component on (day, run).
// It only selects; the caller reserves via Commit once the whole placement
// is accepted. Sticky mappings are recorded on first selection.
func (ra *RoomAssigner) Assign(comp *model.CourseComponent, day int, run []int) (Assignment, error) {
	course := comp.Course
	want := model.RoomTypeFor(comp.Type)

	// Forced override: use the literal room or fail, no fallback.
	if course.RoomOverride != "" {
		if ra.ledger.IsFree(course.RoomOverride, day, run) {
			return Assignment{Rooms: []string{course.RoomOverride}}, nil
		}
		return Assignment{}, ErrNoRoom
	}

	key := stickyKey{code: course.Code, typ: comp.Type}
	if a, ok := ra.sticky[key]; ok {
		// Sticky rooms are reused even if oversized. A busy sticky room
		// fails the attempt so the search tries another run instead of
		// breaking the one-room-per-component invariant.
		for _, id := range a.Rooms {
			if !ra.ledger.IsFree(id, day, run) {
				return Assignment{}, ErrNoRoom
			}
		}
		return a, nil
	}

	// Smallest free room of the matching type with enough seats. The
	// overflow hall is held back for the dedicated paths below.
	for _, r := range ra.rooms {
		if r.ID == ra.overflowHall {
			continue
		}
		if !ra.suits(r, want) || r.Capacity < course.Strength {
			continue
		}
		if ra.ledger.IsFree(r.ID, day, run) {
			a := Assignment{Rooms: []string{r.ID}}
			ra.sticky[key] = a
			return a, nil
		}
	}

	// Very large courses may take the designated overflow hall.
	if course.Strength > ra.overflowAbove && want != model.ComputerLab {
		if hall, ok := ra.byID[ra.overflowHall]; ok &&
			hall.Capacity >= course.Strength && ra.ledger.IsFree(hall.ID, day, run) {
			a := Assignment{Rooms: []string{hall.ID}}
			ra.sticky[key] = a
			return a, nil
		}
	}

	// Lab requests may pair two lab rooms whose combined capacity covers
	// the strength; the tightest free pair wins.
	if want == model.ComputerLab {
		if a, ok := ra.findLabPair(course.Strength, day, run); ok {
			ra.sticky[key] = a
			return a, nil
		}
	}

	return Assignment{}, ErrNoRoom
}

func (ra *RoomAssigner) findLabPair(strength, day int, run []int) (Assignment, bool) {
	var labs []*model.Room
	for _, r := range ra.rooms {
		if r.SuitsLab() && ra.ledger.IsFree(r.ID, day, run) {
			labs = append(labs, r)
		}
	}
	best := -1
	var pair Assignment
	for i := 0; i < len(labs); i++ {
		for j := i + 1; j < len(labs); j++ {
			sum := labs[i].Capacity + labs[j].Capacity
			if sum < strength {
				continue
			}
			if best == -1 || sum < best {
				best = sum
				pair = Assignment{Rooms: []string{labs[i].ID, labs[j].ID}}
			}
		}
	}
	return pair, best != -1
}

// Commit reserves every room of the assignment for the run.
func (ra *RoomAssigner) Commit(a Assignment, day int, run []int) error {
	for _, id := range a.Rooms {
		if err := ra.ledger.Reserve(id, day, run); err != nil {
			return err
		}
	}
	return nil
}
