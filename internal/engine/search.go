package engine

import (
	"errors"
	"math/rand"

	"timetabler/pkg/model"
)

// ErrNoPlacement means the attempt budget was exhausted without finding a
// feasible run. Soft failure: the caller records it and moves on.
var ErrNoPlacement = errors.New("no feasible placement within attempt budget")

// lockFunc reports slots a placement must avoid beyond grid and ledger
// state (basket locks, per-label locks).
type lockFunc func(day, slot int) bool

func noLocks(int, int) bool { return false }

// Searcher finds a feasible contiguous slot run for one component session
// and commits it against the section grid and the global ledgers. The retry
// budget and randomness source are injected so runs are reproducible.
type Searcher struct {
	grid    *model.Grid
	days    int
	budget  int
	rng     *rand.Rand
	faculty *Ledger
	rooms   *RoomAssigner
}

// NewSearcher wires a placement search over the shared ledgers.
func NewSearcher(grid *model.Grid, days, budget int, rng *rand.Rand, faculty *Ledger, rooms *RoomAssigner) *Searcher {
	return &Searcher{grid: grid, days: days, budget: budget, rng: rng, faculty: faculty, rooms: rooms}
}

// Place searches for one session of the component: random day, random
// ordering of start slots, greedy contiguous extension to the exact required
// minutes, then rule checks and room selection. The first fully valid run is
// committed and returned.
func (s *Searcher) Place(tt *model.Timetable, comp *model.CourseComponent, section string, locked lockFunc) (*model.ScheduleEntry, error) {
	if locked == nil {
		locked = noLocks
	}
	course := comp.Course
	for attempt := 0; attempt < s.budget; attempt++ {
		day := s.rng.Intn(s.days)
		for _, start := range s.rng.Perm(s.grid.Len()) {
			run, ok := s.extendRun(tt, comp, day, start, locked)
			if !ok {
				continue
			}
			if !s.allowedRun(tt, comp, day, run) {
				continue
			}
			room, err := s.rooms.Assign(comp, day, run)
			if err != nil {
				continue
			}
			entry := &model.ScheduleEntry{
				Department: course.Department,
				Semester:   course.Semester,
				Section:    section,
				Code:       course.Code,
				BaseCode:   course.BaseCode,
				Basket:     course.Basket,
				Name:       course.Name,
				Faculty:    course.Faculty,
				Type:       comp.Type,
				Day:        day,
				Slots:      run,
				Rooms:      room.Rooms,
			}
			if err := s.Commit(tt, entry, room); err != nil {
				return nil, err
			}
			return entry, nil
		}
	}
	return nil, ErrNoPlacement
}

// Commit reserves faculty and rooms and places the entry into the grid.
// Ledger errors here indicate a bug, not contention.
func (s *Searcher) Commit(tt *model.Timetable, entry *model.ScheduleEntry, room Assignment) error {
	if err := s.faculty.Reserve(entry.Faculty, entry.Day, entry.Slots); err != nil {
		return err
	}
	if err := s.rooms.Commit(room, entry.Day, entry.Slots); err != nil {
		return err
	}
	tt.Place(entry)
	return nil
}

// extendRun grows a contiguous run from start until it covers exactly the
// required minutes. Break and minor slots, occupied cells, busy faculty and
// locked slots all cut the run short; overshooting the duration rejects it.
func (s *Searcher) extendRun(tt *model.Timetable, comp *model.CourseComponent, day, start int, locked lockFunc) ([]int, bool) {
	course := comp.Course
	required := comp.SessionMinutes
	var run []int
	accumulated := 0
	for i := start; i < s.grid.Len() && accumulated < required; i++ {
		if !s.grid.Teaching(i, course.Semester) {
			return nil, false
		}
		if tt.At(day, i) != nil {
			return nil, false
		}
		if s.faculty.OccupiedAt(course.Faculty, day, i) {
			return nil, false
		}
		if locked(day, i) {
			return nil, false
		}
		run = append(run, i)
		accumulated += s.grid.Minutes(i)
	}
	if accumulated != required {
		return nil, false
	}
	return run, true
}

// allowedRun applies the same-day exclusion and adjacency rules.
func (s *Searcher) allowedRun(tt *model.Timetable, comp *model.CourseComponent, day int, run []int) bool {
	course := comp.Course
	switch comp.Type {
	case model.Lecture:
		// A course's lecture and tutorial never share a day, and no
		// course holds two lectures on one day.
		if tt.HasComponentOn(day, course.BaseCode, model.Tutorial) {
			return false
		}
		if tt.HasComponentOn(day, course.BaseCode, model.Lecture) {
			return false
		}
	case model.Tutorial:
		if tt.HasComponentOn(day, course.BaseCode, model.Lecture) {
			return false
		}
	}
	prev := run[0] - 1
	next := run[len(run)-1] + 1
	if comp.Type == model.Lecture {
		if t, ok := tt.TypeAt(day, prev); ok && t == model.Lecture {
			return false
		}
		if t, ok := tt.TypeAt(day, next); ok && t == model.Lecture {
			return false
		}
		// Faculty keep a gap between their own lectures too.
		if s.faculty.OccupiedAt(course.Faculty, day, prev) || s.faculty.OccupiedAt(course.Faculty, day, next) {
			return false
		}
	}
	if comp.Type == model.Lab {
		if t, ok := tt.TypeAt(day, prev); ok && t == model.Lab {
			return false
		}
		if t, ok := tt.TypeAt(day, next); ok && t == model.Lab {
			return false
		}
	}
	return true
}
