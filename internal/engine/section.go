package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"timetabler/pkg/model"
)

// SectionScheduler builds the timetable for one (department, semester,
// section). It owns its grid exclusively; all shared state is reached
// through the searcher's ledgers.
type SectionScheduler struct {
	dept     string
	semester int
	section  string

	tt       *model.Timetable
	searcher *Searcher
	failures *FailureLedger
	locked   lockFunc
	log      *zap.Logger
}

// NewSectionScheduler creates a scheduler with an empty grid. locked is the
// per-semester basket lock keeping ordinary courses out of planned basket
// slots.
func NewSectionScheduler(dept string, semester int, section string, days, slots int,
	searcher *Searcher, failures *FailureLedger, locked lockFunc, log *zap.Logger) *SectionScheduler {
	if locked == nil {
		locked = noLocks
	}
	return &SectionScheduler{
		dept:     dept,
		semester: semester,
		section:  section,
		tt:       model.NewTimetable(days, slots),
		searcher: searcher,
		failures: failures,
		locked:   locked,
		log:      log,
	}
}

// Timetable returns the section's grid.
func (ss *SectionScheduler) Timetable() *model.Timetable { return ss.tt }

// Label returns a human-readable section identifier.
func (ss *SectionScheduler) Label() string {
	if ss.section == "" {
		return fmt.Sprintf("%s_%d", ss.dept, ss.semester)
	}
	return fmt.Sprintf("%s_%d_%s", ss.dept, ss.semester, ss.section)
}

// ApplyBasketPlan replicates a basket's precomputed member placements into
// this section. Sections with no member course still block the planned
// slots with a placeholder so students keep the window free.
func (ss *SectionScheduler) ApplyBasketPlan(g *model.BasketGroup, memberEntries []*model.ScheduleEntry) {
	if len(memberEntries) == 0 {
		for _, session := range g.Plan {
			if !ss.tt.Free(session.Day, session.Slots) {
				continue
			}
			ss.tt.Place(&model.ScheduleEntry{
				Department: ss.dept,
				Semester:   ss.semester,
				Section:    ss.section,
				Basket:     g.Key.Label,
				Name:       g.Key.Label,
				Type:       session.Type,
				Day:        session.Day,
				Slots:      append([]int(nil), session.Slots...),
			})
		}
		return
	}
	ss.Adopt(memberEntries)
}

// Adopt copies already-committed entries into this section's grid without
// touching the ledgers; faculty and rooms were reserved when the entries
// were first scheduled.
func (ss *SectionScheduler) Adopt(entries []*model.ScheduleEntry) {
	for _, src := range entries {
		dup := *src
		dup.Department = ss.dept
		dup.Section = ss.section
		dup.Slots = append([]int(nil), src.Slots...)
		dup.Rooms = append([]string(nil), src.Rooms...)
		if ss.tt.Free(src.Day, src.Slots) {
			ss.tt.Place(&dup)
			continue
		}
		occ := ss.tt.At(src.Day, src.Slots[0])
		if occ != nil && occ.Basket != "" && src.Basket != "" {
			// Basket windows stack: sibling variants of one label share the
			// window, and different labels may run concurrently.
			ss.tt.PlaceOverlay(&dup)
		}
	}
}

// ScheduleCourse places every session of every component of one course,
// forwarding failures to the ledger instead of aborting.
func (ss *SectionScheduler) ScheduleCourse(c *model.Course, d model.Durations) {
	for _, comp := range c.Components(d) {
		comp := comp
		for n := 0; n < comp.Sessions; n++ {
			_, err := ss.searcher.Place(ss.tt, &comp, ss.section, ss.locked)
			if err == nil {
				continue
			}
			reason := fmt.Sprintf("could not find suitable slot (needs %d capacity)", c.Strength)
			if comp.Type == model.Lab {
				reason = fmt.Sprintf("no lab room available (needs %d capacity)", c.Strength)
			}
			ss.failures.Record(ss.dept, ss.semester, c.Code, c.Name, c.Faculty, comp.Type, reason)
			ss.log.Warn("component unplaced",
				zap.String("section", ss.Label()),
				zap.String("course", c.Code),
				zap.Stringer("component", comp.Type))
		}
	}
}

// OrderCourses sorts a section's course list into scheduling priority:
// lab courses before the rest, then by descending credit load. Electives
// are handled by basket plans and sorted first only so they are skipped
// early and consistently.
func OrderCourses(courses []*model.Course) []*model.Course {
	out := append([]*model.Course(nil), courses...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsElective() != b.IsElective() {
			return a.IsElective()
		}
		if a.HasLab() != b.HasLab() {
			return a.HasLab()
		}
		return a.CreditLoad() > b.CreditLoad()
	})
	return out
}
