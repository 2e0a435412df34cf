package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timetabler/pkg/model"
)

// Params are the injected scheduling knobs. Everything that varied between
// deployments of the generator lives here, not in constants.
type Params struct {
	Days              int
	AttemptBudget     int
	Durations         model.Durations
	OverflowHall      string
	OverflowThreshold int
	// Sections maps department name to its section count; absent means 1.
	Sections map[string]int
	Seed     int64
}

// SectionTimetable pairs a finished grid with its identity.
type SectionTimetable struct {
	Department string
	Semester   int
	Section    string
	Table      *model.Timetable
}

// Label renders the sheet-style section name.
func (s *SectionTimetable) Label() string {
	if s.Section == "" {
		return fmt.Sprintf("%s_%d", s.Department, s.Semester)
	}
	return fmt.Sprintf("%s_%d_%s", s.Department, s.Semester, s.Section)
}

// Result is the complete output of one run: every section grid, the basket
// plans and the unscheduled ledger. The run always completes; partial
// schedules surface through Unscheduled, never through errors.
type Result struct {
	RunID       string
	Sections    []*SectionTimetable
	Baskets     []*model.BasketGroup
	Unscheduled []*model.UnscheduledComponent
}

// Engine runs the whole scheduling computation over a fixed input snapshot.
type Engine struct {
	grid   *model.Grid
	params Params
	log    *zap.Logger
}

// New builds an engine. The grid and params are fixed for the run.
func New(grid *model.Grid, params Params, log *zap.Logger) *Engine {
	return &Engine{grid: grid, params: params, log: log}
}

type crossDeptKey struct {
	semester int
	group    string
}

// crossDeptCombined reports whether a course is scheduled once for its
// cross-department group and copied elsewhere. A group tag without COMBINED
// mode leaves the course on the ordinary per-section path.
func crossDeptCombined(c *model.Course) bool {
	return c.CrossDeptGroup != "" && c.CrossDeptMode == "COMBINED"
}

// Run schedules every department, semester and section. Basket
// synchronization completes fully before any section-level work; ledgers
// are global and mutated eagerly, so enumeration order is kept stable.
func (e *Engine) Run(courses []*model.Course, rooms []*model.Room) (*Result, error) {
	runID := uuid.NewString()
	log := e.log.With(zap.String("run_id", runID))
	rng := rand.New(rand.NewSource(e.params.Seed))

	roomLedger := NewLedger(e.params.Days)
	facultyLedger := NewLedger(e.params.Days)
	assigner := NewRoomAssigner(rooms, roomLedger, e.params.OverflowHall, e.params.OverflowThreshold)
	searcher := NewSearcher(e.grid, e.params.Days, e.params.AttemptBudget, rng, facultyLedger, assigner)
	failures := NewFailureLedger()

	sync := NewSynchronizer(e.grid, e.params.Days, e.params.AttemptBudget, rng, log)
	baskets := sync.PlanBaskets(courses, e.params.Durations)
	memberEntries := e.resolveBasketMembers(baskets, assigner, facultyLedger, failures, log)
	semesterLocks := basketLocks(baskets)

	combinedDone := make(map[string][]*model.ScheduleEntry)
	crossDeptDone := make(map[crossDeptKey][]*model.ScheduleEntry)

	result := &Result{RunID: runID, Baskets: baskets}

	for _, dept := range departmentsOf(courses) {
		sections := e.params.Sections[dept]
		if sections < 1 {
			sections = 1
		}
		for _, semester := range semestersOf(courses, dept) {
			deptCourses := coursesFor(courses, dept, semester)
			lock := lockFor(semesterLocks[semester])
			for s := 0; s < sections; s++ {
				label := ""
				if sections > 1 {
					label = string(rune('A' + s))
				}
				ss := NewSectionScheduler(dept, semester, label, e.params.Days, e.grid.Len(),
					searcher, failures, lock, log)

				sectionCourses := filterForSection(deptCourses, label)
				e.applyBaskets(ss, baskets, sectionCourses, memberEntries, semester)
				e.applyCrossDept(ss, searcher, sectionCourses, crossDeptDone, failures, log)
				combined, own := splitCombined(sectionCourses, sections)
				e.applyCombined(ss, searcher, combined, combinedDone, dept, semester, label, failures, log)

				for _, c := range OrderCourses(own) {
					if c.IsElective() || crossDeptCombined(c) {
						continue
					}
					ss.ScheduleCourse(c, e.params.Durations)
				}

				result.Sections = append(result.Sections, &SectionTimetable{
					Department: dept,
					Semester:   semester,
					Section:    label,
					Table:      ss.Timetable(),
				})
				log.Info("section scheduled",
					zap.String("section", ss.Label()),
					zap.Int("entries", len(ss.Timetable().Entries())))
			}
		}
	}

	result.Unscheduled = failures.Entries()
	log.Info("run complete",
		zap.Int("sections", len(result.Sections)),
		zap.Int("unscheduled", len(result.Unscheduled)))
	return result, nil
}

// resolveBasketMembers fixes room and faculty for every member course of
// every planned basket session, once per member. Sections later replicate
// these entries verbatim. Sessions the plan had to omit become unscheduled
// records for every member.
func (e *Engine) resolveBasketMembers(baskets []*model.BasketGroup, assigner *RoomAssigner,
	faculty *Ledger, failures *FailureLedger, log *zap.Logger) map[string][]*model.ScheduleEntry {
	out := make(map[string][]*model.ScheduleEntry)
	for _, g := range baskets {
		rep := g.Members[0]
		planned := make(map[model.ComponentType]int)
		for _, s := range g.Plan {
			planned[s.Type]++
		}
		for _, comp := range rep.Components(e.params.Durations) {
			for missing := comp.Sessions - planned[comp.Type]; missing > 0; missing-- {
				for _, m := range g.Members {
					failures.Record(m.Department, m.Semester, m.Code, m.Name, m.Faculty, comp.Type,
						fmt.Sprintf("could not plan basket %s session", g.Key.Label))
				}
			}
		}
		for _, m := range g.Members {
			for _, session := range g.Plan {
				comp := model.CourseComponent{
					Course:         m,
					Type:           session.Type,
					Sessions:       1,
					SessionMinutes: sessionMinutes(session, e.grid),
				}
				room, err := assigner.Assign(&comp, session.Day, session.Slots)
				if err != nil {
					failures.Record(m.Department, m.Semester, m.Code, m.Name, m.Faculty, session.Type,
						fmt.Sprintf("no suitable room found (needs %d capacity)", m.Strength))
					continue
				}
				if !faculty.IsFree(m.Faculty, session.Day, session.Slots) {
					failures.Record(m.Department, m.Semester, m.Code, m.Name, m.Faculty, session.Type,
						"faculty unavailable for basket session")
					continue
				}
				if err := faculty.Reserve(m.Faculty, session.Day, session.Slots); err != nil {
					log.Error("basket faculty reservation failed", zap.String("course", m.Code), zap.Error(err))
					failures.Record(m.Department, m.Semester, m.Code, m.Name, m.Faculty, session.Type,
						"faculty unavailable for basket session")
					continue
				}
				if err := assigner.Commit(room, session.Day, session.Slots); err != nil {
					log.Error("basket room reservation failed", zap.String("course", m.Code), zap.Error(err))
					failures.Record(m.Department, m.Semester, m.Code, m.Name, m.Faculty, session.Type,
						fmt.Sprintf("no suitable room found (needs %d capacity)", m.Strength))
					continue
				}
				out[m.Code] = append(out[m.Code], &model.ScheduleEntry{
					Department: m.Department,
					Semester:   m.Semester,
					Code:       m.Code,
					BaseCode:   m.BaseCode,
					Basket:     m.Basket,
					Name:       m.Name,
					Faculty:    m.Faculty,
					Type:       session.Type,
					Day:        session.Day,
					Slots:      append([]int(nil), session.Slots...),
					Rooms:      room.Rooms,
				})
			}
		}
		log.Info("basket members resolved",
			zap.String("basket", g.Key.String()),
			zap.Int("members", len(g.Members)))
	}
	return out
}

func sessionMinutes(s model.PlannedSession, grid *model.Grid) int {
	total := 0
	for _, i := range s.Slots {
		total += grid.Minutes(i)
	}
	return total
}

// applyBaskets replicates every relevant basket plan into the section.
func (e *Engine) applyBaskets(ss *SectionScheduler, baskets []*model.BasketGroup,
	sectionCourses []*model.Course, memberEntries map[string][]*model.ScheduleEntry, semester int) {
	inSection := make(map[string]bool, len(sectionCourses))
	for _, c := range sectionCourses {
		inSection[c.Code] = true
	}
	for _, g := range baskets {
		if g.Key.Semester != semester {
			continue
		}
		var entries []*model.ScheduleEntry
		for _, m := range g.Members {
			if inSection[m.Code] {
				entries = append(entries, memberEntries[m.Code]...)
			}
		}
		ss.ApplyBasketPlan(g, entries)
	}
}

// applyCrossDept schedules each cross-department group once and copies the
// result into every other department carrying it.
func (e *Engine) applyCrossDept(ss *SectionScheduler, searcher *Searcher,
	sectionCourses []*model.Course, done map[crossDeptKey][]*model.ScheduleEntry,
	failures *FailureLedger, log *zap.Logger) {
	for _, c := range sectionCourses {
		if !crossDeptCombined(c) || c.IsElective() {
			continue
		}
		key := crossDeptKey{semester: c.Semester, group: c.CrossDeptGroup}
		if entries, ok := done[key]; ok {
			ss.Adopt(entries)
			continue
		}
		var entries []*model.ScheduleEntry
		for _, comp := range c.Components(e.params.Durations) {
			comp := comp
			for n := 0; n < comp.Sessions; n++ {
				entry, err := searcher.Place(ss.Timetable(), &comp, ss.section, ss.locked)
				if err != nil {
					failures.Record(c.Department, c.Semester, c.Code, c.Name, c.Faculty, comp.Type,
						fmt.Sprintf("could not place cross-department %s", comp.Type))
					continue
				}
				entries = append(entries, entry)
			}
		}
		done[key] = entries
		log.Info("cross-department group scheduled",
			zap.String("group", c.CrossDeptGroup),
			zap.Int("semester", c.Semester),
			zap.Int("sessions", len(entries)))
	}
}

// applyCombined schedules section-combined courses once (first section) and
// copies them into siblings.
func (e *Engine) applyCombined(ss *SectionScheduler, searcher *Searcher,
	combined []*model.Course, done map[string][]*model.ScheduleEntry,
	dept string, semester int, label string, failures *FailureLedger, log *zap.Logger) {
	for _, c := range combined {
		if c.IsElective() || crossDeptCombined(c) {
			continue
		}
		key := fmt.Sprintf("%s/%d/%s", dept, semester, c.Code)
		if entries, ok := done[key]; ok {
			ss.Adopt(entries)
			continue
		}
		var entries []*model.ScheduleEntry
		for _, comp := range c.Components(e.params.Durations) {
			comp := comp
			for n := 0; n < comp.Sessions; n++ {
				entry, err := searcher.Place(ss.Timetable(), &comp, label, ss.locked)
				if err != nil {
					reason := fmt.Sprintf("could not find suitable slot (needs %d capacity)", c.Strength)
					failures.Record(dept, semester, c.Code, c.Name, c.Faculty, comp.Type, reason)
					continue
				}
				entries = append(entries, entry)
			}
		}
		done[key] = entries
	}
}

// basketLocks flattens all plans into per-semester (day -> slot set) locks.
func basketLocks(baskets []*model.BasketGroup) map[int]map[int]map[int]bool {
	locks := make(map[int]map[int]map[int]bool)
	for _, g := range baskets {
		bySem, ok := locks[g.Key.Semester]
		if !ok {
			bySem = make(map[int]map[int]bool)
			locks[g.Key.Semester] = bySem
		}
		for _, s := range g.Plan {
			slots, ok := bySem[s.Day]
			if !ok {
				slots = make(map[int]bool)
				bySem[s.Day] = slots
			}
			for _, i := range s.Slots {
				slots[i] = true
			}
		}
	}
	return locks
}

func lockFor(bySem map[int]map[int]bool) lockFunc {
	if bySem == nil {
		return noLocks
	}
	return func(day, slot int) bool {
		return bySem[day][slot]
	}
}

// departmentsOf returns departments in first-appearance order so runs are
// reproducible for a fixed input snapshot.
func departmentsOf(courses []*model.Course) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range courses {
		if !seen[c.Department] {
			seen[c.Department] = true
			out = append(out, c.Department)
		}
	}
	return out
}

func semestersOf(courses []*model.Course, dept string) []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range courses {
		if c.Department == dept && !seen[c.Semester] {
			seen[c.Semester] = true
			out = append(out, c.Semester)
		}
	}
	sort.Ints(out)
	return out
}

func coursesFor(courses []*model.Course, dept string, semester int) []*model.Course {
	var out []*model.Course
	for _, c := range courses {
		if c.Department == dept && c.Semester == semester {
			out = append(out, c)
		}
	}
	return out
}

// filterForSection keeps the courses a section actually takes: COMBINED
// courses tagged ALL or this section's label, SPLIT courses tagged with the
// label only. A blank mode counts as COMBINED, a blank label as ALL.
func filterForSection(courses []*model.Course, label string) []*model.Course {
	if label == "" {
		return courses
	}
	var out []*model.Course
	for _, c := range courses {
		mode := c.SectionMode
		if mode == "" {
			mode = "COMBINED"
		}
		sec := c.SectionLabel
		if sec == "" {
			sec = "ALL"
		}
		switch mode {
		case "SPLIT":
			if sec == label {
				out = append(out, c)
			}
		default:
			if sec == "ALL" || sec == label {
				out = append(out, c)
			}
		}
	}
	return out
}

// splitCombined separates the courses shared by all sections (scheduled
// once, copied to siblings) from section-local ones. With a single section
// everything is local.
func splitCombined(courses []*model.Course, sections int) (combined, own []*model.Course) {
	if sections <= 1 {
		return nil, courses
	}
	for _, c := range courses {
		mode := c.SectionMode
		if mode == "" {
			mode = "COMBINED"
		}
		sec := c.SectionLabel
		if sec == "" {
			sec = "ALL"
		}
		if mode == "COMBINED" && sec == "ALL" {
			combined = append(combined, c)
		} else {
			own = append(own, c)
		}
	}
	return combined, own
}
