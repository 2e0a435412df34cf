package engine

import (
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"timetabler/pkg/model"
)

// Synchronizer precomputes, once per (semester, basket label) pair, the
// shared session plan every section carrying a member course replicates
// verbatim. A per-label global lock keeps two sessions of the same label
// from overlapping while leaving different labels free to run concurrently.
type Synchronizer struct {
	grid   *model.Grid
	days   int
	budget int
	rng    *rand.Rand
	locks  *Ledger
	log    *zap.Logger
}

// NewSynchronizer builds a basket synchronizer over the shared grid.
func NewSynchronizer(grid *model.Grid, days, budget int, rng *rand.Rand, log *zap.Logger) *Synchronizer {
	return &Synchronizer{
		grid:   grid,
		days:   days,
		budget: budget,
		rng:    rng,
		locks:  NewLedger(days),
		log:    log,
	}
}

// GroupBaskets collects basket member courses into groups keyed by
// (semester, label), in stable sorted order of keys.
func GroupBaskets(courses []*model.Course) []*model.BasketGroup {
	byKey := make(map[model.BasketKey]*model.BasketGroup)
	var keys []model.BasketKey
	for _, c := range courses {
		if !c.IsElective() {
			continue
		}
		key := model.BasketKey{Semester: c.Semester, Label: c.Basket}
		g, ok := byKey[key]
		if !ok {
			g = &model.BasketGroup{Key: key}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.Members = append(g.Members, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Semester != keys[j].Semester {
			return keys[i].Semester < keys[j].Semester
		}
		return keys[i].Label < keys[j].Label
	})
	groups := make([]*model.BasketGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, byKey[k])
	}
	return groups
}

// PlanBaskets computes the session plan for every basket group before any
// section is scheduled. A representative member's credit structure decides
// the required sessions per component type; sessions that cannot be placed
// are omitted from the plan.
func (sy *Synchronizer) PlanBaskets(courses []*model.Course, d model.Durations) []*model.BasketGroup {
	groups := GroupBaskets(courses)
	for _, g := range groups {
		rep := g.Members[0]
		for _, comp := range rep.Components(d) {
			for n := 0; n < comp.Sessions; n++ {
				session, ok := sy.planSession(g, comp.Type, comp.SessionMinutes, rep.Semester)
				if !ok {
					sy.log.Warn("basket session unplaced",
						zap.String("basket", g.Key.String()),
						zap.Stringer("component", comp.Type),
						zap.Int("session", n+1))
					continue
				}
				g.Plan = append(g.Plan, session)
			}
		}
		sy.log.Info("basket plan ready",
			zap.String("basket", g.Key.String()),
			zap.Int("sessions", len(g.Plan)),
			zap.Int("members", len(g.Members)))
	}
	return groups
}

// planSession is the basket variant of the placement search: random day and
// start, contiguous extension over teaching slots to the exact duration,
// checked against the per-label lock instead of a section grid.
func (sy *Synchronizer) planSession(g *model.BasketGroup, ct model.ComponentType, minutes, semester int) (model.PlannedSession, bool) {
	label := g.Key.Label
	for attempt := 0; attempt < sy.budget; attempt++ {
		day := sy.rng.Intn(sy.days)
		if !sy.dayAllowed(g.Plan, day, ct) {
			continue
		}
		start := sy.rng.Intn(sy.grid.Len())
		run, ok := sy.extendRun(day, start, minutes, semester, label)
		if !ok {
			continue
		}
		if ct == model.Lab && sy.labAdjacent(label, day, run) {
			continue
		}
		if err := sy.locks.Reserve(label, day, run); err != nil {
			continue
		}
		return model.PlannedSession{Day: day, Slots: run, Type: ct}, true
	}
	return model.PlannedSession{}, false
}

// dayAllowed keeps a basket's lectures and tutorials off shared days,
// mirroring the section-level same-day exclusion.
func (sy *Synchronizer) dayAllowed(plan model.SessionPlan, day int, ct model.ComponentType) bool {
	if ct != model.Lecture && ct != model.Tutorial {
		return true
	}
	for _, s := range plan {
		if s.Day == day && (s.Type == model.Lecture || s.Type == model.Tutorial) {
			return false
		}
	}
	return true
}

func (sy *Synchronizer) extendRun(day, start, required, semester int, label string) ([]int, bool) {
	var run []int
	accumulated := 0
	for i := start; i < sy.grid.Len() && accumulated < required; i++ {
		if !sy.grid.Teaching(i, semester) {
			return nil, false
		}
		if sy.locks.OccupiedAt(label, day, i) {
			return nil, false
		}
		run = append(run, i)
		accumulated += sy.grid.Minutes(i)
	}
	if accumulated != required {
		return nil, false
	}
	return run, true
}

func (sy *Synchronizer) labAdjacent(label string, day int, run []int) bool {
	return sy.locks.OccupiedAt(label, day, run[0]-1) ||
		sy.locks.OccupiedAt(label, day, run[len(run)-1]+1)
}
