package engine

import (
	"fmt"

	"timetabler/pkg/model"
)

// Verify re-checks a finished result against the scheduling invariants.
// Returns false and a report for invalid results. Placeholder basket cells
// (no course code) are skipped; replicated copies of one placement are
// recognized by their identity key and not treated as collisions.
func Verify(result *Result, grid *model.Grid, courses []*model.Course, d model.Durations) (bool, string) {
	var message string
	valid := true

	type placement struct {
		entry   *model.ScheduleEntry
		section string
	}
	identity := func(e *model.ScheduleEntry) string {
		return fmt.Sprintf("%s|%s|%d|%d", e.Code, e.Type, e.Day, e.Slots[0])
	}

	unique := make(map[string]placement)
	for _, st := range result.Sections {
		for _, e := range st.Table.Entries() {
			if e.Code == "" {
				continue
			}
			if _, ok := unique[identity(e)]; !ok {
				unique[identity(e)] = placement{entry: e, section: st.Label()}
			}
		}
	}
	var entries []placement
	for _, p := range unique {
		entries = append(entries, p)
	}

	hasRoomCollision := false
	hasFacultyCollision := false
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i].entry, entries[j].entry
			if !a.Overlaps(b) {
				continue
			}
			if sharesRoom(a, b) {
				valid = false
				hasRoomCollision = true
				message += fmt.Sprintf("- Room %s double-booked: %s and %s on day %d\n",
					a.RoomID(), a.Code, b.Code, a.Day)
			}
			if a.Faculty == b.Faculty && a.Faculty != "" {
				valid = false
				hasFacultyCollision = true
				message += fmt.Sprintf("- Faculty %s double-booked: %s and %s on day %d\n",
					a.Faculty, a.Code, b.Code, a.Day)
			}
		}
	}

	stickyBroken := false
	roomsByComponent := make(map[string]map[string]bool)
	for _, p := range entries {
		e := p.entry
		if len(e.Rooms) == 0 {
			continue
		}
		key := e.Code + "|" + e.Type.String()
		if roomsByComponent[key] == nil {
			roomsByComponent[key] = make(map[string]bool)
		}
		roomsByComponent[key][e.RoomID()] = true
	}
	for key, rooms := range roomsByComponent {
		if len(rooms) > 1 {
			valid = false
			stickyBroken = true
			message += fmt.Sprintf("- Component %s assigned multiple rooms\n", key)
		}
	}

	badSlot := false
	for _, p := range entries {
		e := p.entry
		for _, s := range e.Slots {
			if grid.Classify(s, e.Semester) != model.SlotTeaching {
				valid = false
				badSlot = true
				message += fmt.Sprintf("- %s placed in %s slot %d\n",
					e.Code, grid.Classify(s, e.Semester), s)
			}
		}
	}

	sameDayBroken := false
	for _, st := range result.Sections {
		kind := make(map[string]map[model.ComponentType]int)
		for _, e := range st.Table.Entries() {
			if e.Code == "" {
				continue
			}
			key := fmt.Sprintf("%s|%d", e.BaseCode, e.Day)
			if kind[key] == nil {
				kind[key] = make(map[model.ComponentType]int)
			}
			kind[key][e.Type]++
		}
		for key, counts := range kind {
			if counts[model.Lecture] > 1 {
				valid = false
				sameDayBroken = true
				message += fmt.Sprintf("- Two lectures on one day for %s in %s\n", key, st.Label())
			}
			if counts[model.Lecture] > 0 && counts[model.Tutorial] > 0 {
				valid = false
				sameDayBroken = true
				message += fmt.Sprintf("- Lecture and tutorial share a day for %s in %s\n", key, st.Label())
			}
		}
	}

	labAdjacent := false
	for _, st := range result.Sections {
		var labs []*model.ScheduleEntry
		for _, e := range st.Table.Entries() {
			if e.Code != "" && e.Type == model.Lab {
				labs = append(labs, e)
			}
		}
		for i := 0; i < len(labs); i++ {
			for j := i + 1; j < len(labs); j++ {
				a, b := labs[i], labs[j]
				if a.Day != b.Day {
					continue
				}
				if a.Slots[len(a.Slots)-1]+1 == b.Slots[0] || b.Slots[len(b.Slots)-1]+1 == a.Slots[0] {
					valid = false
					labAdjacent = true
					message += fmt.Sprintf("- Labs back-to-back in %s on day %d: %s and %s\n",
						st.Label(), a.Day, a.Code, b.Code)
				}
			}
		}
	}

	colocationBroken := false
	planIndex := make(map[model.BasketKey]model.SessionPlan)
	for _, g := range result.Baskets {
		planIndex[g.Key] = g.Plan
	}
	for _, p := range entries {
		e := p.entry
		if e.Basket == "" || e.Code == "" {
			continue
		}
		plan := planIndex[model.BasketKey{Semester: e.Semester, Label: e.Basket}]
		if !onPlan(plan, e) {
			valid = false
			colocationBroken = true
			message += fmt.Sprintf("- Basket member %s off its shared plan\n", e.Code)
		}
	}

	shortfall := false
	unscheduled := make(map[string]bool)
	for _, u := range result.Unscheduled {
		unscheduled[u.Code] = true
	}
	committed := make(map[string]map[model.ComponentType]int)
	for _, p := range entries {
		e := p.entry
		if committed[e.Code] == nil {
			committed[e.Code] = make(map[model.ComponentType]int)
		}
		committed[e.Code][e.Type]++
	}
	for _, c := range courses {
		for _, comp := range c.Components(d) {
			placed := committed[c.Code][comp.Type]
			if placed < comp.Sessions && !unscheduled[c.Code] {
				valid = false
				shortfall = true
				message += fmt.Sprintf("- %s %s: %d/%d sessions placed, not in unscheduled ledger\n",
					c.Code, comp.Type, placed, comp.Sessions)
			}
		}
	}

	message = verdict("Conservation check.", shortfall) + message
	message = verdict("Basket co-location check.", colocationBroken) + message
	message = verdict("Lab adjacency check.", labAdjacent) + message
	message = verdict("Same-day exclusion check.", sameDayBroken) + message
	message = verdict("Break/minor slot check.", badSlot) + message
	message = verdict("Sticky room check.", stickyBroken) + message
	message = verdict("Faculty collision check.", hasFacultyCollision) + message
	message = verdict("Room collision check.", hasRoomCollision) + message

	return valid, message
}

func verdict(name string, failed bool) string {
	if failed {
		return "[FAIL]: " + name + "\n"
	}
	return "[  OK]: " + name + "\n"
}

func sharesRoom(a, b *model.ScheduleEntry) bool {
	for _, ra := range a.Rooms {
		for _, rb := range b.Rooms {
			if ra == rb && ra != "" {
				return true
			}
		}
	}
	return false
}

func onPlan(plan model.SessionPlan, e *model.ScheduleEntry) bool {
	for _, s := range plan {
		if s.Day != e.Day || s.Type != e.Type || len(s.Slots) != len(e.Slots) {
			continue
		}
		match := true
		for i := range s.Slots {
			if s.Slots[i] != e.Slots[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
