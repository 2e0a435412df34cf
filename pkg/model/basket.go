package model

import "fmt"

// BasketKey identifies one elective basket within one semester.
type BasketKey struct {
	Semester int
	Label    string
}

func (k BasketKey) String() string {
	return fmt.Sprintf("sem%d/%s", k.Semester, k.Label)
}

// PlannedSession is one shared (day, slot run, component type) tuple of a
// basket's session plan.
type PlannedSession struct {
	Day   int
	Slots []int
	Type  ComponentType
}

// SessionPlan is the ordered list of planned sessions for a basket,
// computed once and replicated verbatim into every section carrying a
// member course.
type SessionPlan []PlannedSession

// BasketGroup is a named group of interchangeable elective variants that
// must occupy one shared time slot per session.
type BasketGroup struct {
	Key     BasketKey
	Members []*Course
	Plan    SessionPlan
}

// UnscheduledComponent is one deduplicated record of a component that could
// not be placed, with merged component types and reasons.
type UnscheduledComponent struct {
	Department string
	Semester   int
	Code       string
	Name       string
	Faculty    string
	Components []ComponentType
	Reason     string
}

// ComponentList renders the merged component types as "LEC, TUT".
func (u *UnscheduledComponent) ComponentList() string {
	out := ""
	for i, c := range u.Components {
		if i > 0 {
			out += ", "
		}
		out += c.String()
	}
	return out
}
