package engine

import (
	"strings"

	"timetabler/pkg/model"
)

// FailureLedger accumulates unscheduled-component records, deduplicated by
// course code with merged component types and reasons. Read-only iteration
// is the only interface the presentation layer sees.
type FailureLedger struct {
	entries []*model.UnscheduledComponent
	byCode  map[string]*model.UnscheduledComponent
}

// NewFailureLedger creates an empty ledger.
func NewFailureLedger() *FailureLedger {
	return &FailureLedger{byCode: make(map[string]*model.UnscheduledComponent)}
}

// Record adds or merges one unscheduled component. A repeat code merges the
// component type and reason into the existing row instead of duplicating it.
func (f *FailureLedger) Record(dept string, semester int, code, name, faculty string, ct model.ComponentType, reason string) {
	if existing, ok := f.byCode[code]; ok {
		if !hasComponent(existing.Components, ct) {
			existing.Components = append(existing.Components, ct)
		}
		if !strings.Contains(existing.Reason, reason) {
			existing.Reason += "; " + reason
		}
		return
	}
	entry := &model.UnscheduledComponent{
		Department: dept,
		Semester:   semester,
		Code:       code,
		Name:       name,
		Faculty:    faculty,
		Components: []model.ComponentType{ct},
		Reason:     reason,
	}
	f.byCode[code] = entry
	f.entries = append(f.entries, entry)
}

// Entries returns the accumulated records in first-recorded order.
func (f *FailureLedger) Entries() []*model.UnscheduledComponent {
	return f.entries
}

// Len returns the number of distinct unscheduled courses.
func (f *FailureLedger) Len() int { return len(f.entries) }

func hasComponent(list []model.ComponentType, ct model.ComponentType) bool {
	for _, c := range list {
		if c == ct {
			return true
		}
	}
	return false
}
