package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timetabler/pkg/model"
)

func electiveCourse(code string, semester, lectures int) *model.Course {
	return &model.Course{
		Department:   "CSE",
		Semester:     semester,
		Code:         code,
		BaseCode:     model.BaseCode(code),
		Basket:       model.ExtractBasket(code),
		Name:         code,
		Faculty:      "Dr. " + code,
		LectureHours: lectures,
		Strength:     40,
	}
}

func TestGroupBaskets(t *testing.T) {
	courses := []*model.Course{
		electiveCourse("B2-HS301", 5, 3),
		electiveCourse("B1-CS401", 5, 3),
		electiveCourse("B1-CS402", 5, 3),
		electiveCourse("B1-CS403", 3, 3),
		{Code: "MA161", BaseCode: "MA161", Semester: 3, LectureHours: 3},
	}

	groups := GroupBaskets(courses)
	require.Len(t, groups, 3)

	assert.Equal(t, model.BasketKey{Semester: 3, Label: "B1"}, groups[0].Key)
	assert.Equal(t, model.BasketKey{Semester: 5, Label: "B1"}, groups[1].Key)
	assert.Equal(t, model.BasketKey{Semester: 5, Label: "B2"}, groups[2].Key)
	assert.Len(t, groups[1].Members, 2)
}

func TestPlanBasketsSharedPlan(t *testing.T) {
	grid := uniformGrid(8)
	sy := NewSynchronizer(grid, 5, 2000, rand.New(rand.NewSource(7)), zap.NewNop())

	courses := []*model.Course{
		electiveCourse("B1-CS401", 5, 2),
		electiveCourse("B1-CS402", 5, 2),
	}
	d := model.Durations{Lecture: 60, Tutorial: 60, Lab: 120, SelfStudy: 60}

	groups := sy.PlanBaskets(courses, d)
	require.Len(t, groups, 1)
	plan := groups[0].Plan
	require.Len(t, plan, 2)

	// Lectures of one basket never share a day and never overlap.
	assert.NotEqual(t, plan[0].Day, plan[1].Day)
	for _, s := range plan {
		assert.Equal(t, model.Lecture, s.Type)
		assert.Len(t, s.Slots, 1)
	}
}

func TestPlanBasketsLabelsLockIndependently(t *testing.T) {
	grid := uniformGrid(2)
	sy := NewSynchronizer(grid, 1, 2000, rand.New(rand.NewSource(3)), zap.NewNop())

	// Two labels, one day, two slots each: both plans must fit because the
	// locks are per label, not global.
	courses := []*model.Course{
		electiveCourse("B1-CS401", 5, 2),
		electiveCourse("B2-HS301", 5, 2),
	}
	d := model.Durations{Lecture: 60, Tutorial: 60, Lab: 120, SelfStudy: 60}

	groups := sy.PlanBaskets(courses, d)
	require.Len(t, groups, 2)

	// Each label wants two lecture sessions but dayAllowed forbids a second
	// lecture day per label, so exactly one session lands per label.
	assert.Len(t, groups[0].Plan, 1)
	assert.Len(t, groups[1].Plan, 1)
}

func TestPlanBasketsOmitsImpossibleSessions(t *testing.T) {
	grid := uniformGrid(1)
	sy := NewSynchronizer(grid, 1, 50, rand.New(rand.NewSource(1)), zap.NewNop())

	courses := []*model.Course{electiveCourse("B1-CS401", 5, 3)}
	d := model.Durations{Lecture: 120, Tutorial: 60, Lab: 120, SelfStudy: 60}

	// A 120-minute session cannot fit a single 60-minute slot.
	groups := sy.PlanBaskets(courses, d)
	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Plan)
}
