package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetabler/pkg/model"
)

func uniformGrid(slots int) *model.Grid {
	var out []model.TimeSlot
	start := model.MustClock("09:00")
	for i := 0; i < slots; i++ {
		out = append(out, model.TimeSlot{Start: start, End: start + 60})
		start += 60
	}
	return model.NewGrid(out,
		model.WithBreaks(func(model.TimeSlot, int) bool { return false }),
		model.WithMinorEdges(model.MustClock("00:00"), model.MustClock("23:59")))
}

func newTestSearcher(grid *model.Grid, days int, rooms []*model.Room) (*Searcher, *Ledger) {
	faculty := NewLedger(days)
	ra := NewRoomAssigner(rooms, NewLedger(days), "", 0)
	return NewSearcher(grid, days, 2000, rand.New(rand.NewSource(1)), faculty, ra), faculty
}

func oneRoom() []*model.Room {
	return []*model.Room{{ID: "L100", Type: model.LectureRoom, Capacity: 100}}
}

func TestPlaceCommitsEverything(t *testing.T) {
	grid := uniformGrid(4)
	s, faculty := newTestSearcher(grid, 5, oneRoom())
	tt := model.NewTimetable(5, grid.Len())

	comp := lectureComp("CS201", 60)
	comp.SessionMinutes = 60
	comp.Sessions = 1

	entry, err := s.Place(tt, comp, "A", nil)
	require.NoError(t, err)
	require.Len(t, entry.Slots, 1)
	assert.Equal(t, []string{"L100"}, entry.Rooms)
	assert.Equal(t, "A", entry.Section)
	assert.Same(t, entry, tt.At(entry.Day, entry.Slots[0]))
	assert.True(t, faculty.OccupiedAt("Dr. X", entry.Day, entry.Slots[0]))
}

func TestPlaceMatchesDurationExactly(t *testing.T) {
	// Irregular slot widths: a 90-minute session must cover whole slots
	// summing to exactly 90.
	slots := []model.TimeSlot{
		{Start: model.MustClock("09:00"), End: model.MustClock("09:30")},
		{Start: model.MustClock("09:30"), End: model.MustClock("10:30")},
		{Start: model.MustClock("10:30"), End: model.MustClock("11:00")},
	}
	grid := model.NewGrid(slots,
		model.WithBreaks(func(model.TimeSlot, int) bool { return false }))
	s, _ := newTestSearcher(grid, 5, oneRoom())
	tt := model.NewTimetable(5, grid.Len())

	comp := lectureComp("CS201", 60)
	comp.SessionMinutes = 90

	entry, err := s.Place(tt, comp, "", nil)
	require.NoError(t, err)
	total := 0
	for _, i := range entry.Slots {
		total += grid.Minutes(i)
	}
	assert.Equal(t, 90, total)
}

func TestPlaceSameDayExclusion(t *testing.T) {
	grid := uniformGrid(6)
	s, _ := newTestSearcher(grid, 1, oneRoom())
	tt := model.NewTimetable(1, grid.Len())

	lec := lectureComp("CS201", 60)
	lec.SessionMinutes = 60
	_, err := s.Place(tt, lec, "", nil)
	require.NoError(t, err)

	// Only one day exists, so the tutorial can never avoid the lecture.
	tut := &model.CourseComponent{Course: lec.Course, Type: model.Tutorial, SessionMinutes: 60}
	_, err = s.Place(tt, tut, "", nil)
	assert.ErrorIs(t, err, ErrNoPlacement)

	// A second lecture of the same course is refused too.
	_, err = s.Place(tt, lec, "", nil)
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestPlaceLectureAdjacency(t *testing.T) {
	grid := uniformGrid(3)
	s, _ := newTestSearcher(grid, 1, oneRoom())
	tt := model.NewTimetable(1, grid.Len())

	tt.Place(&model.ScheduleEntry{Code: "MA101", BaseCode: "MA101", Faculty: "Dr. M",
		Type: model.Lecture, Day: 0, Slots: []int{0}})
	tt.Place(&model.ScheduleEntry{Code: "PH101", BaseCode: "PH101", Faculty: "Dr. P",
		Type: model.Tutorial, Day: 0, Slots: []int{2}})

	// Slot 1 is the only opening and it touches the lecture in slot 0.
	lec := lectureComp("CS201", 60)
	lec.SessionMinutes = 60
	_, err := s.Place(tt, lec, "", nil)
	assert.ErrorIs(t, err, ErrNoPlacement)

	// A tutorial has no lecture adjacency rule and takes the gap.
	tut := &model.CourseComponent{Course: lec.Course, Type: model.Tutorial, SessionMinutes: 60}
	entry, err := s.Place(tt, tut, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, entry.Slots)
}

func TestPlaceLabAdjacency(t *testing.T) {
	labRoom := []*model.Room{{ID: "CL40", Type: model.ComputerLab, Capacity: 40}}

	// Four slots, one day: the only 120-minute opening touches the lab
	// sitting in slots 0-1.
	grid := uniformGrid(4)
	s, _ := newTestSearcher(grid, 1, labRoom)
	tt := model.NewTimetable(1, grid.Len())
	tt.Place(&model.ScheduleEntry{Code: "EC210", BaseCode: "EC210", Faculty: "Dr. E",
		Type: model.Lab, Day: 0, Slots: []int{0, 1}})

	lab := labComp("CS210", 30)
	lab.SessionMinutes = 120
	_, err := s.Place(tt, lab, "", nil)
	assert.ErrorIs(t, err, ErrNoPlacement)

	// With a tutorial separating the runs the lab fits.
	grid = uniformGrid(5)
	s, _ = newTestSearcher(grid, 1, labRoom)
	tt = model.NewTimetable(1, grid.Len())
	tt.Place(&model.ScheduleEntry{Code: "EC210", BaseCode: "EC210", Faculty: "Dr. E",
		Type: model.Lab, Day: 0, Slots: []int{0, 1}})
	tt.Place(&model.ScheduleEntry{Code: "MA101", BaseCode: "MA101", Faculty: "Dr. M",
		Type: model.Tutorial, Day: 0, Slots: []int{2}})

	entry, err := s.Place(tt, lab, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, entry.Slots)
}

func TestPlaceFacultyConflict(t *testing.T) {
	grid := uniformGrid(2)
	s, faculty := newTestSearcher(grid, 1, oneRoom())
	tt := model.NewTimetable(1, grid.Len())

	require.NoError(t, faculty.Reserve("Dr. X", 0, []int{0, 1}))

	comp := lectureComp("CS201", 60)
	comp.SessionMinutes = 60
	_, err := s.Place(tt, comp, "", nil)
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestPlaceRespectsLocks(t *testing.T) {
	grid := uniformGrid(4)
	s, _ := newTestSearcher(grid, 2, oneRoom())
	tt := model.NewTimetable(2, grid.Len())

	comp := lectureComp("CS201", 60)
	comp.SessionMinutes = 60
	_, err := s.Place(tt, comp, "", func(int, int) bool { return true })
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestPlaceFailsWithoutRooms(t *testing.T) {
	grid := uniformGrid(4)
	s, _ := newTestSearcher(grid, 5, nil)
	tt := model.NewTimetable(5, grid.Len())

	comp := lectureComp("CS201", 60)
	comp.SessionMinutes = 60
	_, err := s.Place(tt, comp, "", nil)
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestPlaceAvoidsBreakSlots(t *testing.T) {
	lunch := model.TimeSlot{Start: model.MustClock("12:00"), End: model.MustClock("13:00")}
	slots := []model.TimeSlot{
		{Start: model.MustClock("11:00"), End: model.MustClock("12:00")},
		lunch,
		{Start: model.MustClock("13:00"), End: model.MustClock("14:00")},
	}
	grid := model.NewGrid(slots,
		model.WithBreaks(model.FixedLunch(lunch.Start, lunch.End)))
	s, _ := newTestSearcher(grid, 1, oneRoom())
	tt := model.NewTimetable(1, grid.Len())

	comp := lectureComp("CS201", 60)
	comp.SessionMinutes = 60
	for {
		entry, err := s.Place(tt, comp, "", nil)
		if err != nil {
			break
		}
		assert.NotContains(t, entry.Slots, 1)
	}
}
