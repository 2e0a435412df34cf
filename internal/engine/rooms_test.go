package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetabler/pkg/model"
)

func lectureComp(code string, strength int) *model.CourseComponent {
	return &model.CourseComponent{
		Course: &model.Course{Code: code, BaseCode: code, Strength: strength, Faculty: "Dr. X"},
		Type:   model.Lecture,
	}
}

func labComp(code string, strength int) *model.CourseComponent {
	return &model.CourseComponent{
		Course: &model.Course{Code: code, BaseCode: code, Strength: strength, Faculty: "Dr. X"},
		Type:   model.Lab,
	}
}

func TestAssignSmallestFit(t *testing.T) {
	rooms := []*model.Room{
		{ID: "L300", Type: model.LectureRoom, Capacity: 300},
		{ID: "L60", Type: model.LectureRoom, Capacity: 60},
		{ID: "L100", Type: model.LectureRoom, Capacity: 100},
	}
	ra := NewRoomAssigner(rooms, NewLedger(5), "", 0)

	a, err := ra.Assign(lectureComp("CS201", 70), 0, []int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"L100"}, a.Rooms)
}

func TestAssignSticky(t *testing.T) {
	rooms := []*model.Room{
		{ID: "L60", Type: model.LectureRoom, Capacity: 60},
		{ID: "L100", Type: model.LectureRoom, Capacity: 100},
	}
	ledger := NewLedger(5)
	ra := NewRoomAssigner(rooms, ledger, "", 0)

	comp := lectureComp("CS201", 50)
	a, err := ra.Assign(comp, 0, []int{1})
	require.NoError(t, err)
	require.NoError(t, ra.Commit(a, 0, []int{1}))
	assert.Equal(t, []string{"L60"}, a.Rooms)

	// Later sessions reuse the same room.
	b, err := ra.Assign(comp, 2, []int{4})
	require.NoError(t, err)
	assert.Equal(t, a.Rooms, b.Rooms)

	// A busy sticky room fails the attempt rather than moving the course.
	require.NoError(t, ledger.Reserve("L60", 3, []int{2}))
	_, err = ra.Assign(comp, 3, []int{2})
	assert.ErrorIs(t, err, ErrNoRoom)
}

func TestAssignOverride(t *testing.T) {
	rooms := []*model.Room{
		{ID: "L60", Type: model.LectureRoom, Capacity: 60},
		{ID: "C004", Type: model.Seater240, Capacity: 240},
	}
	ledger := NewLedger(5)
	ra := NewRoomAssigner(rooms, ledger, "", 0)

	comp := lectureComp("MA161", 40)
	comp.Course.RoomOverride = "C004"

	a, err := ra.Assign(comp, 0, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []string{"C004"}, a.Rooms)

	// No fallback when the pinned room is taken.
	require.NoError(t, ledger.Reserve("C004", 1, []int{1}))
	_, err = ra.Assign(comp, 1, []int{1})
	assert.ErrorIs(t, err, ErrNoRoom)
}

func TestAssignOverflowHall(t *testing.T) {
	rooms := []*model.Room{
		{ID: "L100", Type: model.LectureRoom, Capacity: 100},
		{ID: "C004", Type: model.Seater240, Capacity: 240},
	}
	ra := NewRoomAssigner(rooms, NewLedger(5), "C004", 120)

	// 180 students fit no ordinary room; the hall opens above the threshold.
	a, err := ra.Assign(lectureComp("PH101", 180), 0, []int{1})
	require.NoError(t, err)
	assert.Equal(t, []string{"C004"}, a.Rooms)

	// 110 students exceed every ordinary room but sit below the threshold,
	// so the hall stays closed to them.
	_, err = ra.Assign(lectureComp("PH102", 110), 0, []int{2})
	assert.ErrorIs(t, err, ErrNoRoom)

	// A small course never lands in the hall through smallest-fit.
	b, err := ra.Assign(lectureComp("PH103", 40), 0, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []string{"L100"}, b.Rooms)
}

func TestAssignLabPair(t *testing.T) {
	rooms := []*model.Room{
		{ID: "CL40", Type: model.ComputerLab, Capacity: 40},
		{ID: "CL35", Type: model.ComputerLab, Capacity: 35},
		{ID: "HL30", Type: model.HardwareLab, Capacity: 30},
	}
	ra := NewRoomAssigner(rooms, NewLedger(5), "", 0)

	// 70 students exceed every single lab; the tightest covering pair wins,
	// and hardware labs count as pair candidates.
	a, err := ra.Assign(labComp("CS210", 70), 0, []int{1, 2})
	require.NoError(t, err)
	assert.Len(t, a.Rooms, 2)
	assert.Equal(t, "HL30+CL40", a.ID())
}

func TestAssignLabNeverTakesLectureRoom(t *testing.T) {
	rooms := []*model.Room{
		{ID: "L300", Type: model.LectureRoom, Capacity: 300},
	}
	ra := NewRoomAssigner(rooms, NewLedger(5), "", 0)
	_, err := ra.Assign(labComp("CS210", 30), 0, []int{1})
	assert.ErrorIs(t, err, ErrNoRoom)
}

func TestCommitReservesAllRooms(t *testing.T) {
	ledger := NewLedger(5)
	ra := NewRoomAssigner(nil, ledger, "", 0)
	require.NoError(t, ra.Commit(Assignment{Rooms: []string{"A", "B"}}, 0, []int{3}))
	assert.True(t, ledger.OccupiedAt("A", 0, 3))
	assert.True(t, ledger.OccupiedAt("B", 0, 3))
}
