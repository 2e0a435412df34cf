package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timetabler/pkg/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCourses(t *testing.T) {
	csv := `Department,Semester,Course Code,Course Name,Faculty,L,T,P,S,total_students,Section,SectionMode,CrossDeptGroup,CrossDeptMode,Schedule
CSE,3,CS201,Data Structures,Dr. A / Dr. B,3,1,2,0,120,,,,,yes
CSE,3,B1-CS401,Elective One,Dr. E,3,0,0,0,,,,,,yes
CSE,4A,MA202,Half Term Math,Dr. M,2,0,0,0,60,,,,,yes
CSE,3,CS999,Skipped,Dr. S,3,0,0,0,60,,,,,no
CSE,3,,No Code,Dr. N,3,0,0,0,60,,,,,yes
ECE,,EC101,No Semester,Dr. Z,3,0,0,0,60,,,,,yes
`
	path := writeTemp(t, "courses.csv", csv)

	courses, err := LoadCourses(path, ',', map[string]string{"-C004": "C004"}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, courses, 3)

	cs := courses[0]
	assert.Equal(t, "CS201", cs.Code)
	assert.Equal(t, "Dr. A", cs.Faculty)
	assert.Equal(t, 120, cs.Strength)
	assert.Equal(t, 3, cs.Semester)
	assert.Equal(t, 2, cs.LabHours)

	el := courses[1]
	assert.Equal(t, "B1", el.Basket)
	assert.Equal(t, "CS401", el.BaseCode)
	assert.Equal(t, 50, el.Strength)

	half := courses[2]
	assert.Equal(t, 4, half.Semester)
	assert.Equal(t, "A", half.HalfTerm)
	assert.Equal(t, 2, half.LectureHours)
}

func TestLoadCoursesForcedRoom(t *testing.T) {
	csv := `Department,Semester,Course Code,Course Name,Faculty,L,T,P,S,total_students,Schedule
CSE,3,MA161-C004,Big Math,Dr. M,3,0,0,0,200,yes
CSE,3,CS201,Plain,Dr. A,3,0,0,0,60,yes
`
	path := writeTemp(t, "courses.csv", csv)

	courses, err := LoadCourses(path, ',', map[string]string{"-C004": "C004"}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "C004", courses[0].RoomOverride)
	assert.Empty(t, courses[1].RoomOverride)
}

func TestLoadCoursesMissingFile(t *testing.T) {
	_, err := LoadCourses(filepath.Join(t.TempDir(), "absent.csv"), ',', nil, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadRooms(t *testing.T) {
	csv := `roomNumber,type,capacity
L101,LECTURE_ROOM,70
CL1,COMPUTER_LAB,40
C004,SEATER_240,240
X1,SOMETHING_ODD,30
X2,,
`
	path := writeTemp(t, "rooms.csv", csv)

	rooms, err := LoadRooms(path, ',', zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rooms, 5)

	assert.Equal(t, model.LectureRoom, rooms[0].Type)
	assert.Equal(t, 70, rooms[0].Capacity)
	assert.Equal(t, model.ComputerLab, rooms[1].Type)
	assert.Equal(t, model.Seater240, rooms[2].Type)

	// Unknown type falls back to a lecture room.
	assert.Equal(t, model.LectureRoom, rooms[3].Type)
	// Missing capacity defaults.
	assert.Equal(t, 50, rooms[4].Capacity)
}

func TestParseSemester(t *testing.T) {
	n, half := parseSemester("4")
	assert.Equal(t, 4, n)
	assert.Empty(t, half)

	n, half = parseSemester("6B")
	assert.Equal(t, 6, n)
	assert.Equal(t, "B", half)

	n, _ = parseSemester("garbage")
	assert.Zero(t, n)
}

func TestIntOr(t *testing.T) {
	assert.Equal(t, 42, intOr("42", 0))
	assert.Equal(t, 42, intOr("42.7", 0))
	assert.Equal(t, 9, intOr("", 9))
	assert.Equal(t, 9, intOr("nan", 9))
	assert.Equal(t, 9, intOr("abc", 9))
}
