package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"timetabler/internal/engine"
	"timetabler/pkg/model"
)

// ScheduleCSVRow is one exported schedule entry.
type ScheduleCSVRow struct {
	Department string `csv:"department"`
	Semester   int    `csv:"semester"`
	Section    string `csv:"section"`
	Day        int    `csv:"day"`
	Start      string `csv:"start"`
	End        string `csv:"end"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	Component  string `csv:"component"`
	Rooms      string `csv:"rooms"`
	Faculty    string `csv:"faculty"`
	Basket     string `csv:"basket"`
}

// UnscheduledCSVRow is one exported failure ledger record.
type UnscheduledCSVRow struct {
	Department string `csv:"department"`
	Semester   int    `csv:"semester"`
	CourseCode string `csv:"course_code"`
	CourseName string `csv:"course_name"`
	Faculty    string `csv:"faculty"`
	Components string `csv:"components"`
	Reason     string `csv:"reason"`
}

// ExportSchedule writes every committed entry of the run to a CSV file.
// Basket placeholder cells carry no course and are not exported.
func ExportSchedule(result *engine.Result, grid *model.Grid, path string) error {
	var rows []*ScheduleCSVRow
	for _, st := range result.Sections {
		for _, e := range st.Table.Entries() {
			if e.Code == "" {
				continue
			}
			first := grid.Slot(e.Slots[0])
			last := grid.Slot(e.Slots[len(e.Slots)-1])
			rows = append(rows, &ScheduleCSVRow{
				Department: st.Department,
				Semester:   st.Semester,
				Section:    st.Section,
				Day:        e.Day,
				Start:      first.Start.String(),
				End:        last.End.String(),
				CourseCode: e.Code,
				CourseName: e.Name,
				Component:  e.Type.String(),
				Rooms:      e.RoomID(),
				Faculty:    e.Faculty,
				Basket:     e.Basket,
			})
		}
	}
	return writeCSV(path, &rows)
}

// ExportUnscheduled writes the failure ledger to a CSV file.
func ExportUnscheduled(unscheduled []*model.UnscheduledComponent, path string) error {
	var rows []*UnscheduledCSVRow
	for _, u := range unscheduled {
		rows = append(rows, &UnscheduledCSVRow{
			Department: u.Department,
			Semester:   u.Semester,
			CourseCode: u.Code,
			CourseName: u.Name,
			Faculty:    u.Faculty,
			Components: u.ComponentList(),
			Reason:     u.Reason,
		})
	}
	return writeCSV(path, &rows)
}

func writeCSV(path string, rows interface{}) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if err := gocsv.MarshalFile(rows, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
