package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"timetabler/pkg/model"
)

// CourseRow mirrors one line of the combined course table. Optional columns
// stay strings so missing or malformed values can fall back to documented
// defaults instead of failing the load.
type CourseRow struct {
	Department     string `csv:"Department"`
	Semester       string `csv:"Semester"`
	CourseCode     string `csv:"Course Code"`
	CourseName     string `csv:"Course Name"`
	Faculty        string `csv:"Faculty"`
	Lecture        string `csv:"L"`
	Tutorial       string `csv:"T"`
	Practical      string `csv:"P"`
	SelfStudy      string `csv:"S"`
	TotalStudents  string `csv:"total_students"`
	Section        string `csv:"Section"`
	SectionMode    string `csv:"SectionMode"`
	CrossDeptGroup string `csv:"CrossDeptGroup"`
	CrossDeptMode  string `csv:"CrossDeptMode"`
	Schedule       string `csv:"Schedule"`
}

// RoomRow mirrors one line of the room inventory table.
type RoomRow struct {
	RoomNumber string `csv:"roomNumber"`
	Type       string `csv:"type"`
	Capacity   string `csv:"capacity"`
}

const (
	defaultStrength = 50
	defaultCapacity = 50
)

func setDelimiter(delim rune) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		return r
	})
}

// LoadCourses reads and normalizes the course table. An unreadable or
// unparseable file is the only fatal case; bad optional fields recover via
// defaults and are logged.
func LoadCourses(path string, delim rune, forcedRooms map[string]string, log *zap.Logger) ([]*model.Course, error) {
	setDelimiter(delim)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open courses table %s: %w", path, err)
	}
	defer f.Close()

	var rows []*CourseRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse courses table %s: %w", path, err)
	}

	var courses []*model.Course
	for _, r := range rows {
		if skip := strings.TrimSpace(r.Schedule); skip != "" && !strings.EqualFold(skip, "yes") {
			continue
		}
		code := strings.TrimSpace(r.CourseCode)
		if code == "" {
			continue
		}
		semester, halfTerm := parseSemester(r.Semester)
		if semester == 0 {
			log.Warn("course has no usable semester, skipping", zap.String("code", code))
			continue
		}
		c := &model.Course{
			Department:     strings.TrimSpace(r.Department),
			Semester:       semester,
			HalfTerm:       halfTerm,
			Code:           code,
			BaseCode:       model.BaseCode(code),
			Basket:         model.ExtractBasket(code),
			Name:           strings.TrimSpace(r.CourseName),
			Faculty:        model.SelectFaculty(r.Faculty),
			LectureHours:   intOr(r.Lecture, 0),
			TutorialHours:  intOr(r.Tutorial, 0),
			LabHours:       intOr(r.Practical, 0),
			SelfStudyHours: intOr(r.SelfStudy, 0),
			Strength:       intOr(r.TotalStudents, defaultStrength),
			SectionLabel:   strings.ToUpper(strings.TrimSpace(r.Section)),
			SectionMode:    strings.ToUpper(strings.TrimSpace(r.SectionMode)),
			CrossDeptGroup: strings.TrimSpace(r.CrossDeptGroup),
			CrossDeptMode:  strings.ToUpper(strings.TrimSpace(r.CrossDeptMode)),
		}
		// Forced-room markers move from the code string onto an explicit
		// field here, so room selection never parses codes.
		for marker, room := range forcedRooms {
			if strings.Contains(strings.ToUpper(code), strings.ToUpper(marker)) {
				c.RoomOverride = room
				break
			}
		}
		courses = append(courses, c)
	}
	log.Info("courses loaded", zap.String("path", path), zap.Int("count", len(courses)))
	return courses, nil
}

// LoadRooms reads the room inventory. Missing capacity defaults to 50;
// an unknown type falls back to LECTURE_ROOM with a warning.
func LoadRooms(path string, delim rune, log *zap.Logger) ([]*model.Room, error) {
	setDelimiter(delim)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rooms table %s: %w", path, err)
	}
	defer f.Close()

	var rows []*RoomRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse rooms table %s: %w", path, err)
	}

	var rooms []*model.Room
	for _, r := range rows {
		id := strings.TrimSpace(r.RoomNumber)
		if id == "" {
			continue
		}
		typ, err := model.ParseRoomType(r.Type)
		if err != nil {
			log.Warn("unknown room type, treating as lecture room",
				zap.String("room", id), zap.String("type", r.Type))
		}
		rooms = append(rooms, &model.Room{
			ID:       id,
			Type:     typ,
			Capacity: intOr(r.Capacity, defaultCapacity),
		})
	}
	log.Info("rooms loaded", zap.String("path", path), zap.Int("count", len(rooms)))
	return rooms, nil
}

// parseSemester takes the leading digits of the semester column and keeps
// any trailing half-semester marker ("4A" -> 4, "A").
func parseSemester(s string) (int, string) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, ""
	}
	return n, strings.TrimSpace(s[i:])
}

func intOr(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return fallback
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return fallback
}
