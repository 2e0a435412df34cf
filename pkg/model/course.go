package model

import (
	"regexp"
	"strings"
)

// ComponentType is the closed set of weekly class activities.
type ComponentType int

const (
	Lecture ComponentType = iota
	Tutorial
	Lab
	SelfStudy
)

var componentNames = map[ComponentType]string{
	Lecture:   "LEC",
	Tutorial:  "TUT",
	Lab:       "LAB",
	SelfStudy: "SS",
}

func (c ComponentType) String() string {
	if s, ok := componentNames[c]; ok {
		return s
	}
	return "LEC"
}

var basketPrefix = regexp.MustCompile(`^(B\d+)-`)

// ExtractBasket returns the elective basket label encoded in a course code
// ("B1-CS201" -> "B1"), or "" for non-basket courses.
func ExtractBasket(code string) string {
	m := basketPrefix.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil {
		return ""
	}
	return m[1]
}

// BaseCode strips the basket prefix from a course code
// ("B2-MA161" -> "MA161").
func BaseCode(code string) string {
	code = strings.TrimSpace(code)
	if ExtractBasket(code) != "" {
		if _, rest, ok := strings.Cut(code, "-"); ok {
			return rest
		}
	}
	return code
}

// SelectFaculty picks the first alternative from a delimited faculty field.
func SelectFaculty(field string) string {
	s := strings.TrimSpace(field)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "none") {
		return "TBD"
	}
	for _, sep := range []string{"/", ",", "&", ";"} {
		if first, _, ok := strings.Cut(s, sep); ok {
			return strings.TrimSpace(first)
		}
	}
	return s
}

// Course is one normalized input course record.
type Course struct {
	Department string
	Semester   int
	// HalfTerm carries a half-semester credit marker ("A"/"B") when the
	// semester column had one. Hours are still taken at face value.
	HalfTerm string
	Code     string
	BaseCode string
	Basket   string
	Name     string
	Faculty  string

	LectureHours   int
	TutorialHours  int
	LabHours       int
	SelfStudyHours int
	Strength       int

	// RoomOverride pins every session of the course to one literal room.
	// Populated during input normalization from configured code markers.
	RoomOverride string

	SectionLabel   string
	SectionMode    string
	CrossDeptGroup string
	CrossDeptMode  string
}

// IsElective reports whether the course belongs to an elective basket.
func (c *Course) IsElective() bool { return c.Basket != "" }

// HasLab reports whether the course needs lab sessions.
func (c *Course) HasLab() bool { return c.LabHours > 0 }

// CreditLoad is the total weekly contact hours, used for priority ordering.
func (c *Course) CreditLoad() int {
	return c.LectureHours + c.TutorialHours + c.LabHours
}

// Durations holds the per-component session lengths in minutes.
type Durations struct {
	Lecture   int
	Tutorial  int
	Lab       int
	SelfStudy int
}

// Minutes returns the session length for a component type.
func (d Durations) Minutes(t ComponentType) int {
	switch t {
	case Tutorial:
		return d.Tutorial
	case Lab:
		return d.Lab
	case SelfStudy:
		return d.SelfStudy
	default:
		return d.Lecture
	}
}

// CourseComponent is one schedulable activity derived from a course:
// a component type with a required weekly session count and duration.
type CourseComponent struct {
	Course         *Course
	Type           ComponentType
	Sessions       int
	SessionMinutes int
}

// Components derives the course's components from its weekly hours.
// Session counts follow hours*60/duration, truncated, matching how credit
// structures map onto the slot grid.
func (c *Course) Components(d Durations) []CourseComponent {
	var out []CourseComponent
	add := func(t ComponentType, hours int) {
		if hours <= 0 {
			return
		}
		n := hours * 60 / d.Minutes(t)
		if n <= 0 {
			return
		}
		out = append(out, CourseComponent{
			Course:         c,
			Type:           t,
			Sessions:       n,
			SessionMinutes: d.Minutes(t),
		})
	}
	add(Lecture, c.LectureHours)
	add(Tutorial, c.TutorialHours)
	add(Lab, c.LabHours)
	add(SelfStudy, c.SelfStudyHours)
	return out
}

// RoomTypeFor returns the room type a component requires.
func RoomTypeFor(t ComponentType) RoomType {
	if t == Lab {
		return ComputerLab
	}
	return LectureRoom
}
