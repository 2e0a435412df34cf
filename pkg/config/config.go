package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"timetabler/pkg/model"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config carries every tunable of a scheduling run. A missing config file
// is recovered with defaults; only unreadable input tables are fatal later.
type Config struct {
	Env string

	CoursesFile string
	RoomsFile   string
	OutputDir   string
	Delimiter   string

	Log      LogConfig
	Schedule ScheduleConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// ScheduleConfig mirrors the knobs that varied between deployments of the
// generator: slot boundaries, break windows, session durations, the retry
// budget and the room policy extras.
type ScheduleConfig struct {
	Days  int
	Slots []string

	LectureMinutes   int
	TutorialMinutes  int
	LabMinutes       int
	SelfStudyMinutes int

	LunchStart   string
	LunchEnd     string
	StaggerLunch bool
	LunchWindow  LunchWindowConfig

	MinorBefore string
	MinorFrom   string

	AttemptBudget     int
	Seed              int64
	OverflowHall      string
	OverflowThreshold int

	// ForcedRooms maps course-code markers to literal room ids
	// (e.g. "-C004" -> "C004").
	ForcedRooms map[string]string
	// SectionsPerDepartment gives departments running parallel sections.
	SectionsPerDepartment map[string]int
}

// LunchWindowConfig bounds the staggered per-semester lunch placement.
type LunchWindowConfig struct {
	Start   string
	End     string
	Minutes int
}

// Load reads .env, an optional config file and environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("timetabler")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("TIMETABLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Missing file is fine; defaults cover a full run.
	}

	cfg := &Config{
		Env:         v.GetString("env"),
		CoursesFile: v.GetString("courses_file"),
		RoomsFile:   v.GetString("rooms_file"),
		OutputDir:   v.GetString("output_dir"),
		Delimiter:   v.GetString("delimiter"),
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Schedule: ScheduleConfig{
			Days:              v.GetInt("schedule.days"),
			Slots:             v.GetStringSlice("schedule.slots"),
			LectureMinutes:    v.GetInt("schedule.lecture_minutes"),
			TutorialMinutes:   v.GetInt("schedule.tutorial_minutes"),
			LabMinutes:        v.GetInt("schedule.lab_minutes"),
			SelfStudyMinutes:  v.GetInt("schedule.self_study_minutes"),
			LunchStart:        v.GetString("schedule.lunch_start"),
			LunchEnd:          v.GetString("schedule.lunch_end"),
			StaggerLunch:      v.GetBool("schedule.stagger_lunch"),
			MinorBefore:       v.GetString("schedule.minor_before"),
			MinorFrom:         v.GetString("schedule.minor_from"),
			AttemptBudget:     v.GetInt("schedule.attempt_budget"),
			Seed:              v.GetInt64("schedule.seed"),
			OverflowHall:      v.GetString("schedule.overflow_hall"),
			OverflowThreshold: v.GetInt("schedule.overflow_threshold"),
			LunchWindow: LunchWindowConfig{
				Start:   v.GetString("schedule.lunch_window.start"),
				End:     v.GetString("schedule.lunch_window.end"),
				Minutes: v.GetInt("schedule.lunch_window.minutes"),
			},
			ForcedRooms:           v.GetStringMapString("schedule.forced_rooms"),
			SectionsPerDepartment: toIntMap(v.GetStringMap("schedule.sections")),
		},
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("courses_file", "./data/combined.csv")
	v.SetDefault("rooms_file", "./data/rooms.csv")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("delimiter", ",")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("schedule.days", 5)
	v.SetDefault("schedule.slots", []string{
		"07:30-09:00", "09:00-10:00", "10:00-10:30", "10:30-10:45",
		"10:45-11:00", "11:00-11:30", "11:30-12:00", "12:00-12:15",
		"12:15-12:30", "12:30-13:15", "13:15-14:00", "14:00-14:30",
		"14:30-15:30", "15:30-15:40", "15:40-16:00", "16:00-16:30",
		"16:30-17:10", "17:10-17:30", "17:30-18:30", "18:30-20:00",
	})
	v.SetDefault("schedule.lecture_minutes", 90)
	v.SetDefault("schedule.tutorial_minutes", 60)
	v.SetDefault("schedule.lab_minutes", 120)
	v.SetDefault("schedule.self_study_minutes", 60)
	v.SetDefault("schedule.lunch_start", "13:15")
	v.SetDefault("schedule.lunch_end", "14:00")
	v.SetDefault("schedule.stagger_lunch", false)
	v.SetDefault("schedule.lunch_window.start", "12:30")
	v.SetDefault("schedule.lunch_window.end", "14:00")
	v.SetDefault("schedule.lunch_window.minutes", 60)
	v.SetDefault("schedule.minor_before", "08:00")
	v.SetDefault("schedule.minor_from", "18:30")
	v.SetDefault("schedule.attempt_budget", 5000)
	v.SetDefault("schedule.seed", 0)
	v.SetDefault("schedule.overflow_hall", "C004")
	v.SetDefault("schedule.overflow_threshold", 120)
	v.SetDefault("schedule.forced_rooms", map[string]string{"-C004": "C004"})
	v.SetDefault("schedule.sections", map[string]interface{}{"CSE": 2})
}

func toIntMap(in map[string]interface{}) map[string]int {
	out := make(map[string]int, len(in))
	for k, val := range in {
		switch n := val.(type) {
		case int:
			out[strings.ToUpper(k)] = n
		case int64:
			out[strings.ToUpper(k)] = int(n)
		case float64:
			out[strings.ToUpper(k)] = int(n)
		}
	}
	return out
}

// DelimiterRune returns the configured CSV delimiter as a rune.
func (c *Config) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	return []rune(c.Delimiter)[0]
}

// ParseSlots converts the configured "HH:MM-HH:MM" slot boundaries into
// model time slots.
func (c *ScheduleConfig) ParseSlots() ([]model.TimeSlot, error) {
	slots := make([]model.TimeSlot, 0, len(c.Slots))
	for _, s := range c.Slots {
		startStr, endStr, ok := strings.Cut(s, "-")
		if !ok {
			return nil, fmt.Errorf("invalid slot %q, want HH:MM-HH:MM", s)
		}
		start, err := model.ParseClock(startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid slot %q: %w", s, err)
		}
		end, err := model.ParseClock(endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid slot %q: %w", s, err)
		}
		if end <= start {
			return nil, fmt.Errorf("invalid slot %q: end before start", s)
		}
		slots = append(slots, model.TimeSlot{Start: start, End: end})
	}
	return slots, nil
}

// Durations bundles the configured session lengths.
func (c *ScheduleConfig) DurationSet() model.Durations {
	return model.Durations{
		Lecture:   c.LectureMinutes,
		Tutorial:  c.TutorialMinutes,
		Lab:       c.LabMinutes,
		SelfStudy: c.SelfStudyMinutes,
	}
}

// BreakRule builds the configured break classifier: a fixed lunch window,
// or lunch starts staggered across the semesters present in the input.
func (c *ScheduleConfig) BreakRule(semesters []int) (model.BreakFunc, error) {
	if c.StaggerLunch {
		start, err := model.ParseClock(c.LunchWindow.Start)
		if err != nil {
			return nil, fmt.Errorf("lunch window start: %w", err)
		}
		end, err := model.ParseClock(c.LunchWindow.End)
		if err != nil {
			return nil, fmt.Errorf("lunch window end: %w", err)
		}
		return model.StaggeredLunch(start, end, c.LunchWindow.Minutes, semesters), nil
	}
	start, err := model.ParseClock(c.LunchStart)
	if err != nil {
		return nil, fmt.Errorf("lunch start: %w", err)
	}
	end, err := model.ParseClock(c.LunchEnd)
	if err != nil {
		return nil, fmt.Errorf("lunch end: %w", err)
	}
	return model.FixedLunch(start, end), nil
}
