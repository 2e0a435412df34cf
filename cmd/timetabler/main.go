package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"timetabler/internal/csvio"
	"timetabler/internal/engine"
	"timetabler/pkg/config"
	"timetabler/pkg/logger"
	"timetabler/pkg/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	courses, err := csvio.LoadCourses(cfg.CoursesFile, cfg.DelimiterRune(), cfg.Schedule.ForcedRooms, log)
	if err != nil {
		return err
	}
	rooms, err := csvio.LoadRooms(cfg.RoomsFile, cfg.DelimiterRune(), log)
	if err != nil {
		return err
	}

	slots, err := cfg.Schedule.ParseSlots()
	if err != nil {
		return err
	}
	breaks, err := cfg.Schedule.BreakRule(semestersIn(courses))
	if err != nil {
		return err
	}
	grid := model.NewGrid(slots,
		model.WithBreaks(breaks),
		model.WithMinorEdges(model.MustClock(cfg.Schedule.MinorBefore), model.MustClock(cfg.Schedule.MinorFrom)))

	seed := cfg.Schedule.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	params := engine.Params{
		Days:              cfg.Schedule.Days,
		AttemptBudget:     cfg.Schedule.AttemptBudget,
		Durations:         cfg.Schedule.DurationSet(),
		OverflowHall:      cfg.Schedule.OverflowHall,
		OverflowThreshold: cfg.Schedule.OverflowThreshold,
		Sections:          cfg.Schedule.SectionsPerDepartment,
		Seed:              seed,
	}

	start := time.Now()
	result, err := engine.New(grid, params, log).Run(courses, rooms)
	if err != nil {
		return err
	}
	log.Info("scheduling finished",
		zap.String("run_id", result.RunID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("sections", len(result.Sections)),
		zap.Int("unscheduled", len(result.Unscheduled)))

	valid, report := engine.Verify(result, grid, courses, params.Durations)
	fmt.Print(report)
	if !valid {
		log.Warn("verification found violations")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	schedulePath := filepath.Join(cfg.OutputDir, "schedule.csv")
	if err := csvio.ExportSchedule(result, grid, schedulePath); err != nil {
		return err
	}
	unscheduledPath := filepath.Join(cfg.OutputDir, "unscheduled.csv")
	if err := csvio.ExportUnscheduled(result.Unscheduled, unscheduledPath); err != nil {
		return err
	}
	log.Info("exported",
		zap.String("schedule", schedulePath),
		zap.String("unscheduled", unscheduledPath))
	return nil
}

func semestersIn(courses []*model.Course) []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range courses {
		if !seen[c.Semester] {
			seen[c.Semester] = true
			out = append(out, c.Semester)
		}
	}
	sort.Ints(out)
	return out
}
