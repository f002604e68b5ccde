package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
)

// MaxWeeklyRepeats bounds weekly recurrence.
const MaxWeeklyRepeats = 104

type scheduleStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadClasses(ctx context.Context) ([]models.Class, error)
	LoadLessonPlans(ctx context.Context) ([]models.LessonPlan, error)
	SaveLessonPlans(ctx context.Context, plans []models.LessonPlan) error
}

// ScheduleService manages lesson plans on the class calendar.
type ScheduleService struct {
	store     scheduleStore
	files     fileRemover
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService builds a ScheduleService. files may be nil.
func NewScheduleService(store scheduleStore, files fileRemover, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: store, files: files, validator: validate, logger: logger}
}

// LessonsOnDate returns the plans on date matching filter, ordered by time.
func (s *ScheduleService) LessonsOnDate(ctx context.Context, date string, filter models.LessonFilter) ([]models.LessonPlan, error) {
	if !models.IsDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	return s.LessonsInRange(ctx, date, date, filter)
}

// LessonsInRange returns the plans between from and to inclusive matching
// filter, ordered by date then time.
func (s *ScheduleService) LessonsInRange(ctx context.Context, from, to string, filter models.LessonFilter) ([]models.LessonPlan, error) {
	if !models.IsDate(from) || !models.IsDate(to) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from and to must be YYYY-MM-DD")
	}
	if from > to {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	var (
		plans   []models.LessonPlan
		classes []models.Class
	)
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		var err error
		if plans, err = s.store.LoadLessonPlans(ctx); err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}
		if classes, err = s.store.LoadClasses(ctx); err != nil {
			return appErrors.Storage(err, "failed to load classes")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inRange := make([]models.LessonPlan, 0, len(plans))
	for _, plan := range plans {
		if plan.Date >= from && plan.Date <= to {
			inRange = append(inRange, plan)
		}
	}
	out := FilterLessons(inRange, models.NewClassLookup(classes), filter)
	SortLessons(out)
	return out, nil
}

// Get returns one lesson plan.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.LessonPlan, error) {
	plans, err := s.store.LoadLessonPlans(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load lesson plans")
	}
	idx := indexOfLesson(plans, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
	}
	return &plans[idx], nil
}

// Create schedules one plan per date produced by the recurrence of req.
func (s *ScheduleService) Create(ctx context.Context, req dto.CreateLessonsRequest) ([]models.LessonPlan, error) {
	req.ClassID = strings.TrimSpace(req.ClassID)
	req.Title = strings.TrimSpace(req.Title)
	req.Time = strings.TrimSpace(req.Time)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid lesson payload")
	}
	if req.ClassID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class is required")
	}
	if req.Time == "" {
		req.Time = models.DefaultLessonTime
	}
	if !models.IsTimeOfDay(req.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be HH:MM")
	}
	dates, err := ExpandDates(req.Mode, req.Date, req.Dates, req.Weeks)
	if err != nil {
		return nil, err
	}
	target := models.SpecificSubgroup(strings.TrimSpace(req.SubgroupID))

	var created []models.LessonPlan
	err = s.store.Exclusive(ctx, func(ctx context.Context) error {
		classes, err := s.store.LoadClasses(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load classes")
		}
		class, err := activeClass(classes, req.ClassID)
		if err != nil {
			return err
		}
		if id, specific := target.ID(); specific && class.SubgroupIndex(id) < 0 {
			return appErrors.Clone(appErrors.ErrValidation, "subgroup does not belong to class")
		}
		plans, err := s.store.LoadLessonPlans(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}

		title := req.Title
		if title == "" {
			title = "Lesson " + class.Name
		}
		created = make([]models.LessonPlan, 0, len(dates))
		for _, date := range dates {
			created = append(created, models.LessonPlan{
				ID:          uuid.NewString(),
				Date:        date,
				Time:        req.Time,
				Title:       title,
				Description: req.Description,
				Files:       []models.LessonFile{},
				ClassID:     class.ID,
				SubgroupID:  target,
			})
		}
		if err := s.store.SaveLessonPlans(ctx, append(plans, created...)); err != nil {
			return appErrors.Storage(err, "failed to save lesson plans")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("lessons scheduled",
		zap.String("class_id", req.ClassID),
		zap.String("mode", string(req.Mode)),
		zap.Int("count", len(created)),
	)
	return created, nil
}

// Update edits title, description and time. Date, class and subgroup are
// fixed at creation.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.UpdateLessonRequest) (*models.LessonPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid lesson payload")
	}
	if req.Time != nil {
		trimmed := strings.TrimSpace(*req.Time)
		if trimmed != "" && !models.IsTimeOfDay(trimmed) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "time must be HH:MM")
		}
		req.Time = &trimmed
	}

	var updated models.LessonPlan
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		plans, err := s.store.LoadLessonPlans(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}
		idx := indexOfLesson(plans, id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
		}
		plan := &plans[idx]
		if req.Title != nil {
			plan.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			plan.Description = *req.Description
		}
		if req.Time != nil {
			plan.Time = *req.Time
		}
		if err := s.store.SaveLessonPlans(ctx, plans); err != nil {
			return appErrors.Storage(err, "failed to save lesson plans")
		}
		updated = *plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the plan id, and with DeleteFuture every later plan of the
// same class and subgroup target. It returns the number of removed plans.
func (s *ScheduleService) Delete(ctx context.Context, id string, mode models.DeleteMode) (int, error) {
	if mode == "" {
		mode = models.DeleteSingle
	}
	if mode != models.DeleteSingle && mode != models.DeleteFuture {
		return 0, appErrors.Clone(appErrors.ErrValidation, "mode must be single or future")
	}

	var removed []models.LessonPlan
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		plans, err := s.store.LoadLessonPlans(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}
		kept, gone, ok := SelectForDeletion(plans, id, mode)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson plan not found")
		}
		if err := s.store.SaveLessonPlans(ctx, kept); err != nil {
			return appErrors.Storage(err, "failed to save lesson plans")
		}
		removed = gone
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.files != nil {
		for _, plan := range removed {
			s.files.RemoveFiles(plan.Files)
		}
	}
	s.logger.Info("lessons deleted", zap.String("lesson_id", id), zap.String("mode", string(mode)), zap.Int("count", len(removed)))
	return len(removed), nil
}

// ExpandDates produces the ordered date set of a recurrence. It rejects
// invalid dates, duplicates and empty sets.
func ExpandDates(mode models.RecurrenceMode, date string, dates []string, weeks int) ([]string, error) {
	var out []string
	switch mode {
	case models.RecurrenceOnce:
		if strings.TrimSpace(date) != "" {
			out = append(out, strings.TrimSpace(date))
		}
		out = append(out, trimAll(dates)...)
	case models.RecurrenceWeekly:
		base, err := models.ParseDate(strings.TrimSpace(date))
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "weekly lessons need a valid start date")
		}
		if weeks < 1 || weeks > MaxWeeklyRepeats {
			return nil, appErrors.Clone(appErrors.ErrValidation, "weeks must be between 1 and 104")
		}
		for i := 0; i < weeks; i++ {
			out = append(out, base.AddDate(0, 0, 7*i).Format(models.DateLayout))
		}
	case models.RecurrenceCustom:
		out = trimAll(dates)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "mode must be once, weekly or custom")
	}

	if len(out) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one date is required")
	}
	seen := make(map[string]struct{}, len(out))
	for _, d := range out {
		if !models.IsDate(d) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date "+d)
		}
		if _, dup := seen[d]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate date "+d)
		}
		seen[d] = struct{}{}
	}
	return out, nil
}

// FilterLessons keeps the plans matching filter. Plans whose class no longer
// resolves are kept regardless of the archived flag.
func FilterLessons(plans []models.LessonPlan, classes models.ClassLookup, filter models.LessonFilter) []models.LessonPlan {
	out := make([]models.LessonPlan, 0, len(plans))
	for _, plan := range plans {
		if filter.ClassID != "" && plan.ClassID != filter.ClassID {
			continue
		}
		if filter.SubgroupID != "" && !plan.SubgroupID.Matches(filter.SubgroupID) {
			continue
		}
		if class, ok := classes.Find(plan.ClassID); ok && class.Archived != filter.Archived {
			continue
		}
		out = append(out, plan)
	}
	return out
}

// SortLessons orders plans by date, then time with untimed plans first.
// Ties keep their stored order.
func SortLessons(plans []models.LessonPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].Date != plans[j].Date {
			return plans[i].Date < plans[j].Date
		}
		return plans[i].Time < plans[j].Time
	})
}

// SelectForDeletion splits plans into kept and removed for deleting id in
// mode. ok is false when id does not exist.
func SelectForDeletion(plans []models.LessonPlan, id string, mode models.DeleteMode) (kept, removed []models.LessonPlan, ok bool) {
	idx := indexOfLesson(plans, id)
	if idx < 0 {
		return plans, nil, false
	}
	anchor := plans[idx]
	kept = make([]models.LessonPlan, 0, len(plans))
	for _, plan := range plans {
		drop := plan.ID == anchor.ID
		if !drop && mode == models.DeleteFuture {
			drop = plan.ClassID == anchor.ClassID &&
				plan.SubgroupID == anchor.SubgroupID &&
				plan.Date > anchor.Date
		}
		if drop {
			removed = append(removed, plan)
			continue
		}
		kept = append(kept, plan)
	}
	return kept, removed, true
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
