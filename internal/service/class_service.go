package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
)

type classStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadClasses(ctx context.Context) ([]models.Class, error)
	LoadStudents(ctx context.Context) ([]models.Student, error)
	LoadLessonPlans(ctx context.Context) ([]models.LessonPlan, error)
	Commit(ctx context.Context, c models.Collections) error
}

// fileRemover deletes stored lesson files of removed plans.
type fileRemover interface {
	RemoveFiles(files []models.LessonFile)
}

// ClassService manages classes and their subgroups.
type ClassService struct {
	store     classStore
	files     fileRemover
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService builds a ClassService. files may be nil.
func NewClassService(store classStore, files fileRemover, clock Clock, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{store: store, files: files, clock: clock, validator: validate, logger: logger}
}

// List returns active or archived classes.
func (s *ClassService) List(ctx context.Context, archived bool) ([]models.Class, error) {
	classes, err := s.store.LoadClasses(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load classes")
	}
	out := make([]models.Class, 0, len(classes))
	for _, class := range classes {
		if class.Archived == archived {
			out = append(out, class)
		}
	}
	return out, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	classes, err := s.store.LoadClasses(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load classes")
	}
	idx := indexOfClass(classes, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return &classes[idx], nil
}

// Create registers a new class without subgroups.
func (s *ClassService) Create(ctx context.Context, req dto.CreateClassRequest) (*models.Class, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Color = strings.TrimSpace(req.Color)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class payload")
	}
	class := models.Class{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Color:     req.Color,
		Subgroups: []models.Subgroup{},
	}
	if class.Color == "" {
		class.Color = models.DefaultClassColor
	}

	err := s.mutateClasses(ctx, func(classes []models.Class) ([]models.Class, error) {
		return append(classes, class), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("class created", zap.String("class_id", class.ID))
	return &class, nil
}

// Update renames or recolors a class. Allowed on archived classes.
func (s *ClassService) Update(ctx context.Context, id string, req dto.UpdateClassRequest) (*models.Class, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Color != nil {
		trimmed := strings.TrimSpace(*req.Color)
		req.Color = &trimmed
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class payload")
	}
	if req.Name != nil && *req.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class name is required")
	}

	var updated models.Class
	err := s.mutateClasses(ctx, func(classes []models.Class) ([]models.Class, error) {
		idx := indexOfClass(classes, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		if req.Name != nil {
			classes[idx].Name = *req.Name
		}
		if req.Color != nil && *req.Color != "" {
			classes[idx].Color = *req.Color
		}
		updated = classes[idx]
		return classes, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Archive hides a class and removes its lesson plans dated today or later.
// Students keep their class reference. It returns the number of removed plans.
func (s *ClassService) Archive(ctx context.Context, id string) (int, error) {
	today := s.clock.Today()
	var removed []models.LessonPlan
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		classes, plans, err := s.loadClassesAndPlans(ctx)
		if err != nil {
			return err
		}
		idx := indexOfClass(classes, id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		classes[idx].Archived = true

		kept := make([]models.LessonPlan, 0, len(plans))
		removed = nil
		for _, plan := range plans {
			if plan.ClassID == id && plan.Date >= today {
				removed = append(removed, plan)
				continue
			}
			kept = append(kept, plan)
		}

		if err := s.store.Commit(ctx, models.Collections{Classes: classes, LessonPlans: kept}); err != nil {
			return appErrors.Storage(err, "failed to archive class")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.cleanupFiles(removed)
	s.logger.Info("class archived", zap.String("class_id", id), zap.Int("removed_lessons", len(removed)))
	return len(removed), nil
}

// Restore un-archives a class. Lessons removed by archiving stay removed.
func (s *ClassService) Restore(ctx context.Context, id string) (*models.Class, error) {
	var restored models.Class
	err := s.mutateClasses(ctx, func(classes []models.Class) ([]models.Class, error) {
		idx := indexOfClass(classes, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		classes[idx].Archived = false
		restored = classes[idx]
		return classes, nil
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

// Delete removes a class permanently, detaches its students and deletes all
// of its lesson plans.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	var removed []models.LessonPlan
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		classes, plans, err := s.loadClassesAndPlans(ctx)
		if err != nil {
			return err
		}
		students, err := s.store.LoadStudents(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load students")
		}
		idx := indexOfClass(classes, id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		classes = append(classes[:idx], classes[idx+1:]...)

		for i := range students {
			if students[i].ClassID == id {
				students[i].ClassID = ""
				students[i].SubgroupID = ""
			}
		}

		kept := make([]models.LessonPlan, 0, len(plans))
		removed = nil
		for _, plan := range plans {
			if plan.ClassID == id {
				removed = append(removed, plan)
				continue
			}
			kept = append(kept, plan)
		}

		changed := models.Collections{Students: students, Classes: classes, LessonPlans: kept}
		if err := s.store.Commit(ctx, changed); err != nil {
			return appErrors.Storage(err, "failed to delete class")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cleanupFiles(removed)
	s.logger.Info("class deleted", zap.String("class_id", id), zap.Int("removed_lessons", len(removed)))
	return nil
}

// AddSubgroup appends a subgroup to an active class.
func (s *ClassService) AddSubgroup(ctx context.Context, classID string, req dto.SubgroupRequest) (*models.Subgroup, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subgroup payload")
	}
	subgroup := models.Subgroup{ID: uuid.NewString(), Name: req.Name}
	err := s.mutateActiveClass(ctx, classID, func(class *models.Class) error {
		class.Subgroups = append(class.Subgroups, subgroup)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &subgroup, nil
}

// RenameSubgroup changes the name of a subgroup of an active class.
func (s *ClassService) RenameSubgroup(ctx context.Context, classID, subgroupID string, req dto.SubgroupRequest) (*models.Subgroup, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subgroup payload")
	}
	var renamed models.Subgroup
	err := s.mutateActiveClass(ctx, classID, func(class *models.Class) error {
		idx := class.SubgroupIndex(subgroupID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "subgroup not found")
		}
		class.Subgroups[idx].Name = req.Name
		renamed = class.Subgroups[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &renamed, nil
}

// DeleteSubgroup removes a subgroup of an active class and clears it on the
// students that belonged to it.
func (s *ClassService) DeleteSubgroup(ctx context.Context, classID, subgroupID string) error {
	return s.store.Exclusive(ctx, func(ctx context.Context) error {
		classes, err := s.store.LoadClasses(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load classes")
		}
		students, err := s.store.LoadStudents(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load students")
		}
		class, err := activeClass(classes, classID)
		if err != nil {
			return err
		}
		idx := class.SubgroupIndex(subgroupID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "subgroup not found")
		}
		class.Subgroups = append(class.Subgroups[:idx], class.Subgroups[idx+1:]...)

		for i := range students {
			if students[i].ClassID == classID && students[i].SubgroupID == subgroupID {
				students[i].SubgroupID = ""
			}
		}
		if err := s.store.Commit(ctx, models.Collections{Students: students, Classes: classes}); err != nil {
			return appErrors.Storage(err, "failed to delete subgroup")
		}
		return nil
	})
}

func (s *ClassService) mutateClasses(ctx context.Context, fn func([]models.Class) ([]models.Class, error)) error {
	return s.store.Exclusive(ctx, func(ctx context.Context) error {
		classes, err := s.store.LoadClasses(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load classes")
		}
		next, err := fn(classes)
		if err != nil {
			return err
		}
		if err := s.store.Commit(ctx, models.Collections{Classes: next}); err != nil {
			return appErrors.Storage(err, "failed to save classes")
		}
		return nil
	})
}

func (s *ClassService) mutateActiveClass(ctx context.Context, classID string, fn func(*models.Class) error) error {
	return s.mutateClasses(ctx, func(classes []models.Class) ([]models.Class, error) {
		class, err := activeClass(classes, classID)
		if err != nil {
			return nil, err
		}
		if err := fn(class); err != nil {
			return nil, err
		}
		return classes, nil
	})
}

func (s *ClassService) loadClassesAndPlans(ctx context.Context) ([]models.Class, []models.LessonPlan, error) {
	classes, err := s.store.LoadClasses(ctx)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to load classes")
	}
	plans, err := s.store.LoadLessonPlans(ctx)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to load lesson plans")
	}
	return classes, plans, nil
}

func (s *ClassService) cleanupFiles(plans []models.LessonPlan) {
	if s.files == nil {
		return
	}
	for _, plan := range plans {
		s.files.RemoveFiles(plan.Files)
	}
}

// activeClass resolves classID and rejects archived classes.
func activeClass(classes []models.Class, classID string) (*models.Class, error) {
	idx := indexOfClass(classes, classID)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if classes[idx].Archived {
		return nil, appErrors.Clone(appErrors.ErrClassArchived, "class "+classes[idx].Name+" is archived")
	}
	return &classes[idx], nil
}

func indexOfClass(classes []models.Class, id string) int {
	for i := range classes {
		if classes[i].ID == id {
			return i
		}
	}
	return -1
}
