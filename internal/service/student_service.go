package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/export"
)

type studentStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadStudents(ctx context.Context) ([]models.Student, error)
	LoadClasses(ctx context.Context) ([]models.Class, error)
	LoadLessonPlans(ctx context.Context) ([]models.LessonPlan, error)
	SaveStudents(ctx context.Context, students []models.Student) error
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Export formats for purchase history downloads.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// StudentService handles the roster and lesson ledgers.
type StudentService struct {
	store     studentStore
	csv       csvRenderer
	pdf       pdfRenderer
	tag       language.Tag
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service. locale is a BCP 47 tag
// used to order names.
func NewStudentService(store studentStore, locale string, csv csvRenderer, pdf pdfRenderer, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &StudentService{store: store, csv: csv, pdf: pdf, tag: tag, validator: validate, logger: logger}
}

// List returns the students matching filter ordered by name, with ledgers.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentWithLedger, error) {
	var (
		students []models.Student
		classes  []models.Class
	)
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		var err error
		students, classes, err = s.loadRoster(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	filtered := FilterStudents(students, models.NewClassLookup(classes), filter)
	s.sortByName(filtered)

	out := make([]models.StudentWithLedger, 0, len(filtered))
	for _, student := range filtered {
		out = append(out, models.StudentWithLedger{Student: student, Ledger: Summarize(student)})
	}
	return out, nil
}

// Get returns one student with its ledger.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentWithLedger, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.StudentWithLedger{Student: *student, Ledger: Summarize(*student)}, nil
}

// Create registers a student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ClassID = strings.TrimSpace(req.ClassID)
	req.SubgroupID = strings.TrimSpace(req.SubgroupID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}

	student := models.Student{
		ID:         uuid.NewString(),
		Name:       req.Name,
		ClassID:    req.ClassID,
		SubgroupID: req.SubgroupID,
		Lessons:    []models.LessonRecord{},
	}
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		students, classes, err := s.loadRoster(ctx)
		if err != nil {
			return err
		}
		if err := checkMembership(classes, student.ClassID, student.SubgroupID); err != nil {
			return err
		}
		if err := s.store.SaveStudents(ctx, append(students, student)); err != nil {
			return appErrors.Storage(err, "failed to save students")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return &student, nil
}

// Update changes name, class or subgroup of a student. Clearing the class
// also clears the subgroup.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	var updated models.Student
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		students, classes, err := s.loadRoster(ctx)
		if err != nil {
			return err
		}
		idx := indexOfStudent(students, id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		student := &students[idx]
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return appErrors.Clone(appErrors.ErrValidation, "student name is required")
			}
			student.Name = name
		}
		if req.ClassID != nil {
			classID := strings.TrimSpace(*req.ClassID)
			if classID != student.ClassID {
				student.SubgroupID = ""
			}
			student.ClassID = classID
		}
		if req.SubgroupID != nil {
			student.SubgroupID = strings.TrimSpace(*req.SubgroupID)
		}
		if student.ClassID == "" {
			student.SubgroupID = ""
		}
		if err := checkMembership(classes, student.ClassID, student.SubgroupID); err != nil {
			return err
		}
		if err := s.store.SaveStudents(ctx, students); err != nil {
			return appErrors.Storage(err, "failed to save students")
		}
		updated = *student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a student with its lessons and purchase history.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(students []models.Student, idx int) ([]models.Student, error) {
		return append(students[:idx], students[idx+1:]...), nil
	})
}

// RecordLesson sets attendance and rating of a student for date. Absent
// students always get zero stars.
func (s *StudentService) RecordLesson(ctx context.Context, id, date string, req dto.RecordLessonRequest) (*models.StudentWithLedger, error) {
	if !models.IsDate(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "stars must be between 0 and 5")
	}
	stars := req.Stars
	if !req.Attended {
		stars = 0
	}

	var result models.StudentWithLedger
	err := s.mutate(ctx, id, func(students []models.Student, idx int) ([]models.Student, error) {
		student := &students[idx]
		if li := student.LessonIndex(date); li >= 0 {
			student.Lessons[li].Stars = stars
			student.Lessons[li].Attended = req.Attended
		} else {
			student.Lessons = append(student.Lessons, models.LessonRecord{
				ID:       uuid.NewString(),
				Date:     date,
				Stars:    stars,
				Attended: req.Attended,
			})
		}
		result = models.StudentWithLedger{Student: *student, Ledger: Summarize(*student)}
		return students, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Ledger returns the derived balance of a student.
func (s *StudentService) Ledger(ctx context.Context, id string) (*models.LedgerSummary, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := Summarize(*student)
	return &summary, nil
}

// PurchaseHistory returns the purchases of a student, newest first.
func (s *StudentService) PurchaseHistory(ctx context.Context, id string) ([]models.PurchaseHistoryEntry, error) {
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return newestFirst(student.PurchaseHistory), nil
}

// ExportPurchases renders the purchase history of a student as CSV or PDF.
func (s *StudentService) ExportPurchases(ctx context.Context, id, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	student, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	dataset := purchaseDataset(newestFirst(student.PurchaseHistory))
	filename := fmt.Sprintf("purchases_%s.%s", fileSlug(student.Name), format)
	switch format {
	case FormatPDF:
		payload, err := s.pdf.Render(dataset, "Purchases of "+student.Name)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Filename: filename, ContentType: "application/pdf", Payload: payload}, nil
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Filename: filename, ContentType: "text/csv; charset=utf-8", Payload: payload}, nil
	}
}

// ClassStats aggregates ledgers of the students matching filter against the
// lessons scheduled for them.
func (s *StudentService) ClassStats(ctx context.Context, filter models.StudentFilter) (*models.ClassStats, error) {
	var (
		students []models.Student
		classes  []models.Class
		plans    []models.LessonPlan
	)
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		var err error
		if students, classes, err = s.loadRoster(ctx); err != nil {
			return err
		}
		if plans, err = s.store.LoadLessonPlans(ctx); err != nil {
			return appErrors.Storage(err, "failed to load lesson plans")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	lookup := models.NewClassLookup(classes)
	filtered := FilterStudents(students, lookup, filter)
	stats := ComputeClassStats(filtered, plans, lookup, filter)
	return &stats, nil
}

// FilterStudents applies a roster filter. Without a class filter, students of
// resolvable classes are kept only when the archived state matches.
func FilterStudents(students []models.Student, classes models.ClassLookup, filter models.StudentFilter) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, student := range students {
		if filter.ClassID != "" {
			if student.ClassID != filter.ClassID {
				continue
			}
		} else if class, ok := classes.Find(student.ClassID); ok && class.Archived != filter.Archived {
			continue
		}
		if filter.SubgroupID != "" && student.SubgroupID != filter.SubgroupID {
			continue
		}
		out = append(out, student)
	}
	return out
}

// ComputeClassStats aggregates students against the plans selected by filter.
func ComputeClassStats(students []models.Student, plans []models.LessonPlan, classes models.ClassLookup, filter models.StudentFilter) models.ClassStats {
	dates := scheduledDates(plans, classes, filter)
	stats := models.ClassStats{
		Students:       len(students),
		LessonDates:    dates,
		ScheduledCount: len(dates),
	}

	byDate := make(map[string][]models.LessonPlan, len(dates))
	for _, plan := range plans {
		byDate[plan.Date] = append(byDate[plan.Date], plan)
	}

	var sumAverages float64
	for _, student := range students {
		sumAverages += AverageStars(student)
		stats.TotalStars += TotalEarned(student)
		stats.TotalMax += MaxPossible(student)
		for _, date := range dates {
			if appliesTo(byDate[date], student) {
				stats.AbsoluteMax += models.MaxStarsPerLesson
			}
		}
	}
	if len(students) > 0 {
		stats.AverageStars = sumAverages / float64(len(students))
	}
	return stats
}

// scheduledDates returns the sorted distinct dates of plans relevant to
// filter. The subgroup narrows plans only when a class is selected.
func scheduledDates(plans []models.LessonPlan, classes models.ClassLookup, filter models.StudentFilter) []string {
	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, plan := range plans {
		if filter.ClassID != "" {
			if plan.ClassID != filter.ClassID {
				continue
			}
			if filter.SubgroupID != "" && !plan.SubgroupID.Matches(filter.SubgroupID) {
				continue
			}
		} else if class, ok := classes.Find(plan.ClassID); ok && class.Archived != filter.Archived {
			continue
		}
		if _, dup := seen[plan.Date]; dup {
			continue
		}
		seen[plan.Date] = struct{}{}
		dates = append(dates, plan.Date)
	}
	sort.Strings(dates)
	return dates
}

func appliesTo(plans []models.LessonPlan, student models.Student) bool {
	for _, plan := range plans {
		if plan.ClassID != student.ClassID {
			continue
		}
		if plan.SubgroupID.IsAll() {
			return true
		}
		if id, _ := plan.SubgroupID.ID(); student.SubgroupID != "" && id == student.SubgroupID {
			return true
		}
	}
	return false
}

func (s *StudentService) sortByName(students []models.Student) {
	collator := collate.New(s.tag, collate.IgnoreCase)
	sort.SliceStable(students, func(i, j int) bool {
		return collator.CompareString(students[i].Name, students[j].Name) < 0
	})
}

func (s *StudentService) mutate(ctx context.Context, id string, fn func([]models.Student, int) ([]models.Student, error)) error {
	return s.store.Exclusive(ctx, func(ctx context.Context) error {
		students, err := s.store.LoadStudents(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load students")
		}
		idx := indexOfStudent(students, id)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		next, err := fn(students, idx)
		if err != nil {
			return err
		}
		if err := s.store.SaveStudents(ctx, next); err != nil {
			return appErrors.Storage(err, "failed to save students")
		}
		return nil
	})
}

func (s *StudentService) find(ctx context.Context, id string) (*models.Student, error) {
	students, err := s.store.LoadStudents(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load students")
	}
	idx := indexOfStudent(students, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &students[idx], nil
}

// loadRoster must run inside Exclusive so students and classes come from one commit.
func (s *StudentService) loadRoster(ctx context.Context) ([]models.Student, []models.Class, error) {
	students, err := s.store.LoadStudents(ctx)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to load students")
	}
	classes, err := s.store.LoadClasses(ctx)
	if err != nil {
		return nil, nil, appErrors.Storage(err, "failed to load classes")
	}
	return students, classes, nil
}

// checkMembership requires classID and subgroupID to resolve when given.
func checkMembership(classes []models.Class, classID, subgroupID string) error {
	if classID == "" {
		if subgroupID != "" {
			return appErrors.Clone(appErrors.ErrValidation, "subgroup requires a class")
		}
		return nil
	}
	idx := indexOfClass(classes, classID)
	if idx < 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	if subgroupID != "" && classes[idx].SubgroupIndex(subgroupID) < 0 {
		return appErrors.Clone(appErrors.ErrValidation, "subgroup does not belong to class")
	}
	return nil
}

func newestFirst(entries []models.PurchaseHistoryEntry) []models.PurchaseHistoryEntry {
	out := make([]models.PurchaseHistoryEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func purchaseDataset(entries []models.PurchaseHistoryEntry) export.Dataset {
	dataset := export.Dataset{Headers: []string{"Date", "Prize", "Cost", "Refunded"}}
	for _, entry := range entries {
		refunded := "no"
		if entry.Refunded {
			refunded = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     entry.Date.Format("2006-01-02 15:04"),
			"Prize":    entry.PrizeName,
			"Cost":     strconv.Itoa(entry.Cost),
			"Refunded": refunded,
		})
	}
	return dataset
}

func fileSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "student"
	}
	return slug
}
