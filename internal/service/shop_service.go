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

type shopStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadStudents(ctx context.Context) ([]models.Student, error)
	LoadPrizes(ctx context.Context) ([]models.Prize, error)
	Commit(ctx context.Context, c models.Collections) error
}

type shopMetrics interface {
	ObservePurchase(outcome string)
	ObserveRefund(outcome string)
}

// ShopService redeems stars for prizes and refunds purchases.
type ShopService struct {
	store     shopStore
	metrics   shopMetrics
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShopService builds a ShopService.
func NewShopService(store shopStore, metrics shopMetrics, clock Clock, validate *validator.Validate, logger *zap.Logger) *ShopService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{store: store, metrics: metrics, clock: clock, validator: validate, logger: logger}
}

// ValidatePurchase checks that prize can be bought by student right now.
func ValidatePurchase(student models.Student, prize models.Prize) error {
	if prize.Quantity.Exhausted() {
		return appErrors.Clone(appErrors.ErrOutOfStock, "prize "+prize.Name+" is out of stock")
	}
	if prize.Archived {
		return appErrors.Clone(appErrors.ErrPrizeArchived, "prize "+prize.Name+" is archived")
	}
	if Balance(student) < prize.Cost {
		return appErrors.Clone(appErrors.ErrInsufficientBalance, "not enough stars to buy "+prize.Name)
	}
	return nil
}

// ApplyPurchase records entry on student and takes one item from prize stock.
func ApplyPurchase(student *models.Student, prize *models.Prize, entry models.PurchaseHistoryEntry) {
	student.PurchaseHistory = append(student.PurchaseHistory, entry)
	student.SpentStars += entry.Cost
	prize.Quantity = prize.Quantity.Add(-1)
	prize.SyncArchived()
}

// ApplyRefund marks the purchase at index refunded, gives the stars back and
// returns the item to stock when the prize still exists. It reports whether
// spentStars had to be clamped at zero.
func ApplyRefund(student *models.Student, index int, prize *models.Prize) (clamped bool) {
	entry := &student.PurchaseHistory[index]
	entry.Refunded = true
	student.SpentStars -= entry.Cost
	if student.SpentStars < 0 {
		student.SpentStars = 0
		clamped = true
	}
	if prize != nil && prize.Quantity.IsLimited() {
		prize.Quantity = prize.Quantity.Add(1)
		prize.Archived = false
	}
	return clamped
}

// Purchase redeems a prize for a student.
func (s *ShopService) Purchase(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResult, error) {
	if strings.TrimSpace(req.StudentID) == "" {
		s.observePurchase("rejected")
		return nil, appErrors.ErrNoStudentSelected
	}
	if err := s.validator.Struct(req); err != nil {
		s.observePurchase("rejected")
		return nil, appErrors.Validation(err, "invalid purchase payload")
	}

	var result *dto.PurchaseResult
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		students, err := s.store.LoadStudents(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load students")
		}
		prizes, err := s.store.LoadPrizes(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load prizes")
		}

		si := indexOfStudent(students, req.StudentID)
		if si < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		pi := indexOfPrize(prizes, req.PrizeID)
		if pi < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "prize not found")
		}

		student, prize := &students[si], &prizes[pi]
		if err := ValidatePurchase(*student, *prize); err != nil {
			return err
		}

		entry := models.PurchaseHistoryEntry{
			ID:        uuid.NewString(),
			PrizeID:   prize.ID,
			PrizeName: prize.Name,
			Cost:      prize.Cost,
			Date:      s.clock.Now(),
		}
		ApplyPurchase(student, prize, entry)

		if err := s.store.Commit(ctx, models.Collections{Students: students, Prizes: prizes}); err != nil {
			return appErrors.Storage(err, "failed to save purchase")
		}

		result = &dto.PurchaseResult{Purchase: entry, Ledger: Summarize(*student), Prize: *prize}
		return nil
	})
	if err != nil {
		s.observePurchase(outcomeOf(err))
		return nil, err
	}

	s.observePurchase("success")
	s.logger.Info("prize purchased",
		zap.String("student_id", req.StudentID),
		zap.String("prize_id", req.PrizeID),
		zap.Int("cost", result.Purchase.Cost),
		zap.Int("balance", result.Ledger.Balance),
	)
	return result, nil
}

// Refund reverses a purchase of a student. A purchase can be refunded once.
func (s *ShopService) Refund(ctx context.Context, studentID, purchaseID string) (*dto.RefundResult, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.ErrNoStudentSelected
	}

	var result *dto.RefundResult
	err := s.store.Exclusive(ctx, func(ctx context.Context) error {
		students, err := s.store.LoadStudents(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load students")
		}
		prizes, err := s.store.LoadPrizes(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load prizes")
		}

		si := indexOfStudent(students, studentID)
		if si < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		student := &students[si]
		idx := student.PurchaseIndex(purchaseID)
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "purchase not found")
		}
		if student.PurchaseHistory[idx].Refunded {
			return appErrors.ErrAlreadyRefunded
		}

		var prize *models.Prize
		if pi := indexOfPrize(prizes, student.PurchaseHistory[idx].PrizeID); pi >= 0 {
			prize = &prizes[pi]
		}
		if ApplyRefund(student, idx, prize) {
			s.logger.Warn("refund exceeded spent stars, clamped at zero",
				zap.String("student_id", studentID),
				zap.String("purchase_id", purchaseID),
			)
		}

		changed := models.Collections{Students: students}
		if prize != nil {
			changed.Prizes = prizes
		}
		if err := s.store.Commit(ctx, changed); err != nil {
			return appErrors.Storage(err, "failed to save refund")
		}

		result = &dto.RefundResult{Purchase: student.PurchaseHistory[idx], Ledger: Summarize(*student)}
		if prize != nil {
			p := *prize
			result.Prize = &p
		}
		return nil
	})
	if err != nil {
		s.observeRefund(outcomeOf(err))
		return nil, err
	}

	s.observeRefund("success")
	s.logger.Info("purchase refunded", zap.String("student_id", studentID), zap.String("purchase_id", purchaseID))
	return result, nil
}

func (s *ShopService) observePurchase(outcome string) {
	if s.metrics != nil {
		s.metrics.ObservePurchase(outcome)
	}
}

func (s *ShopService) observeRefund(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveRefund(outcome)
	}
}

// outcomeOf turns an error into a metrics label.
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	appErr := appErrors.FromError(err)
	if appErr.Status >= 500 {
		return "error"
	}
	return strings.ToLower(appErr.Code)
}

func indexOfStudent(students []models.Student, id string) int {
	for i := range students {
		if students[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfPrize(prizes []models.Prize, id string) int {
	for i := range prizes {
		if prizes[i].ID == id {
			return i
		}
	}
	return -1
}
