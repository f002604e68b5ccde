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

type prizeStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadPrizes(ctx context.Context) ([]models.Prize, error)
	SavePrizes(ctx context.Context, prizes []models.Prize) error
}

// PrizeService manages the prize catalog.
type PrizeService struct {
	store     prizeStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPrizeService builds a PrizeService.
func NewPrizeService(store prizeStore, validate *validator.Validate, logger *zap.Logger) *PrizeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrizeService{store: store, validator: validate, logger: logger}
}

// List returns active or archived prizes in catalog order.
func (s *PrizeService) List(ctx context.Context, archived bool) ([]models.Prize, error) {
	prizes, err := s.store.LoadPrizes(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load prizes")
	}
	out := make([]models.Prize, 0, len(prizes))
	for _, prize := range prizes {
		if prize.Archived == archived {
			out = append(out, prize)
		}
	}
	return out, nil
}

// Get returns one prize.
func (s *PrizeService) Get(ctx context.Context, id string) (*models.Prize, error) {
	prizes, err := s.store.LoadPrizes(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load prizes")
	}
	idx := indexOfPrize(prizes, id)
	if idx < 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "prize not found")
	}
	return &prizes[idx], nil
}

// Create adds a prize to the catalog.
func (s *PrizeService) Create(ctx context.Context, req dto.PrizeRequest) (*models.Prize, error) {
	req = normalizePrizeRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid prize payload")
	}

	prize := models.Prize{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Cost:        req.Cost,
		Description: req.Description,
		Emoji:       req.Emoji,
		Quantity:    models.QuantityFromPtr(req.Quantity),
	}
	prize.SyncArchived()

	err := s.mutate(ctx, func(prizes []models.Prize) ([]models.Prize, error) {
		return append(prizes, prize), nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("prize created", zap.String("prize_id", prize.ID), zap.Int("cost", prize.Cost))
	return &prize, nil
}

// Update replaces the editable fields of a prize and re-derives its archived
// flag from the new stock, so saving an unlimited prize returns it to the shop.
func (s *PrizeService) Update(ctx context.Context, id string, req dto.PrizeRequest) (*models.Prize, error) {
	req = normalizePrizeRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid prize payload")
	}

	var updated models.Prize
	err := s.mutate(ctx, func(prizes []models.Prize) ([]models.Prize, error) {
		idx := indexOfPrize(prizes, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prize not found")
		}
		p := &prizes[idx]
		p.Name = req.Name
		p.Cost = req.Cost
		p.Description = req.Description
		p.Emoji = req.Emoji
		p.Quantity = models.QuantityFromPtr(req.Quantity)
		p.Archived = p.Quantity.Exhausted()
		updated = *p
		return prizes, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a prize. Purchase history keeps its own snapshot of it.
func (s *PrizeService) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, func(prizes []models.Prize) ([]models.Prize, error) {
		idx := indexOfPrize(prizes, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prize not found")
		}
		return append(prizes[:idx], prizes[idx+1:]...), nil
	})
}

// Archive hides an unlimited prize from the shop. Limited prizes archive by
// running out of stock.
func (s *PrizeService) Archive(ctx context.Context, id string) (*models.Prize, error) {
	var archived models.Prize
	err := s.mutate(ctx, func(prizes []models.Prize) ([]models.Prize, error) {
		idx := indexOfPrize(prizes, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prize not found")
		}
		p := &prizes[idx]
		if p.Quantity.IsLimited() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "limited prizes are archived when their quantity reaches zero")
		}
		p.Archived = true
		archived = *p
		return prizes, nil
	})
	if err != nil {
		return nil, err
	}
	return &archived, nil
}

// Restore puts an archived prize back on sale. A limited prize gets at least
// one item of stock.
func (s *PrizeService) Restore(ctx context.Context, id string) (*models.Prize, error) {
	var restored models.Prize
	err := s.mutate(ctx, func(prizes []models.Prize) ([]models.Prize, error) {
		idx := indexOfPrize(prizes, id)
		if idx < 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "prize not found")
		}
		p := &prizes[idx]
		if n, limited := p.Quantity.Count(); limited && n < 1 {
			p.Quantity = models.Limited(1)
		}
		p.Archived = false
		restored = *p
		return prizes, nil
	})
	if err != nil {
		return nil, err
	}
	return &restored, nil
}

func (s *PrizeService) mutate(ctx context.Context, fn func([]models.Prize) ([]models.Prize, error)) error {
	return s.store.Exclusive(ctx, func(ctx context.Context) error {
		prizes, err := s.store.LoadPrizes(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load prizes")
		}
		next, err := fn(prizes)
		if err != nil {
			return err
		}
		if err := s.store.SavePrizes(ctx, next); err != nil {
			return appErrors.Storage(err, "failed to save prizes")
		}
		return nil
	})
}

func normalizePrizeRequest(req dto.PrizeRequest) dto.PrizeRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Emoji = strings.TrimSpace(req.Emoji)
	if req.Emoji == "" {
		req.Emoji = models.DefaultPrizeEmoji
	}
	return req
}
