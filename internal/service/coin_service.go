package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/export"
)

type coinStore interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
	LoadPrintHistory(ctx context.Context) ([]models.PrintRecord, error)
	SavePrintHistory(ctx context.Context, records []models.PrintRecord) error
}

type coinSheetRenderer interface {
	RenderCoinSheet(coins []export.Coin, title string) ([]byte, error)
}

// CoinPrintResult is a printed batch: the new history records and the sheet.
type CoinPrintResult struct {
	Records []models.PrintRecord
	Sheet   ExportFile
}

// CoinService prints numbered StarCoin sheets and keeps the print history.
type CoinService struct {
	store     coinStore
	sheets    coinSheetRenderer
	clock     Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCoinService builds a CoinService.
func NewCoinService(store coinStore, sheets coinSheetRenderer, clock Clock, validate *validator.Validate, logger *zap.Logger) *CoinService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sheets == nil {
		sheets = export.NewPDFExporter("")
	}
	return &CoinService{store: store, sheets: sheets, clock: clock, validator: validate, logger: logger}
}

// Denominations lists the printable coin values.
func (s *CoinService) Denominations() []int {
	out := make([]int, len(models.CoinDenominations))
	copy(out, models.CoinDenominations)
	return out
}

// Print renders a sheet for the selected denominations and records the batch.
func (s *CoinService) Print(ctx context.Context, req dto.PrintCoinsRequest) (*CoinPrintResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid print request")
	}
	seen := make(map[int]struct{}, len(req.Selections))
	for i, sel := range req.Selections {
		if !models.IsCoinDenomination(sel.Denomination) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown denomination %d", sel.Denomination))
		}
		if _, dup := seen[sel.Denomination]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("denomination %d selected twice", sel.Denomination))
		}
		seen[sel.Denomination] = struct{}{}
		if sel.Quantity == 0 {
			req.Selections[i].Quantity = models.DefaultCoinQuantity
		}
	}

	now := s.clock.Now()
	records := PlanBatch(req.BatchNumber, req.Selections, now)
	coins := make([]export.Coin, 0)
	for _, record := range records {
		for n := record.StartNumber; n <= record.EndNumber; n++ {
			coins = append(coins, export.Coin{Value: record.Denomination, Serial: n})
		}
	}
	payload, err := s.sheets.RenderCoinSheet(coins, fmt.Sprintf("StarCoins batch %d", req.BatchNumber))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render coin sheet")
	}

	err = s.store.Exclusive(ctx, func(ctx context.Context) error {
		history, err := s.store.LoadPrintHistory(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load print history")
		}
		if err := s.store.SavePrintHistory(ctx, append(history, records...)); err != nil {
			return appErrors.Storage(err, "failed to save print history")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("coins printed", zap.Int("batch", req.BatchNumber), zap.Int("coins", len(coins)))
	return &CoinPrintResult{
		Records: records,
		Sheet: ExportFile{
			Filename:    fmt.Sprintf("starcoins_batch_%d.pdf", req.BatchNumber),
			ContentType: "application/pdf",
			Payload:     payload,
		},
	}, nil
}

// PlanBatch computes one print record per selection. Serial numbers of a
// batch run from (batch-1)*quantity+1 to batch*quantity.
func PlanBatch(batch int, selections []dto.CoinSelection, at time.Time) []models.PrintRecord {
	records := make([]models.PrintRecord, 0, len(selections))
	for _, sel := range selections {
		records = append(records, models.PrintRecord{
			ID:           uuid.NewString(),
			Denomination: sel.Denomination,
			BatchNumber:  batch,
			Quantity:     sel.Quantity,
			StartNumber:  (batch-1)*sel.Quantity + 1,
			EndNumber:    batch * sel.Quantity,
			Date:         at,
		})
	}
	return records
}

// History returns print records, newest first.
func (s *CoinService) History(ctx context.Context) ([]models.PrintRecord, error) {
	history, err := s.store.LoadPrintHistory(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load print history")
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history, nil
}

// DeleteRecord removes one print record.
func (s *CoinService) DeleteRecord(ctx context.Context, id string) error {
	return s.store.Exclusive(ctx, func(ctx context.Context) error {
		history, err := s.store.LoadPrintHistory(ctx)
		if err != nil {
			return appErrors.Storage(err, "failed to load print history")
		}
		for i := range history {
			if history[i].ID != id {
				continue
			}
			if err := s.store.SavePrintHistory(ctx, append(history[:i], history[i+1:]...)); err != nil {
				return appErrors.Storage(err, "failed to save print history")
			}
			return nil
		}
		return appErrors.Clone(appErrors.ErrNotFound, "print record not found")
	})
}

// ClearHistory forgets every print record.
func (s *CoinService) ClearHistory(ctx context.Context) error {
	return s.store.Exclusive(ctx, func(ctx context.Context) error {
		if err := s.store.SavePrintHistory(ctx, []models.PrintRecord{}); err != nil {
			return appErrors.Storage(err, "failed to clear print history")
		}
		return nil
	})
}

// NextBatchNumber is one past the highest batch printed, optionally for one
// denomination only (0 means any).
func (s *CoinService) NextBatchNumber(ctx context.Context, denomination int) (int, error) {
	history, err := s.store.LoadPrintHistory(ctx)
	if err != nil {
		return 0, appErrors.Storage(err, "failed to load print history")
	}
	return NextBatch(history, denomination), nil
}

// NextBatch is the pure form of NextBatchNumber.
func NextBatch(history []models.PrintRecord, denomination int) int {
	highest := 0
	for _, record := range history {
		if denomination != 0 && record.Denomination != denomination {
			continue
		}
		if record.BatchNumber > highest {
			highest = record.BatchNumber
		}
	}
	return highest + 1
}
