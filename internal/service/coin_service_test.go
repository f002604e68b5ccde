package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/models"
	appErrors "github.com/noah-isme/starcoin-api/pkg/errors"
	"github.com/noah-isme/starcoin-api/pkg/export"
)

type coinSheetStub struct {
	coins []export.Coin
}

func (s *coinSheetStub) RenderCoinSheet(coins []export.Coin, title string) ([]byte, error) {
	s.coins = coins
	return []byte("%PDF"), nil
}

func TestPrintCoinsNumbersSerials(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	sheets := &coinSheetStub{}
	svc := NewCoinService(repo, sheets, FixedClock(testNow), nil, nil)

	result, err := svc.Print(ctx, dto.PrintCoinsRequest{
		BatchNumber: 2,
		Selections:  []dto.CoinSelection{{Denomination: 5}, {Denomination: 10, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 7, result.Records[0].StartNumber)
	assert.Equal(t, 12, result.Records[0].EndNumber)
	assert.Equal(t, models.DefaultCoinQuantity, result.Records[0].Quantity)
	assert.Equal(t, 4, result.Records[1].StartNumber)
	assert.Equal(t, 6, result.Records[1].EndNumber)
	assert.Len(t, sheets.coins, 9)
	assert.Equal(t, export.Coin{Value: 10, Serial: 4}, sheets.coins[6])
	assert.Equal(t, "starcoins_batch_2.pdf", result.Sheet.Filename)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	next, err := svc.NextBatchNumber(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
	next, err = svc.NextBatchNumber(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, next)
}

func TestPrintCoinsValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewCoinService(newTestRepo(t), &coinSheetStub{}, FixedClock(testNow), nil, nil)

	_, err := svc.Print(ctx, dto.PrintCoinsRequest{BatchNumber: 1, Selections: []dto.CoinSelection{{Denomination: 3}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Print(ctx, dto.PrintCoinsRequest{BatchNumber: 1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Print(ctx, dto.PrintCoinsRequest{BatchNumber: 1, Selections: []dto.CoinSelection{{Denomination: 1, Quantity: 51}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Print(ctx, dto.PrintCoinsRequest{BatchNumber: 1, Selections: []dto.CoinSelection{{Denomination: 1}, {Denomination: 1}}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPrintHistoryMaintenance(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	require.NoError(t, repo.SavePrintHistory(ctx, []models.PrintRecord{
		{ID: "r1", Denomination: 1, BatchNumber: 4},
		{ID: "r2", Denomination: 2, BatchNumber: 7},
	}))
	svc := NewCoinService(repo, &coinSheetStub{}, FixedClock(testNow), nil, nil)

	assert.Equal(t, 5, NextBatch([]models.PrintRecord{{Denomination: 1, BatchNumber: 4}, {Denomination: 2, BatchNumber: 7}}, 1))

	require.NoError(t, svc.DeleteRecord(ctx, "r2"))
	assert.ErrorIs(t, svc.DeleteRecord(ctx, "r2"), appErrors.ErrNotFound)
	next, err := svc.NextBatchNumber(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, next)

	require.NoError(t, svc.ClearHistory(ctx))
	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Equal(t, []int{1, 2, 5, 10, 20, 50}, svc.Denominations())
}
