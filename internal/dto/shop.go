package dto

import "github.com/noah-isme/starcoin-api/internal/models"

// PurchaseRequest redeems a prize for a student.
type PurchaseRequest struct {
	StudentID string `json:"studentId"`
	PrizeID   string `json:"prizeId" validate:"required"`
}

// PurchaseResult reports the new history entry with the updated ledger and stock.
type PurchaseResult struct {
	Purchase models.PurchaseHistoryEntry `json:"purchase"`
	Ledger   models.LedgerSummary        `json:"ledger"`
	Prize    models.Prize                `json:"prize"`
}

// RefundResult reports the refunded entry and the updated ledger.
type RefundResult struct {
	Purchase models.PurchaseHistoryEntry `json:"purchase"`
	Ledger   models.LedgerSummary        `json:"ledger"`
	Prize    *models.Prize               `json:"prize,omitempty"`
}
