package dto

// CoinSelection asks for Quantity coins of one denomination.
type CoinSelection struct {
	Denomination int `json:"denomination" validate:"required"`
	Quantity     int `json:"quantity" validate:"omitempty,min=1,max=50"`
}

// PrintCoinsRequest prints a numbered batch of coins.
type PrintCoinsRequest struct {
	BatchNumber int             `json:"batchNumber" validate:"min=1"`
	Selections  []CoinSelection `json:"selections" validate:"required,min=1,dive"`
}
