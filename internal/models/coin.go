package models

import "time"

// CoinDenominations are the printable StarCoin values.
var CoinDenominations = []int{1, 2, 5, 10, 20, 50}

const (
	// DefaultCoinQuantity is the number of coins printed per denomination by default.
	DefaultCoinQuantity = 6
	// MaxCoinQuantity caps one denomination in a single print run.
	MaxCoinQuantity = 50
)

// IsCoinDenomination reports whether value is a printable denomination.
func IsCoinDenomination(value int) bool {
	for _, d := range CoinDenominations {
		if d == value {
			return true
		}
	}
	return false
}

// PrintRecord logs one printed batch of a denomination and its serial range.
type PrintRecord struct {
	ID           string    `json:"id"`
	Denomination int       `json:"denomination"`
	BatchNumber  int       `json:"batchNumber"`
	Quantity     int       `json:"quantity"`
	StartNumber  int       `json:"startNumber"`
	EndNumber    int       `json:"endNumber"`
	Date         time.Time `json:"date"`
}

// CoinSerial is a single numbered coin on a printed sheet.
type CoinSerial struct {
	Denomination int
	Number       int
}
