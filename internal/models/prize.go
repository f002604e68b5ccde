package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// maxQuantity bounds stored stock counts so they fit an int on every platform.
const maxQuantity = math.MaxInt32

// Quantity is the stock of a prize: either unlimited or a finite count.
// The zero value is Unlimited.
type Quantity struct {
	limited bool
	n       int
}

// Unlimited returns a quantity that never runs out.
func Unlimited() Quantity { return Quantity{} }

// Limited returns a finite quantity; negative counts clamp to zero.
func Limited(n int) Quantity {
	if n < 0 {
		n = 0
	}
	return Quantity{limited: true, n: n}
}

// IsLimited reports whether the quantity is finite.
func (q Quantity) IsLimited() bool { return q.limited }

// Count returns the finite count and true, or 0 and false when unlimited.
func (q Quantity) Count() (int, bool) { return q.n, q.limited }

// Exhausted reports whether a limited quantity reached zero.
func (q Quantity) Exhausted() bool { return q.limited && q.n == 0 }

// Add shifts a limited quantity by delta, never below zero. Unlimited
// quantities are returned unchanged.
func (q Quantity) Add(delta int) Quantity {
	if !q.limited {
		return q
	}
	return Limited(q.n + delta)
}

// IsZero lets `omitzero` drop unlimited quantities from JSON.
func (q Quantity) IsZero() bool { return !q.limited }

// Ptr converts the quantity to the nullable form used by request payloads.
func (q Quantity) Ptr() *int {
	if !q.limited {
		return nil
	}
	n := q.n
	return &n
}

// QuantityFromPtr is the inverse of Ptr.
func QuantityFromPtr(n *int) Quantity {
	if n == nil {
		return Unlimited()
	}
	return Limited(*n)
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.limited {
		return []byte("null"), nil
	}
	return json.Marshal(q.n)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*q = Unlimited()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("quantity %s is not an integer", data)
	}
	if math.Abs(f) > maxQuantity {
		return fmt.Errorf("quantity %s is out of range", data)
	}
	*q = Limited(int(f))
	return nil
}

// Prize is a catalog entry students can redeem stars for.
type Prize struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Cost        int      `json:"cost"`
	Description string   `json:"description"`
	Emoji       string   `json:"emoji"`
	Quantity    Quantity `json:"quantity,omitzero"`
	Archived    bool     `json:"archived,omitempty"`
}

// SyncArchived re-derives the archived flag of a limited prize from its
// stock. Unlimited prizes keep their manual flag.
func (p *Prize) SyncArchived() {
	if p.Quantity.IsLimited() {
		p.Archived = p.Quantity.Exhausted()
	}
}

// DefaultPrizeEmoji is used when a prize is created without an icon.
const DefaultPrizeEmoji = "🎁"

// DefaultPrizes is the built-in catalog served when none is stored.
func DefaultPrizes() []Prize {
	return []Prize{
		{ID: "1", Name: "Sticker", Cost: 10, Description: "A shiny hero sticker", Emoji: "🎨"},
		{ID: "2", Name: "Candy", Cost: 15, Description: "A tasty candy", Emoji: "🍬"},
		{ID: "3", Name: "Bookmark", Cost: 25, Description: "A bookmark for books", Emoji: "🔖"},
		{ID: "4", Name: "Pencil", Cost: 30, Description: "A colored pencil", Emoji: "✏️"},
		{ID: "5", Name: "Notebook", Cost: 50, Description: "A small notebook", Emoji: "📓"},
		{ID: "6", Name: "Toy", Cost: 100, Description: "A small toy", Emoji: "🎁"},
	}
}
