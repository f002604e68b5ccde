package dto

// PrizeRequest creates or fully replaces a prize. A null or missing quantity
// means unlimited stock.
type PrizeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Cost        int    `json:"cost" validate:"gt=0"`
	Description string `json:"description" validate:"required,max=500"`
	Emoji       string `json:"emoji" validate:"omitempty,max=16"`
	Quantity    *int   `json:"quantity" validate:"omitempty,min=0,max=2147483647"`
}

// PrizeQuery selects active or archived prizes.
type PrizeQuery struct {
	Archived bool `form:"archived"`
}
