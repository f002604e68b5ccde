package dto

// ClearDataRequest must confirm destructive clears explicitly.
type ClearDataRequest struct {
	Confirm bool `json:"confirm"`
}

// ImportResult reports which collections an import replaced.
type ImportResult struct {
	Replaced []string `json:"replaced"`
}
