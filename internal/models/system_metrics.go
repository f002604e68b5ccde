package models

import "time"

// SystemMetrics is a lightweight summary of process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	StoreOperations          uint64    `json:"storeOperations"`
	StoreErrors              uint64    `json:"storeErrors"`
	AverageStoreOperationMs  float64   `json:"averageStoreOperationMs"`
	Purchases                uint64    `json:"purchases"`
	Refunds                  uint64    `json:"refunds"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
