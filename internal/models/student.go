package models

import "time"

// MaxStarsPerLesson is the highest rating a single lesson can earn.
const MaxStarsPerLesson = 5

// Student is a learner with a per-date lesson ledger and purchase history.
type Student struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	ClassID         string                 `json:"classId"`
	SubgroupID      string                 `json:"subgroupId"`
	Lessons         []LessonRecord         `json:"lessons"`
	SpentStars      int                    `json:"spentStars,omitempty"`
	PurchaseHistory []PurchaseHistoryEntry `json:"purchaseHistory,omitempty"`
}

// LessonRecord is the attendance and rating of one student on one date.
type LessonRecord struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Stars    int    `json:"stars"`
	Attended bool   `json:"attended"`
}

// PurchaseHistoryEntry snapshots the prize name and cost at purchase time.
type PurchaseHistoryEntry struct {
	ID        string    `json:"id"`
	PrizeID   string    `json:"prizeId"`
	PrizeName string    `json:"prizeName"`
	Cost      int       `json:"cost"`
	Date      time.Time `json:"date"`
	Refunded  bool      `json:"refunded,omitempty"`
}

// LessonIndex returns the position of the record for date or -1.
func (s *Student) LessonIndex(date string) int {
	for i := range s.Lessons {
		if s.Lessons[i].Date == date {
			return i
		}
	}
	return -1
}

// PurchaseIndex returns the position of the purchase with id or -1.
func (s *Student) PurchaseIndex(id string) int {
	for i := range s.PurchaseHistory {
		if s.PurchaseHistory[i].ID == id {
			return i
		}
	}
	return -1
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	ClassID    string
	SubgroupID string
	// Archived selects students of archived classes instead of active ones.
	Archived bool
}

// LedgerSummary is the derived balance view of a student.
type LedgerSummary struct {
	StudentID       string  `json:"studentId"`
	Earned          int     `json:"earned"`
	Spent           int     `json:"spent"`
	Balance         int     `json:"balance"`
	MaxPossible     int     `json:"maxPossible"`
	Average         float64 `json:"average"`
	AttendedLessons int     `json:"attendedLessons"`
}

// StudentWithLedger pairs a student with its ledger summary for listings.
type StudentWithLedger struct {
	Student
	Ledger LedgerSummary `json:"ledger"`
}

// ClassStats aggregates ledgers over a filtered set of students.
type ClassStats struct {
	Students       int      `json:"students"`
	AverageStars   float64  `json:"averageStars"`
	TotalStars     int      `json:"totalStars"`
	TotalMax       int      `json:"totalMax"`
	AbsoluteMax    int      `json:"absoluteMax"`
	LessonDates    []string `json:"lessonDates"`
	ScheduledCount int      `json:"scheduledLessons"`
}
