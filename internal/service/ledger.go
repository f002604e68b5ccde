package service

import "github.com/noah-isme/starcoin-api/internal/models"

// TotalEarned sums stars over attended lessons. Unattended records and
// negative ratings contribute nothing.
func TotalEarned(student models.Student) int {
	total := 0
	for _, lesson := range student.Lessons {
		if lesson.Attended && lesson.Stars > 0 {
			total += lesson.Stars
		}
	}
	return total
}

// Balance is what the student can still spend.
func Balance(student models.Student) int {
	return TotalEarned(student) - student.SpentStars
}

// MaxPossible is five stars per attended lesson.
func MaxPossible(student models.Student) int {
	return models.MaxStarsPerLesson * attendedCount(student)
}

// AverageStars is the mean rating over attended lessons, 0 without any.
func AverageStars(student models.Student) float64 {
	attended := attendedCount(student)
	if attended == 0 {
		return 0
	}
	return float64(TotalEarned(student)) / float64(attended)
}

// Summarize bundles every ledger figure of student.
func Summarize(student models.Student) models.LedgerSummary {
	return models.LedgerSummary{
		StudentID:       student.ID,
		Earned:          TotalEarned(student),
		Spent:           student.SpentStars,
		Balance:         Balance(student),
		MaxPossible:     MaxPossible(student),
		Average:         AverageStars(student),
		AttendedLessons: attendedCount(student),
	}
}

func attendedCount(student models.Student) int {
	n := 0
	for _, lesson := range student.Lessons {
		if lesson.Attended {
			n++
		}
	}
	return n
}
