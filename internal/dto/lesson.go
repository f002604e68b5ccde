package dto

import "github.com/noah-isme/starcoin-api/internal/models"

// CreateLessonsRequest schedules one or more lesson plans.
//
// once uses Date (or every entry of Dates), weekly repeats Date for Weeks
// weeks, custom uses Dates.
type CreateLessonsRequest struct {
	ClassID     string                `json:"classId"`
	SubgroupID  string                `json:"subgroupId"`
	Mode        models.RecurrenceMode `json:"mode" validate:"required,oneof=once weekly custom"`
	Date        string                `json:"date"`
	Dates       []string              `json:"dates"`
	Weeks       int                   `json:"weeks" validate:"omitempty,min=1,max=104"`
	Time        string                `json:"time"`
	Title       string                `json:"title" validate:"omitempty,max=200"`
	Description string                `json:"description" validate:"omitempty,max=5000"`
}

// UpdateLessonRequest edits the mutable fields of a lesson plan.
type UpdateLessonRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Time        *string `json:"time"`
}

// LessonQuery captures lesson listing filters from the query string.
type LessonQuery struct {
	Date       string `form:"date"`
	From       string `form:"from"`
	To         string `form:"to"`
	ClassID    string `form:"classId"`
	SubgroupID string `form:"subgroupId"`
	Archived   bool   `form:"archived"`
}

// Filter converts the query to the model filter.
func (q LessonQuery) Filter() models.LessonFilter {
	return models.LessonFilter{ClassID: q.ClassID, SubgroupID: q.SubgroupID, Archived: q.Archived}
}

// FileLink is a signed, expiring download link for a lesson file.
type FileLink struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}
