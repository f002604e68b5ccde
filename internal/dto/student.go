package dto

import "github.com/noah-isme/starcoin-api/internal/models"

// CreateStudentRequest registers a student, optionally inside a class.
type CreateStudentRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	ClassID    string `json:"classId" validate:"omitempty,max=64"`
	SubgroupID string `json:"subgroupId" validate:"omitempty,max=64"`
}

// UpdateStudentRequest changes the provided fields only. An empty classId
// detaches the student from its class and subgroup.
type UpdateStudentRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	ClassID    *string `json:"classId" validate:"omitempty,max=64"`
	SubgroupID *string `json:"subgroupId" validate:"omitempty,max=64"`
}

// RecordLessonRequest sets attendance and rating for one date.
type RecordLessonRequest struct {
	Attended bool `json:"attended"`
	Stars    int  `json:"stars" validate:"min=0,max=5"`
}

// StudentQuery captures listing filters from the query string.
type StudentQuery struct {
	ClassID    string `form:"classId"`
	SubgroupID string `form:"subgroupId"`
	Archived   bool   `form:"archived"`
}

// Filter converts the query to the model filter.
func (q StudentQuery) Filter() models.StudentFilter {
	return models.StudentFilter{ClassID: q.ClassID, SubgroupID: q.SubgroupID, Archived: q.Archived}
}
