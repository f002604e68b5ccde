package dto

// CreateClassRequest creates a class.
type CreateClassRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateClassRequest changes name and/or color.
type UpdateClassRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// SubgroupRequest creates or renames a subgroup.
type SubgroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ClassQuery selects active or archived classes.
type ClassQuery struct {
	Archived bool `form:"archived"`
}
