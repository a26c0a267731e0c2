package batch

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutorbase/backend/core"
)

// Batch is a named group of students taught by exactly one assigned teacher.
type Batch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Grade     string    `json:"grade"`
	Timing    string    `json:"timing"`
	TeacherID string    `json:"teacherId"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

type NewBatch struct {
	Name      string `json:"name" validate:"required,max=50"`
	Subject   string `json:"subject" validate:"required"`
	Grade     string `json:"grade" validate:"required"`
	Timing    string `json:"timing" validate:"required"`
	TeacherID string `json:"teacherId" validate:"required,uuid4"`
}

func (nb *NewBatch) Validate(validate *validator.Validate) error {
	nb.Name = core.CleanString(nb.Name)
	nb.Subject = core.CleanString(nb.Subject)
	nb.Grade = core.CleanString(nb.Grade)
	nb.Timing = core.CleanString(nb.Timing)
	nb.TeacherID = core.CleanString(nb.TeacherID)
	return validate.Struct(nb)
}

// UpdateBatch defines what may be modified on an existing Batch. Empty fields
// keep their current values.
type UpdateBatch struct {
	Name      string `json:"name" validate:"omitempty,max=50"`
	Subject   string `json:"subject"`
	Grade     string `json:"grade"`
	Timing    string `json:"timing"`
	TeacherID string `json:"teacherId" validate:"omitempty,uuid4"`
}

func (ub *UpdateBatch) Validate(validate *validator.Validate) error {
	ub.Name = core.CleanString(ub.Name)
	ub.TeacherID = core.CleanString(ub.TeacherID)
	return validate.Struct(ub)
}

// QueryFilter applies AND on available fields; zero values are skipped.
type QueryFilter struct {
	TeacherID string `query:"teacherId"`
	Subject   string `query:"subject"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

func (f *QueryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 10
	}
}

func (f QueryFilter) Offset() int { return (f.Page - 1) * f.Limit }
