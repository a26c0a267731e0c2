package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorbase/backend/core"
)

// Student belongs to at least one batch at creation time; membership may
// span several batches.
type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   []byte    `json:"-"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Grade          string    `json:"grade"`
	BatchIDs       []string  `json:"batchIds"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"` // UTC
	UpdatedAt      time.Time `json:"updatedAt"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

// InBatch reports current membership of the given batch.
func (s Student) InBatch(batchID string) bool {
	for _, id := range s.BatchIDs {
		if id == batchID {
			return true
		}
	}
	return false
}

type NewStudent struct {
	Name           string    `json:"name" validate:"required,max=100"`
	Email          string    `json:"email" validate:"required,email"`
	Password       string    `json:"password" validate:"required,min=6"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Grade          string    `json:"grade" validate:"required"`
	BatchIDs       []string  `json:"batchIds" validate:"required,min=1,dive,uuid4"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Grade = core.CleanString(ns.Grade)
	return validate.Struct(ns)
}
