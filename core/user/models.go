package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorbase/backend/core"
)

// Role is the closed set of identity roles. There is no hierarchy: an admin
// is not implicitly granted teacher permissions or vice versa.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone"`
	Subjects     []string  `json:"subjects,omitempty"` // teacher-only semantics
	IsActive     bool      `json:"isActive"`
	LastLogin    time.Time `json:"lastLogin"` // UTC
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (u User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

// SetPassword hashes pwd and stores the hash. This is the only place a
// password value is ever hashed; callers must not pass an already-hashed
// value.
func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword fails closed: any comparison fault (including a corrupted
// stored hash) reads as a non-match.
func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username  string   `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6"`
	FirstName string   `json:"firstName" validate:"required,max=50"`
	LastName  string   `json:"lastName" validate:"required,max=50"`
	Phone     string   `json:"phone" validate:"required"`
	Subjects  []string `json:"subjects"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Phone = core.CleanString(nu.Phone)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Username, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing
// User. Empty fields keep their current values; the password is re-hashed
// only when a new value is supplied.
type UpdateUser struct {
	Username  string   `json:"username" validate:"omitempty,min=3,max=50,alphanum_"`
	Email     string   `json:"email" validate:"omitempty,email"`
	Password  string   `json:"password" validate:"omitempty,min=6"`
	FirstName string   `json:"firstName" validate:"omitempty,max=50"`
	LastName  string   `json:"lastName" validate:"omitempty,max=50"`
	Phone     string   `json:"phone"`
	Subjects  []string `json:"subjects"`
	IsActive  *bool    `json:"isActive"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate, svc *Service, origUsr User) error {
	uname := core.CleanString(uu.Username, true /* lower */)
	if uname != "" {
		uu.Username = uname
	} else {
		uu.Username = origUsr.Username
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.checkUniqueness(uu.Username, uu.Email, origUsr)
}
