package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// UserInfo is the trimmed identity payload returned on login and /auth/me.
	UserInfo struct {
		ID       string    `json:"id"`
		Username string    `json:"username"`
		Email    string    `json:"email"`
		FullName string    `json:"fullName"`
		Role     user.Role `json:"role"`
	}

	LoginResponse struct {
		Message      string   `json:"message"`
		User         UserInfo `json:"user"`
		AccessToken  string   `json:"accessToken"`
		RefreshToken string   `json:"refreshToken"`
	}

	RefreshRequest struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	RefreshResponse struct {
		AccessToken string `json:"accessToken"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}

	// PageResponse wraps a paginated listing with its unpaginated total.
	PageResponse struct {
		Data  interface{} `json:"data"`
		Total int         `json:"total"`
		Page  int         `json:"page"`
		Limit int         `json:"limit"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

func (r *RefreshRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

func newUserInfo(usr user.User) UserInfo {
	return UserInfo{
		ID:       usr.ID,
		Username: usr.Username,
		Email:    usr.Email,
		FullName: usr.FullName(),
		Role:     usr.Role,
	}
}
