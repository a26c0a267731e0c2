package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core/user"
)

type authApi struct {
	deps ServerDeps
}

func registerAuthAPI(g *echo.Group, jwt, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := authApi{deps: deps}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/refresh", api.refresh)

	// authed endpoints
	ag.POST("/logout", api.logout, jwt, authn)
	ag.GET("/me", api.me, jwt, authn)
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := authenticate(ctx, data.Email, data.Password, api.deps.UserSvc)
	if err != nil {
		return err
	}
	accessToken, err := GenerateToken(GetUserClaims(usr, api.deps.Conf), api.deps.Conf)
	if err != nil {
		return err
	}
	refreshToken, err := GenerateRefreshToken(usr, api.deps.Conf)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, LoginResponse{
		Message:      "login successful",
		User:         newUserInfo(usr),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// refresh exchanges a valid refresh token for a fresh access token. The
// identity is re-checked against the store: a deactivated or deleted account
// cannot refresh.
func (api *authApi) refresh(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := VerifyRefreshToken(data.RefreshToken, api.deps.Conf)
	if err != nil {
		return err
	}
	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errInvalidToken
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return errInvalidToken
	}

	accessToken, err := GenerateToken(GetUserClaims(usr, api.deps.Conf), api.deps.Conf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, RefreshResponse{AccessToken: accessToken})
}

// logout is stateless: tokens expire on their own, the endpoint only exists
// so clients have a uniform call to drop their session against.
func (api *authApi) logout(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "logout successful"})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type userApi struct {
	deps ServerDeps
}

func registerUserAPI(g *echo.Group, jwt, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{deps: deps}

	ug := g.Group("/users", jwt, authn, requireRoles(user.RoleAdmin))
	ug.POST("/create", api.create)
	ug.GET("/teachers", api.queryTeachers)
	ug.GET("/teachers/:id", api.retrieveTeacher)
	ug.PUT("/teachers/:id", api.updateTeacher)
	ug.DELETE("/teachers/:id", api.destroyTeacher)
}

// create provisions a teacher account; the role is never caller-controlled.
func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.deps.Validate, api.deps.UserSvc); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Create(ctx.Request().Context(), data, user.RoleTeacher)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) queryTeachers(ctx echo.Context) error {
	teachers, err := api.deps.UserSvc.QueryTeachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if len(teachers) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no teachers found")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *userApi) getTeacher(ctx echo.Context) (user.User, error) {
	usr, err := api.deps.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return user.User{}, err
	}
	if !usr.IsTeacher() {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (api *userApi) retrieveTeacher(ctx echo.Context) error {
	usr, err := api.getTeacher(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateTeacher(ctx echo.Context) error {
	orig, err := api.getTeacher(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err = data.Validate(api.deps.Validate, api.deps.UserSvc, orig); err != nil {
		return err
	}

	usr, err := api.deps.UserSvc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroyTeacher(ctx echo.Context) error {
	usr, err := api.getTeacher(ctx)
	if err != nil {
		return err
	}
	if err = api.deps.UserSvc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "teacher deleted successfully"})
}
