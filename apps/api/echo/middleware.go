package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tutorbase/backend/core/user"
)

// requireRoles gates a route on the context identity's role. The 403 payload
// names the required roles and the caller's actual role.
func requireRoles(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if usr.Role == role {
					return next(ctx)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, echo.Map{
				"error":    "access denied: insufficient permissions",
				"required": roles,
				"current":  usr.Role,
			})
		}
	}
}
