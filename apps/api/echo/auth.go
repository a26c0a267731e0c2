package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/user"
)

const (
	tokenContextKey  = "userToken"
	userContextKey   = "user"
	refreshTokenType = "refresh"
)

// Claims represents the authorization claims transmitted via an access JWT.
type Claims struct {
	jwt.StandardClaims
	Email string    `json:"email,omitempty"`
	Role  user.Role `json:"role,omitempty"`
}

// RefreshClaims is the trimmed claim set carried by refresh tokens. Refresh
// tokens are only accepted by the refresh endpoint, never as a bearer
// credential.
type RefreshClaims struct {
	jwt.StandardClaims
	TokenType string `json:"typ,omitempty"`
}

func newAppJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.Server.JWTSecret,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(usr user.User, conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Role:  usr.Role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.Server.JWTSecret)
	return ss, errors.Wrap(err, "signing token")
}

// GenerateRefreshToken generates a signed refresh token for the user.
func GenerateRefreshToken(usr user.User, conf *core.Config) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			ExpiresAt: now.Add(conf.Server.JWTRefreshExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		TokenType: refreshTokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.Server.JWTRefreshSecret)
	return ss, errors.Wrap(err, "signing refresh token")
}

// VerifyRefreshToken parses and checks a refresh token string. Any failure,
// expiry, tampering or wrong token type, surfaces as the same generic
// invalid-token condition.
func VerifyRefreshToken(ss string, conf *core.Config) (*RefreshClaims, error) {
	claims := new(RefreshClaims)
	token, err := jwt.ParseWithClaims(ss, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return conf.Server.JWTRefreshSecret, nil
	})
	if err != nil || !token.Valid || claims.TokenType != refreshTokenType {
		return nil, errInvalidToken
	}
	return claims, nil
}

// authenticate checks the credentials and stamps LastLogin on success.
// Unknown identity, wrong password and deactivated account are deliberately
// indistinguishable to the caller.
func authenticate(ctx echo.Context, uname, pwd string, svc *user.Service) (user.User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx.Request().Context(), uname)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errInvalidCredentials
		}
		return user.User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return user.User{}, errInvalidCredentials
	}
	if !usr.IsActive {
		return user.User{}, errInvalidCredentials
	}
	usr, err = svc.SetLastLogin(ctx.Request().Context(), usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(userContextKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

// authnMiddleware resolves the live identity behind the verified token and
// attaches it to the context. A deleted or deactivated account fails even
// with a valid token.
func authnMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Cause(err) == user.ErrNotFound {
					return errInvalidToken
				}
				return errors.Wrap(err, "finding user by ID")
			}
			if !usr.IsActive {
				return errInvalidToken
			}
			ctx.Set(userContextKey, usr)
			return next(ctx)
		}
	}
}
