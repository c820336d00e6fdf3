package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
)

// JWTMiddleware validates the bearer token minted by the account directory and
// stores user_id and role on the request context.
func JWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, err := CallerFromRequest(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		c.Set("user_id", caller.ID)
		c.Set("role", string(caller.Role))
		return next(c)
	}
}

// CallerFromRequest parses the Authorization header into an authenticated
// caller. Also used by the websocket endpoint, which accepts the token as a
// query parameter because browsers cannot set headers on websocket dials.
func CallerFromRequest(c echo.Context) (directory.Caller, error) {
	raw := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(raw, "Bearer ") {
		raw = strings.TrimPrefix(raw, "Bearer ")
	} else {
		raw = c.QueryParam("token")
	}
	if raw == "" {
		return directory.Caller{}, errors.New("missing token")
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return directory.Caller{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return directory.Caller{}, errors.New("invalid token claims")
	}
	id, _ := claims["user_id"].(string)
	roleClaim, _ := claims["role"].(string)
	role, err := directory.ParseRole(roleClaim)
	if err != nil || id == "" {
		return directory.Caller{}, errors.New("invalid token claims")
	}
	return directory.Caller{ID: id, Role: role}, nil
}

// Caller rebuilds the authenticated caller from context values set by
// JWTMiddleware.
func Caller(c echo.Context) (directory.Caller, bool) {
	id, _ := c.Get("user_id").(string)
	roleStr, _ := c.Get("role").(string)
	role, err := directory.ParseRole(roleStr)
	if id == "" || err != nil {
		return directory.Caller{}, false
	}
	return directory.Caller{ID: id, Role: role}, true
}
