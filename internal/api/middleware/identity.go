package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	// CallerHeader carries the opaque principal of the caller.
	CallerHeader = "X-Caller-ID"

	callerContextKey = "caller"
)

// CallerIdentity extracts the caller principal from the request and stashes
// it in the echo context. Mutating handlers require it; reads work without.
func CallerIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if principal := c.Request().Header.Get(CallerHeader); principal != "" {
				c.Set(callerContextKey, principal)
			}
			return next(c)
		}
	}
}

// Caller returns the request principal, or "" when the header was absent.
func Caller(c echo.Context) string {
	principal, _ := c.Get(callerContextKey).(string)
	return principal
}

// RequireCaller guards mutating routes.
func RequireCaller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if Caller(c) == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"err": "caller identity required: set the " + CallerHeader + " header",
			})
		}
		return next(c)
	}
}
