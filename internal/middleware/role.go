package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated caller holds one of the given
// roles. Roles correspond to the values carried in the JWT "role" claim and
// must already have been placed in the context by JWTAuth. Callers with a
// missing or disallowed role receive 403 Forbidden.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            role, ok := c.Get("role").(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
