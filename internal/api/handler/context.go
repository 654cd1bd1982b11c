package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hotelcontrol/staff-auth/internal/api/middleware"
	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware. A zero
// user id or empty role means the middleware did not run; reject with 401.
func ctxClaims(c echo.Context) (userID int64, role domain.RoleName, err error) {
	userID, _ = c.Get(middleware.UserIDKey).(int64)
	role, _ = c.Get(middleware.RoleKey).(domain.RoleName)
	if userID <= 0 || role == "" {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, role, nil
}
