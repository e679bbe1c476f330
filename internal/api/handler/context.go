package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxIdentity extracts the identity injected by the Session middleware and
// performs a fast-fail check before any service call: a non-empty user id
// proves the middleware ran. Handlers behind the auth group should never see
// an empty identity, but a misconfigured route must not reach the services.
func ctxIdentity(c echo.Context) (userID, role string, err error) {
	userID, _ = c.Get("user_id").(string)
	if userID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	role, _ = c.Get("role").(string)
	return userID, role, nil
}
