package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindhaven/counseling-system/internal/core/domain"
	"github.com/mindhaven/counseling-system/internal/core/ports"
)

// SessionHandler serves the current-user endpoint backing the session query.
type SessionHandler struct {
	sessions ports.SessionService
}

func NewSessionHandler(sessions ports.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type meResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user,omitempty"`
}

// Me returns the authenticated user's identity, cache-first.
//
// @Summary      Current user
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  meResponse
// @Failure      401   {object}  map[string]string
// @Router       /me [get]
func (h *SessionHandler) Me(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	user, err := h.sessions.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		// any failure reads as "no user": the client treats it like a
		// signed-out session, not a server fault to retry against
		return c.JSON(http.StatusUnauthorized, meResponse{Success: false})
	}

	return c.JSON(http.StatusOK, meResponse{Success: true, User: user})
}
