package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mindhaven/counseling-system/internal/realtime"
)

// NotificationHandler serves the in-memory notification feed.
type NotificationHandler struct {
	center *realtime.NotificationCenter
}

func NewNotificationHandler(center *realtime.NotificationCenter) *NotificationHandler {
	return &NotificationHandler{center: center}
}

// List returns the caller's notifications, newest first.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200   {array}   domain.Notification
// @Failure      401   {object}  map[string]string
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.center.List(userID))
}

// MarkRead flags one notification as read.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "Notification ID"
// @Success      204
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if !h.center.MarkRead(userID, c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}
