package controllers

import (
	"net/http"

	"workshop_tool_tracker/app"

	"github.com/gin-gonic/gin"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

func (nc *NotificationController) ListNotifications(c *gin.Context) {
	ns, err := nc.Notifications.List(c.Request.Context())
	if err != nil {
		nc.fail(c, err, "Failed to fetch notifications")
		return
	}
	ok(c, http.StatusOK, "Notifications retrieved successfully", app.H{"notifications": ns})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	if err := nc.Notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		nc.fail(c, err, "Failed to mark notification as read")
		return
	}
	ok(c, http.StatusOK, "Notification marked as read", nil)
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	n, err := nc.Notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		nc.fail(c, err, "Failed to mark notifications as read")
		return
	}
	ok(c, http.StatusOK, "All notifications marked as read", app.H{"count": n})
}
