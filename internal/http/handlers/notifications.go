package handlers

import (
	"net/http"

	"campurent/internal/http/middleware"
	"campurent/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	Admin services.AdminService
}

// GET /api/notifications
func (h NotificationHandler) List(c *gin.Context) {
	notifications, err := h.Admin.ListNotifications(middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// PUT /api/notifications/:id/read
func (h NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updated, err := h.Admin.MarkNotificationRead(id, middleware.CurrentUserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !updated {
		respondError(c, http.StatusNotFound, "not_found", "notification not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
