package services

import (
	"fmt"

	"campurent/internal/domain/models"
	"campurent/internal/repositories"
	"campurent/internal/utils"
)

// SystemActor marks audit records produced by background watchers and the
// staleness sweep rather than a human admin.
const SystemActor = "system"

// AdminService owns the audit trail and the durable admin notifications.
// Both writes are best-effort side effects of the primary operations: a
// failure here is logged, never propagated.
type AdminService struct {
	ActionRepo       repositories.AdminActionRepository
	NotificationRepo repositories.NotificationRepository
}

// LogAction appends one audit record.
func (s AdminService) LogAction(adminID, actionType, targetTable string, targetID int64, details string) {
	err := s.ActionRepo.Insert(models.AdminAction{
		AdminID:     adminID,
		ActionType:  actionType,
		TargetTable: targetTable,
		TargetID:    targetID,
		Details:     details,
		CreatedAt:   utils.NowUTC(),
	})
	if err != nil {
		utils.LogEvent("", "admin", "log_action",
			fmt.Sprintf("audit append failed action=%s target=%s/%d: %v", actionType, targetTable, targetID, err))
	}
}

// NotifyAdmin persists an admin notification row. Push delivery on top of
// this record is handled by the broadcaster; the row is the durable trail.
func (s AdminService) NotifyAdmin(adminID, title, message string) {
	err := s.NotificationRepo.Insert(models.Notification{
		UserID:    adminID,
		Title:     title,
		Message:   message,
		Type:      "system",
		IsRead:    false,
		CreatedAt: utils.NowUTC(),
	})
	if err != nil {
		utils.LogEvent("", "admin", "notify",
			fmt.Sprintf("notification insert failed title=%q: %v", title, err))
	}
}

// LogAndNotify combines the audit record with a notification for important
// admin events.
func (s AdminService) LogAndNotify(adminID, actionType, targetTable string, targetID int64, details string) {
	s.LogAction(adminID, actionType, targetTable, targetID, details)
	s.NotifyAdmin(adminID,
		fmt.Sprintf("Admin Action: %s", actionType),
		fmt.Sprintf("Action on %s (ID: %d): %s", targetTable, targetID, details))
}

// ListActions returns the audit trail, newest first.
func (s AdminService) ListActions() ([]models.AdminAction, error) {
	return s.ActionRepo.List()
}

// ListNotifications returns a user's notification trail, newest first.
func (s AdminService) ListNotifications(userID string) ([]models.Notification, error) {
	return s.NotificationRepo.ListByUser(userID)
}

// MarkNotificationRead flips is_read for one of the user's notifications.
func (s AdminService) MarkNotificationRead(id int64, userID string) (bool, error) {
	return s.NotificationRepo.MarkRead(id, userID)
}
