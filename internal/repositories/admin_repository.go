package repositories

import (
	"database/sql"

	"campurent/internal/domain/models"
)

// AdminActionRepository appends and lists the audit trail. Rows are never
// updated or removed.
type AdminActionRepository struct {
	DB *sql.DB
}

func (r AdminActionRepository) Insert(a models.AdminAction) error {
	_, err := r.DB.Exec(`
		INSERT INTO admin_actions (admin_id, action_type, target_table, target_id, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.AdminID, a.ActionType, a.TargetTable, a.TargetID, a.Details, a.CreatedAt)
	return err
}

func (r AdminActionRepository) List() ([]models.AdminAction, error) {
	rows, err := r.DB.Query(`
		SELECT id,
		       COALESCE(admin_id,''),
		       COALESCE(action_type,''),
		       COALESCE(target_table,''),
		       COALESCE(target_id, 0),
		       COALESCE(details,''),
		       created_at
		FROM admin_actions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AdminAction{}
	for rows.Next() {
		var a models.AdminAction
		if err := rows.Scan(&a.ID, &a.AdminID, &a.ActionType, &a.TargetTable, &a.TargetID, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// NotificationRepository persists the durable side of push messages.
type NotificationRepository struct {
	DB *sql.DB
}

func (r NotificationRepository) Insert(n models.Notification) error {
	_, err := r.DB.Exec(`
		INSERT INTO notifications (user_id, title, message, type, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt)
	return err
}

func (r NotificationRepository) ListByUser(userID string) ([]models.Notification, error) {
	rows, err := r.DB.Query(`
		SELECT id,
		       COALESCE(user_id,''),
		       COALESCE(title,''),
		       COALESCE(message,''),
		       COALESCE(type,''),
		       COALESCE(is_read, 0),
		       created_at
		FROM notifications
		WHERE user_id=?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r NotificationRepository) MarkRead(id int64, userID string) (bool, error) {
	res, err := r.DB.Exec(`UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
