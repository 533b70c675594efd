package repositories

import (
	"database/sql"
	"errors"
	"time"

	"campurent/internal/domain/models"
)

type DeliveryTaskRepository struct {
	DB *sql.DB
}

const deliveryTaskColumns = `
		id,
		COALESCE(booking_id, 0),
		COALESCE(owner_id, ''),
		COALESCE(renter_id, ''),
		COALESCE(pickup_otp, ''),
		COALESCE(drop_otp, ''),
		otp_expires_at,
		COALESCE(pickup_verified, 0),
		COALESCE(drop_verified, 0),
		COALESCE(status, ''),
		current_lat,
		current_lng,
		last_status_update,
		created_at`

func scanDeliveryTask(row interface{ Scan(...any) error }) (models.DeliveryTask, error) {
	var t models.DeliveryTask
	err := row.Scan(
		&t.ID,
		&t.BookingID,
		&t.OwnerID,
		&t.RenterID,
		&t.PickupOtp,
		&t.DropOtp,
		&t.OtpExpiresAt,
		&t.PickupVerified,
		&t.DropVerified,
		&t.Status,
		&t.CurrentLat,
		&t.CurrentLng,
		&t.LastStatusUpdate,
		&t.CreatedAt,
	)
	return t, err
}

func (r DeliveryTaskRepository) GetByBookingID(bookingID int64) (models.DeliveryTask, bool, error) {
	t, err := scanDeliveryTask(r.DB.QueryRow(
		`SELECT `+deliveryTaskColumns+` FROM delivery_tasks WHERE booking_id=? LIMIT 1`, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeliveryTask{}, false, nil
		}
		return models.DeliveryTask{}, false, err
	}
	return t, true, nil
}

func (r DeliveryTaskRepository) GetByID(taskID int64) (models.DeliveryTask, bool, error) {
	t, err := scanDeliveryTask(r.DB.QueryRow(
		`SELECT `+deliveryTaskColumns+` FROM delivery_tasks WHERE id=? LIMIT 1`, taskID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeliveryTask{}, false, nil
		}
		return models.DeliveryTask{}, false, err
	}
	return t, true, nil
}

func (r DeliveryTaskRepository) Insert(t models.DeliveryTask) (int64, error) {
	res, err := r.DB.Exec(`
		INSERT INTO delivery_tasks
			(booking_id, owner_id, renter_id, pickup_otp, drop_otp, otp_expires_at,
			 pickup_verified, drop_verified, status, last_status_update, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.BookingID, t.OwnerID, t.RenterID, t.PickupOtp, t.DropOtp, t.OtpExpiresAt,
		t.PickupVerified, t.DropVerified, t.Status, t.LastStatusUpdate, t.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// MarkPicked burns the pickup code and moves pending -> picked. The status
// guard makes a race with an override or the sweep lose cleanly.
func (r DeliveryTaskRepository) MarkPicked(taskID int64, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET pickup_verified=1, status=?, pickup_otp='', last_status_update=?
		WHERE id=? AND status=? AND pickup_verified=0`,
		models.TaskStatusPicked, now, taskID, models.TaskStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkCompleted burns the drop code and moves picked -> completed.
func (r DeliveryTaskRepository) MarkCompleted(taskID int64, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET drop_verified=1, status=?, drop_otp='', last_status_update=?
		WHERE id=? AND status=? AND drop_verified=0`,
		models.TaskStatusCompleted, now, taskID, models.TaskStatusPicked)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// OverridePickup bypasses the OTP check, leaving the sentinel in place of the
// burned code.
func (r DeliveryTaskRepository) OverridePickup(taskID int64, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET pickup_verified=1, status=?, pickup_otp=?, last_status_update=?
		WHERE id=? AND status=? AND pickup_verified=0`,
		models.TaskStatusPicked, models.OtpOverride, now, taskID, models.TaskStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r DeliveryTaskRepository) OverrideDrop(taskID int64, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET drop_verified=1, status=?, drop_otp=?, last_status_update=?
		WHERE id=? AND status=? AND drop_verified=0`,
		models.TaskStatusCompleted, models.OtpOverride, now, taskID, models.TaskStatusPicked)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ReplacePickupOtp issues a fresh pickup code and a fresh expiry window.
func (r DeliveryTaskRepository) ReplacePickupOtp(taskID int64, otp string, expiresAt, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET pickup_otp=?, otp_expires_at=?, last_status_update=?
		WHERE id=? AND pickup_verified=0`,
		otp, expiresAt, now, taskID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// UpdateLocation overwrites the live position unconditionally; last writer
// wins, no history retained.
func (r DeliveryTaskRepository) UpdateLocation(taskID int64, lat, lng float64, now time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET current_lat=?, current_lng=?, last_status_update=?
		WHERE id=?`,
		lat, lng, now, taskID)
	return err
}

// ListStale returns tasks created before the cutoff that are not completed.
func (r DeliveryTaskRepository) ListStale(cutoff time.Time) ([]models.DeliveryTask, error) {
	rows, err := r.DB.Query(
		`SELECT `+deliveryTaskColumns+` FROM delivery_tasks WHERE created_at < ? AND status <> ?`,
		cutoff, models.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeliveryTasks(rows)
}

// CompleteStale force-closes one stale task; a task already completed by a
// user action in the meantime is skipped (zero rows matched).
func (r DeliveryTaskRepository) CompleteStale(taskID int64, now time.Time) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE delivery_tasks
		SET status=?, last_status_update=?
		WHERE id=? AND status <> ?`,
		models.TaskStatusCompleted, now, taskID, models.TaskStatusCompleted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// ListByUser returns every task where the user is owner or renter, newest
// first.
func (r DeliveryTaskRepository) ListByUser(userID string) ([]models.DeliveryTask, error) {
	rows, err := r.DB.Query(
		`SELECT `+deliveryTaskColumns+` FROM delivery_tasks WHERE owner_id=? OR renter_id=? ORDER BY created_at DESC`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeliveryTasks(rows)
}

// ListAll snapshots the whole task set for proximity queries. Volume is
// bounded by active deliveries, so a full scan is fine.
func (r DeliveryTaskRepository) ListAll() ([]models.DeliveryTask, error) {
	rows, err := r.DB.Query(`SELECT ` + deliveryTaskColumns + ` FROM delivery_tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDeliveryTasks(rows)
}

func collectDeliveryTasks(rows *sql.Rows) ([]models.DeliveryTask, error) {
	out := []models.DeliveryTask{}
	for rows.Next() {
		t, err := scanDeliveryTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
