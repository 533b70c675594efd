package services

import (
	"fmt"
	"time"

	"campurent/internal/domain"
	"campurent/internal/domain/models"
	"campurent/internal/metrics"
	"campurent/internal/repositories"
	"campurent/internal/utils"
)

const (
	// OtpTTL is the shared validity window for both handoff codes.
	OtpTTL = 30 * time.Minute

	// StaleTaskTTL is the maximum age before the sweep force-closes a task.
	StaleTaskTTL = 48 * time.Hour
)

// Booking statuses allowed to carry a delivery task.
var eligibleBookingStatuses = map[string]bool{
	"approved":  true,
	"requested": true,
	"completed": true,
}

const (
	VerificationPickup = "pickup"
	VerificationDrop   = "drop"
)

// DeliveryService drives the per-booking handoff state machine: OTP issue,
// verification, admin override, live location and the staleness sweep.
// Settlement on completion goes through the wallet ledger.
type DeliveryService struct {
	TaskRepo    repositories.DeliveryTaskRepository
	BookingRepo repositories.BookingRepository
	Wallet      *WalletService
	Admin       AdminService
}

// CreateTaskResult carries the created (or already existing) task; OTP
// fields are masked, the codes travel out of band.
type CreateTaskResult struct {
	Task          models.DeliveryTask `json:"task"`
	AlreadyExists bool                `json:"already_exists,omitempty"`
}

// CreateTask creates the handoff task for a booking. Idempotent: a second
// call returns the existing task flagged with a warning, never a duplicate.
func (s DeliveryService) CreateTask(bookingID int64, actorUserID string) (CreateTaskResult, error) {
	if bookingID <= 0 {
		return CreateTaskResult{}, domain.ValidationError{Field: "booking_id", Msg: "must be positive"}
	}

	booking, found, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return CreateTaskResult{}, domain.InternalError{Msg: "booking lookup failed", Err: err}
	}
	if !found {
		return CreateTaskResult{}, domain.NotFoundError{Resource: "booking"}
	}
	if !eligibleBookingStatuses[booking.Status] {
		return CreateTaskResult{}, domain.IneligibleStateError{Resource: "booking", Status: booking.Status}
	}
	if !booking.IsParty(actorUserID) {
		return CreateTaskResult{}, domain.UnauthorizedError{Msg: "not a party to this booking"}
	}

	existing, found, err := s.TaskRepo.GetByBookingID(bookingID)
	if err != nil {
		return CreateTaskResult{}, domain.InternalError{Msg: "task lookup failed", Err: err}
	}
	if found {
		existing.MaskOtps()
		return CreateTaskResult{Task: existing, AlreadyExists: true}, nil
	}

	now := utils.NowUTC()
	task := models.DeliveryTask{
		BookingID:        bookingID,
		OwnerID:          booking.OwnerID,
		RenterID:         booking.RenterID,
		PickupOtp:        utils.GenerateOtp(),
		DropOtp:          utils.GenerateOtp(),
		OtpExpiresAt:     now.Add(OtpTTL),
		Status:           models.TaskStatusPending,
		LastStatusUpdate: now,
		CreatedAt:        now,
	}

	id, err := s.TaskRepo.Insert(task)
	if err != nil {
		// unique booking_id: a concurrent create may have won the insert
		if again, ok, lookupErr := s.TaskRepo.GetByBookingID(bookingID); lookupErr == nil && ok {
			again.MaskOtps()
			return CreateTaskResult{Task: again, AlreadyExists: true}, nil
		}
		return CreateTaskResult{}, domain.InternalError{Msg: "task insert failed", Err: err}
	}
	task.ID = id

	utils.LogEvent("", "delivery", "create_task", fmt.Sprintf("booking_id=%d task_id=%d", bookingID, id))
	task.MaskOtps()
	return CreateTaskResult{Task: task}, nil
}

// VerifyPickupOtp moves pending -> picked on a valid code and burns the code.
func (s DeliveryService) VerifyPickupOtp(bookingID int64, otp, actorUserID string) (models.DeliveryTask, error) {
	task, err := s.taskForParty(bookingID, actorUserID)
	if err != nil {
		return models.DeliveryTask{}, err
	}

	if err := s.checkOtp(task.OtpExpiresAt, task.PickupVerified, task.PickupOtp, otp); err != nil {
		metrics.OtpVerificationsTotal.WithLabelValues(VerificationPickup, "failed").Inc()
		return models.DeliveryTask{}, err
	}

	ok, err := s.TaskRepo.MarkPicked(task.ID, utils.NowUTC())
	if err != nil {
		return models.DeliveryTask{}, domain.InternalError{Msg: "task update failed", Err: err}
	}
	if !ok {
		// lost a race against an override or the sweep
		return models.DeliveryTask{}, domain.ConflictError{Resource: "delivery task", Msg: "status changed concurrently"}
	}

	metrics.OtpVerificationsTotal.WithLabelValues(VerificationPickup, "ok").Inc()
	utils.LogEvent("", "delivery", "verify_pickup", fmt.Sprintf("booking_id=%d task_id=%d", bookingID, task.ID))

	task.PickupVerified = true
	task.Status = models.TaskStatusPicked
	task.PickupOtp = ""
	task.MaskOtps()
	return task, nil
}

// VerifyDropOtp moves picked -> completed on a valid code, burns the code
// and settles the rent into the owner's wallet.
func (s DeliveryService) VerifyDropOtp(bookingID int64, otp, actorUserID string) (models.DeliveryTask, error) {
	task, err := s.taskForParty(bookingID, actorUserID)
	if err != nil {
		return models.DeliveryTask{}, err
	}

	if !task.PickupVerified {
		metrics.OtpVerificationsTotal.WithLabelValues(VerificationDrop, "failed").Inc()
		return models.DeliveryTask{}, domain.ErrPickupNotVerified
	}
	if err := s.checkOtp(task.OtpExpiresAt, task.DropVerified, task.DropOtp, otp); err != nil {
		metrics.OtpVerificationsTotal.WithLabelValues(VerificationDrop, "failed").Inc()
		return models.DeliveryTask{}, err
	}

	ok, err := s.TaskRepo.MarkCompleted(task.ID, utils.NowUTC())
	if err != nil {
		return models.DeliveryTask{}, domain.InternalError{Msg: "task update failed", Err: err}
	}
	if !ok {
		return models.DeliveryTask{}, domain.ConflictError{Resource: "delivery task", Msg: "status changed concurrently"}
	}

	metrics.OtpVerificationsTotal.WithLabelValues(VerificationDrop, "ok").Inc()
	utils.LogEvent("", "delivery", "verify_drop", fmt.Sprintf("booking_id=%d task_id=%d", bookingID, task.ID))

	s.settleRent(task)

	task.DropVerified = true
	task.Status = models.TaskStatusCompleted
	task.DropOtp = ""
	task.MaskOtps()
	return task, nil
}

// OverrideVerification lets an admin bypass a failed OTP channel. The
// corresponding code is overwritten with a sentinel and the action is always
// audited and notified. Drop overrides settle exactly like a verified drop.
func (s DeliveryService) OverrideVerification(taskID int64, adminID, kind string) (models.DeliveryTask, error) {
	if kind != VerificationPickup && kind != VerificationDrop {
		return models.DeliveryTask{}, domain.ValidationError{Field: "verification_type", Msg: "must be pickup or drop"}
	}

	task, found, err := s.TaskRepo.GetByID(taskID)
	if err != nil {
		return models.DeliveryTask{}, domain.InternalError{Msg: "task lookup failed", Err: err}
	}
	if !found {
		return models.DeliveryTask{}, domain.NotFoundError{Resource: "delivery task"}
	}

	now := utils.NowUTC()
	switch kind {
	case VerificationPickup:
		if task.PickupVerified {
			return models.DeliveryTask{}, domain.ErrAlreadyVerified
		}
		ok, err := s.TaskRepo.OverridePickup(taskID, now)
		if err != nil {
			return models.DeliveryTask{}, domain.InternalError{Msg: "override failed", Err: err}
		}
		if !ok {
			return models.DeliveryTask{}, domain.ConflictError{Resource: "delivery task", Msg: "status changed concurrently"}
		}
		task.PickupVerified = true
		task.Status = models.TaskStatusPicked
		task.PickupOtp = models.OtpOverride

	case VerificationDrop:
		if !task.PickupVerified {
			return models.DeliveryTask{}, domain.ErrPickupNotVerified
		}
		if task.DropVerified {
			return models.DeliveryTask{}, domain.ErrAlreadyVerified
		}
		ok, err := s.TaskRepo.OverrideDrop(taskID, now)
		if err != nil {
			return models.DeliveryTask{}, domain.InternalError{Msg: "override failed", Err: err}
		}
		if !ok {
			return models.DeliveryTask{}, domain.ConflictError{Resource: "delivery task", Msg: "status changed concurrently"}
		}
		task.DropVerified = true
		task.Status = models.TaskStatusCompleted
		task.DropOtp = models.OtpOverride
		s.settleRent(task)
	}

	s.Admin.LogAndNotify(adminID, kind+"_override", "delivery_tasks", taskID,
		"Manual verification override by admin")
	task.MaskOtps()
	return task, nil
}

// RegenerateOtp issues a fresh pickup code with a fresh expiry window for a
// task whose original code was lost or undelivered. The new code lands in
// the audit details so the admin can relay it out of band.
func (s DeliveryService) RegenerateOtp(taskID int64, adminID string) (string, error) {
	task, found, err := s.TaskRepo.GetByID(taskID)
	if err != nil {
		return "", domain.InternalError{Msg: "task lookup failed", Err: err}
	}
	if !found {
		return "", domain.NotFoundError{Resource: "delivery task"}
	}
	if task.PickupVerified {
		return "", domain.ErrAlreadyVerified
	}

	now := utils.NowUTC()
	otp := utils.GenerateOtp()
	ok, err := s.TaskRepo.ReplacePickupOtp(taskID, otp, now.Add(OtpTTL), now)
	if err != nil {
		return "", domain.InternalError{Msg: "otp update failed", Err: err}
	}
	if !ok {
		return "", domain.ConflictError{Resource: "delivery task", Msg: "pickup verified concurrently"}
	}

	s.Admin.LogAndNotify(adminID, "regenerate_otp", "delivery_tasks", taskID,
		fmt.Sprintf("New OTP: %s", otp))
	return otp, nil
}

// UpdateLiveLocation overwrites the task's position; last writer wins.
func (s DeliveryService) UpdateLiveLocation(taskID int64, lat, lng float64, actorUserID string) error {
	if lat < -90 || lat > 90 {
		return domain.ValidationError{Field: "lat", Msg: "out of range"}
	}
	if lng < -180 || lng > 180 {
		return domain.ValidationError{Field: "lng", Msg: "out of range"}
	}

	task, found, err := s.TaskRepo.GetByID(taskID)
	if err != nil {
		return domain.InternalError{Msg: "task lookup failed", Err: err}
	}
	if !found {
		return domain.NotFoundError{Resource: "delivery task"}
	}
	if !taskParty(task, actorUserID) {
		return domain.UnauthorizedError{Msg: "not a party to this delivery task"}
	}

	if err := s.TaskRepo.UpdateLocation(taskID, lat, lng, utils.NowUTC()); err != nil {
		return domain.InternalError{Msg: "location update failed", Err: err}
	}
	return nil
}

// SweepStale force-closes tasks older than 48h that are not completed and
// writes one audit record per task actually closed. Safe to run repeatedly
// and concurrently with user verifications; a task completed in the
// meantime loses the status guard and is skipped silently.
func (s DeliveryService) SweepStale(now time.Time) (int, error) {
	stale, err := s.TaskRepo.ListStale(now.Add(-StaleTaskTTL))
	if err != nil {
		return 0, domain.InternalError{Msg: "stale scan failed", Err: err}
	}

	closed := 0
	for _, task := range stale {
		ok, err := s.TaskRepo.CompleteStale(task.ID, now)
		if err != nil {
			utils.LogEvent("", "delivery", "sweep",
				fmt.Sprintf("close failed task_id=%d: %v", task.ID, err))
			continue
		}
		if !ok {
			continue
		}
		closed++
		metrics.StaleTasksClosedTotal.Inc()
		s.Admin.LogAction(SystemActor, "auto_close", "delivery_tasks", task.ID, "Auto-closed stale delivery")
	}

	if closed > 0 {
		utils.LogEvent("", "delivery", "sweep", fmt.Sprintf("closed=%d", closed))
	}
	return closed, nil
}

// GetTasksForUser lists every task where the user participates, newest
// first, codes masked.
func (s DeliveryService) GetTasksForUser(userID string) ([]models.DeliveryTask, error) {
	tasks, err := s.TaskRepo.ListByUser(userID)
	if err != nil {
		return nil, domain.InternalError{Msg: "task list failed", Err: err}
	}
	for i := range tasks {
		tasks[i].MaskOtps()
	}
	return tasks, nil
}

// GetTaskByBooking fetches one task, codes masked.
func (s DeliveryService) GetTaskByBooking(bookingID int64) (models.DeliveryTask, error) {
	task, found, err := s.TaskRepo.GetByBookingID(bookingID)
	if err != nil {
		return models.DeliveryTask{}, domain.InternalError{Msg: "task lookup failed", Err: err}
	}
	if !found {
		return models.DeliveryTask{}, domain.NotFoundError{Resource: "delivery task"}
	}
	task.MaskOtps()
	return task, nil
}

// FindNearby snapshots the task set and filters it by great-circle distance.
func (s DeliveryService) FindNearby(lat, lng, radiusKm float64) ([]models.NearbyTask, error) {
	tasks, err := s.TaskRepo.ListAll()
	if err != nil {
		return nil, domain.InternalError{Msg: "task scan failed", Err: err}
	}
	return Nearby(lat, lng, radiusKm, tasks), nil
}

// settleRent credits the owner with the booking's rent amount. The handoff
// completion is the primary operation: a failed credit is logged and
// audited, never rolled back into a verification failure.
func (s DeliveryService) settleRent(task models.DeliveryTask) {
	booking, found, err := s.BookingRepo.GetByID(task.BookingID)
	if err != nil || !found {
		utils.LogEvent("", "delivery", "settle",
			fmt.Sprintf("booking fetch failed booking_id=%d found=%t: %v", task.BookingID, found, err))
		s.Admin.LogAction(SystemActor, "settlement_failed", "delivery_tasks", task.ID, "booking unavailable for settlement")
		return
	}
	if !booking.RentAmount.IsPositive() {
		return
	}

	desc := fmt.Sprintf("Rent settlement for booking #%d", task.BookingID)
	if _, err := s.Wallet.Credit(task.OwnerID, booking.RentAmount, desc); err != nil {
		utils.LogEvent("", "delivery", "settle",
			fmt.Sprintf("credit failed booking_id=%d owner=%s: %v", task.BookingID, task.OwnerID, err))
		s.Admin.LogAction(SystemActor, "settlement_failed", "delivery_tasks", task.ID,
			fmt.Sprintf("rent credit failed: %v", err))
	}
}

func (s DeliveryService) taskForParty(bookingID int64, actorUserID string) (models.DeliveryTask, error) {
	task, found, err := s.TaskRepo.GetByBookingID(bookingID)
	if err != nil {
		return models.DeliveryTask{}, domain.InternalError{Msg: "task lookup failed", Err: err}
	}
	if !found {
		return models.DeliveryTask{}, domain.NotFoundError{Resource: "delivery task"}
	}
	if !taskParty(task, actorUserID) {
		return models.DeliveryTask{}, domain.UnauthorizedError{Msg: "not a party to this delivery task"}
	}
	return task, nil
}

// checkOtp enforces the shared failure order: expiry, repeat verification,
// then code match. A burned (empty) stored code never matches.
func (s DeliveryService) checkOtp(expiresAt time.Time, alreadyVerified bool, stored, presented string) error {
	if utils.NowUTC().After(expiresAt) {
		return domain.ErrOtpExpired
	}
	if alreadyVerified {
		return domain.ErrAlreadyVerified
	}
	if stored == "" || presented != stored {
		return domain.ErrInvalidOtp
	}
	return nil
}

func taskParty(task models.DeliveryTask, userID string) bool {
	return userID != "" && (userID == task.OwnerID || userID == task.RenterID)
}
