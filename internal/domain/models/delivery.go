package models

import "time"

const (
	TaskStatusPending   = "pending"
	TaskStatusPicked    = "picked"
	TaskStatusCompleted = "completed"
)

// OtpMasked replaces stored OTP values on every read path; codes are
// delivered out of band and never echoed back to a client.
const OtpMasked = "SET"

// OtpOverride marks a code consumed by a manual admin override.
const OtpOverride = "ADMIN_OVERRIDE"

// DeliveryTask drives the pickup/drop handoff for exactly one booking.
type DeliveryTask struct {
	ID               int64     `json:"id"`
	BookingID        int64     `json:"booking_id"`
	OwnerID          string    `json:"owner_id"`
	RenterID         string    `json:"renter_id"`
	PickupOtp        string    `json:"pickup_otp,omitempty"`
	DropOtp          string    `json:"drop_otp,omitempty"`
	OtpExpiresAt     time.Time `json:"otp_expires_at"`
	PickupVerified   bool      `json:"pickup_verified"`
	DropVerified     bool      `json:"drop_verified"`
	Status           string    `json:"status"`
	CurrentLat       *float64  `json:"current_lat,omitempty"`
	CurrentLng       *float64  `json:"current_lng,omitempty"`
	LastStatusUpdate time.Time `json:"last_status_update"`
	CreatedAt        time.Time `json:"created_at"`
}

// HasLocation reports whether both coordinates are set; tasks without a full
// position are excluded from proximity queries.
func (t DeliveryTask) HasLocation() bool {
	return t.CurrentLat != nil && t.CurrentLng != nil
}

// MaskOtps hides the stored codes before the task leaves the service layer.
func (t *DeliveryTask) MaskOtps() {
	if t.PickupOtp != "" {
		t.PickupOtp = OtpMasked
	}
	if t.DropOtp != "" {
		t.DropOtp = OtpMasked
	}
}

// NearbyTask pairs a task with its great-circle distance from a query point.
type NearbyTask struct {
	Task       DeliveryTask `json:"task"`
	DistanceKm float64      `json:"distance_km"`
}
