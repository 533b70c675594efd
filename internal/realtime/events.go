package realtime

import (
	"encoding/json"
	"fmt"
)

// Routing keys on the change-feed exchange, one per watched change class.
const (
	RKTaskUpdated    = "delivery_tasks.updated"
	RKReportCreated  = "reports.created"
	RKPaymentUpdated = "payments.updated"
)

// ChangeEnvelope is the row-change payload published by the datastore
// triggers: the new row plus, for updates, the previous one.
type ChangeEnvelope[T any] struct {
	New T `json:"new"`
	Old T `json:"old"`
}

// TaskRow is the delivery_tasks subset the broadcaster reacts to.
type TaskRow struct {
	ID         int64    `json:"id"`
	Status     string   `json:"status"`
	OwnerID    string   `json:"owner_id"`
	RenterID   string   `json:"renter_id"`
	CurrentLat *float64 `json:"current_lat"`
	CurrentLng *float64 `json:"current_lng"`
}

// ReportRow is the reports subset used for admin alerts.
type ReportRow struct {
	ID        int64  `json:"id"`
	ListingID int64  `json:"listing_id"`
	IssueType string `json:"issue_type"`
}

// PaymentRow is the payments subset used for admin alerts.
type PaymentRow struct {
	ID     int64  `json:"id"`
	UserID string `json:"user_id"`
	Amount string `json:"amount"`
	Status string `json:"status"`
}

// DecodeEnvelope unmarshals one change payload.
func DecodeEnvelope[T any](body []byte) (ChangeEnvelope[T], error) {
	var env ChangeEnvelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return ChangeEnvelope[T]{}, fmt.Errorf("decode change payload: %w", err)
	}
	return env, nil
}
