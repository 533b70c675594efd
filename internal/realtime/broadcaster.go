package realtime

import (
	"fmt"

	"campurent/internal/metrics"
	"campurent/internal/services"
	"campurent/internal/utils"

	"github.com/google/uuid"
)

// PushSender is the capability the broadcaster needs from the connection
// layer. Resolved once at construction, never looked up per event.
type PushSender interface {
	SendToUser(userID string, message any) bool
	Broadcast(message any)
}

// DeliveryUpdate is the message pushed to both booking parties when a task's
// live position changes.
type DeliveryUpdate struct {
	Type    string  `json:"type"`
	EventID string  `json:"event_id"`
	TaskID  int64   `json:"task_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Status  string  `json:"status"`
}

// Broadcaster turns datastore change events into targeted pushes and a
// durable admin audit/notification trail. Pushes are best-effort; the
// notification row is written regardless of who is connected.
type Broadcaster struct {
	Sender PushSender
	Admin  services.AdminService
}

func NewBroadcaster(sender PushSender, admin services.AdminService) *Broadcaster {
	return &Broadcaster{Sender: sender, Admin: admin}
}

// HandleTaskUpdated reacts to a delivery_tasks row update: a status change
// alerts admins and lands in the audit trail; a coordinate change pushes a
// delivery_update to renter and owner.
func (b *Broadcaster) HandleTaskUpdated(env ChangeEnvelope[TaskRow]) {
	metrics.RealtimeEventsTotal.WithLabelValues("delivery_tasks").Inc()
	task := env.New

	if task.Status != "" && task.Status != env.Old.Status {
		if task.Status == "picked" || task.Status == "completed" {
			b.Admin.NotifyAdmin(services.SystemActor,
				fmt.Sprintf("Delivery %s", task.Status),
				fmt.Sprintf("Delivery task #%d marked as %s.", task.ID, task.Status))
			b.Admin.LogAction(services.SystemActor, "delivery_status_update", "delivery_tasks", task.ID,
				fmt.Sprintf("Status changed to %s", task.Status))
		}
	}

	if task.CurrentLat == nil || task.CurrentLng == nil {
		return
	}
	if coordEqual(task.CurrentLat, env.Old.CurrentLat) && coordEqual(task.CurrentLng, env.Old.CurrentLng) {
		return
	}

	update := DeliveryUpdate{
		Type:    "delivery_update",
		EventID: uuid.NewString(),
		TaskID:  task.ID,
		Lat:     *task.CurrentLat,
		Lng:     *task.CurrentLng,
		Status:  task.Status,
	}
	if task.RenterID != "" {
		b.Sender.SendToUser(task.RenterID, update)
	}
	if task.OwnerID != "" {
		b.Sender.SendToUser(task.OwnerID, update)
	}
}

// HandleReportCreated alerts admins about a newly filed report.
func (b *Broadcaster) HandleReportCreated(env ChangeEnvelope[ReportRow]) {
	metrics.RealtimeEventsTotal.WithLabelValues("reports").Inc()
	report := env.New

	b.Admin.NotifyAdmin(services.SystemActor,
		"New Report Filed",
		fmt.Sprintf("Issue type: %s for listing #%d", report.IssueType, report.ListingID))
	b.Admin.LogAction(services.SystemActor, "new_report", "reports", report.ID,
		"Auto-logged on report submission")
}

// HandlePaymentUpdated alerts admins when a payment row reaches the terminal
// success status.
func (b *Broadcaster) HandlePaymentUpdated(env ChangeEnvelope[PaymentRow]) {
	metrics.RealtimeEventsTotal.WithLabelValues("payments").Inc()
	payment := env.New

	if payment.Status != "succeeded" {
		return
	}
	b.Admin.NotifyAdmin(services.SystemActor,
		"Payment Success",
		fmt.Sprintf("User %s paid %s successfully.", payment.UserID, payment.Amount))
	b.Admin.LogAction(services.SystemActor, "payment_success", "payments", payment.ID,
		"Payment confirmed")

	utils.LogEvent("", "realtime", "payment_success", fmt.Sprintf("payment_id=%d", payment.ID))
}

func coordEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
