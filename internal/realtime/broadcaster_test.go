package realtime

import (
	"sync"
	"testing"

	"campurent/internal/repositories"
	"campurent/internal/services"

	"github.com/DATA-DOG/go-sqlmock"
)

type fakeSender struct {
	mu        sync.Mutex
	byUser    map[string][]any
	connected map[string]bool
}

func newFakeSender(users ...string) *fakeSender {
	s := &fakeSender{byUser: map[string][]any{}, connected: map[string]bool{}}
	for _, u := range users {
		s.connected[u] = true
	}
	return s
}

func (s *fakeSender) SendToUser(userID string, message any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected[userID] {
		return false
	}
	s.byUser[userID] = append(s.byUser[userID], message)
	return true
}

func (s *fakeSender) Broadcast(message any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for u := range s.connected {
		s.byUser[u] = append(s.byUser[u], message)
	}
}

func (s *fakeSender) received(userID string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byUser[userID]
}

func newBroadcasterTest(t *testing.T, sender PushSender) (*Broadcaster, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	admin := services.AdminService{
		ActionRepo:       repositories.AdminActionRepository{DB: db},
		NotificationRepo: repositories.NotificationRepository{DB: db},
	}
	return NewBroadcaster(sender, admin), mock, func() { db.Close() }
}

func floatPtr(v float64) *float64 { return &v }

func TestTaskCoordinateChangePushesToBothParties(t *testing.T) {
	sender := newFakeSender("renter-1", "owner-1")
	b, mock, done := newBroadcasterTest(t, sender)
	defer done()

	b.HandleTaskUpdated(ChangeEnvelope[TaskRow]{
		Old: TaskRow{ID: 1, Status: "picked", OwnerID: "owner-1", RenterID: "renter-1"},
		New: TaskRow{
			ID: 1, Status: "picked", OwnerID: "owner-1", RenterID: "renter-1",
			CurrentLat: floatPtr(13.75), CurrentLng: floatPtr(100.5),
		},
	})

	for _, user := range []string{"renter-1", "owner-1"} {
		msgs := sender.received(user)
		if len(msgs) != 1 {
			t.Fatalf("%s received %d messages, want 1", user, len(msgs))
		}
		update, ok := msgs[0].(DeliveryUpdate)
		if !ok {
			t.Fatalf("unexpected message type %T", msgs[0])
		}
		if update.Type != "delivery_update" || update.TaskID != 1 || update.Lat != 13.75 || update.Lng != 100.5 {
			t.Fatalf("unexpected update: %+v", update)
		}
		if update.EventID == "" {
			t.Fatalf("missing event id")
		}
	}
	// status unchanged: no admin writes
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskStatusChangeAlertsAdmins(t *testing.T) {
	sender := newFakeSender("renter-1", "owner-1")
	b, mock, done := newBroadcasterTest(t, sender)
	defer done()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO admin_actions").
		WithArgs(services.SystemActor, "delivery_status_update", "delivery_tasks", int64(1),
			"Status changed to completed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	b.HandleTaskUpdated(ChangeEnvelope[TaskRow]{
		Old: TaskRow{ID: 1, Status: "picked", OwnerID: "owner-1", RenterID: "renter-1"},
		New: TaskRow{ID: 1, Status: "completed", OwnerID: "owner-1", RenterID: "renter-1"},
	})

	// no coordinates: nothing pushed
	if len(sender.received("renter-1")) != 0 || len(sender.received("owner-1")) != 0 {
		t.Fatalf("unexpected pushes on a pure status change")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTaskUnchangedCoordinatesNotPushed(t *testing.T) {
	sender := newFakeSender("renter-1", "owner-1")
	b, mock, done := newBroadcasterTest(t, sender)
	defer done()

	row := TaskRow{
		ID: 1, Status: "picked", OwnerID: "owner-1", RenterID: "renter-1",
		CurrentLat: floatPtr(13.75), CurrentLng: floatPtr(100.5),
	}
	b.HandleTaskUpdated(ChangeEnvelope[TaskRow]{Old: row, New: row})

	if len(sender.received("renter-1")) != 0 {
		t.Fatalf("push sent for an unchanged position")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReportCreatedAlertsAdmins(t *testing.T) {
	b, mock, done := newBroadcasterTest(t, newFakeSender())
	defer done()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO admin_actions").
		WithArgs(services.SystemActor, "new_report", "reports", int64(9),
			"Auto-logged on report submission", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	b.HandleReportCreated(ChangeEnvelope[ReportRow]{
		New: ReportRow{ID: 9, ListingID: 4, IssueType: "damaged_item"},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentIgnoredUnlessSucceeded(t *testing.T) {
	b, mock, done := newBroadcasterTest(t, newFakeSender())
	defer done()

	b.HandlePaymentUpdated(ChangeEnvelope[PaymentRow]{
		New: PaymentRow{ID: 3, UserID: "u1", Amount: "120.00", Status: "pending"},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPaymentSuccessAlertsAdmins(t *testing.T) {
	b, mock, done := newBroadcasterTest(t, newFakeSender())
	defer done()
	mock.MatchExpectationsInOrder(false)

	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO admin_actions").
		WithArgs(services.SystemActor, "payment_success", "payments", int64(3),
			"Payment confirmed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	b.HandlePaymentUpdated(ChangeEnvelope[PaymentRow]{
		New: PaymentRow{ID: 3, UserID: "u1", Amount: "120.00", Status: "succeeded"},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
