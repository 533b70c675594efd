package repositories

import (
	"testing"
	"time"

	"campurent/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMarkPickedStatusGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := DeliveryTaskRepository{DB: db}
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE delivery_tasks").
		WithArgs(models.TaskStatusPicked, now, int64(1), models.TaskStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.MarkPicked(1, now)
	if err != nil || !ok {
		t.Fatalf("MarkPicked = %v, %v; want true, nil", ok, err)
	}

	// task no longer pending: the guard matches nothing
	mock.ExpectExec("UPDATE delivery_tasks").
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.MarkPicked(1, now)
	if err != nil || ok {
		t.Fatalf("MarkPicked on raced task = %v, %v; want false, nil", ok, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByBookingIDAbsentIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM delivery_tasks").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, found, err := DeliveryTaskRepository{DB: db}.GetByBookingID(99)
	if err != nil {
		t.Fatalf("lookup error: %v", err)
	}
	if found {
		t.Fatalf("found = true for an absent task")
	}
}
