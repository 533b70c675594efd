package services

import (
	"testing"

	"campurent/internal/domain/models"
)

func locatedTask(id int64, lat, lng float64) models.DeliveryTask {
	return models.DeliveryTask{
		ID:         id,
		PickupOtp:  "123456",
		DropOtp:    "654321",
		Status:     models.TaskStatusPending,
		CurrentLat: &lat,
		CurrentLng: &lng,
	}
}

func TestNearbyIncludesTaskOnRadiusBoundary(t *testing.T) {
	// 0.045 degrees of longitude at the equator is right at the 5 km edge
	tasks := []models.DeliveryTask{locatedTask(1, 0, 0.045)}

	got := Nearby(0, 0, 5, tasks)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].DistanceKm != 5 {
		t.Fatalf("distance = %v, want 5", got[0].DistanceKm)
	}
}

func TestNearbyExcludesTaskOutsideRadius(t *testing.T) {
	tasks := []models.DeliveryTask{locatedTask(1, 0, 0.045)}

	if got := Nearby(0, 0, 1, tasks); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}

func TestNearbySkipsTasksWithoutLocation(t *testing.T) {
	lat := 0.0
	tasks := []models.DeliveryTask{
		{ID: 1},
		{ID: 2, CurrentLat: &lat},
		locatedTask(3, 0, 0.01),
	}

	got := Nearby(0, 0, 5, tasks)
	if len(got) != 1 || got[0].Task.ID != 3 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNearbySortsByDistanceAscending(t *testing.T) {
	tasks := []models.DeliveryTask{
		locatedTask(1, 0, 0.03),
		locatedTask(2, 0, 0.01),
		locatedTask(3, 0, 0.02),
	}

	got := Nearby(0, 0, 5, tasks)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Task.ID != 2 || got[1].Task.ID != 3 || got[2].Task.ID != 1 {
		t.Fatalf("wrong order: %d %d %d", got[0].Task.ID, got[1].Task.ID, got[2].Task.ID)
	}
}

func TestNearbyMasksCodes(t *testing.T) {
	got := Nearby(0, 0, 5, []models.DeliveryTask{locatedTask(1, 0, 0.01)})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Task.PickupOtp != models.OtpMasked || got[0].Task.DropOtp != models.OtpMasked {
		t.Fatalf("codes not masked: %+v", got[0].Task)
	}
}

func TestNearbyDefaultsRadius(t *testing.T) {
	tasks := []models.DeliveryTask{
		locatedTask(1, 0, 0.01),
		locatedTask(2, 0, 0.1), // ~11 km, outside the 5 km default
	}

	got := Nearby(0, 0, 0, tasks)
	if len(got) != 1 || got[0].Task.ID != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// one degree of longitude on the equator is about 111.2 km
	d := haversineKm(0, 0, 0, 1)
	if d < 111.1 || d > 111.3 {
		t.Fatalf("distance = %v, want ~111.2", d)
	}
}
