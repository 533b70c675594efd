package services

import (
	"math"
	"sort"

	"campurent/internal/domain/models"
)

// DefaultRadiusKm is the proximity query radius when the caller gives none.
const DefaultRadiusKm = 5.0

const earthRadiusKm = 6371

// Nearby filters a task snapshot by great-circle distance from (lat, lng).
// Tasks without both coordinates are excluded. Results are sorted ascending
// by distance. Distances are rounded to 2 decimals for display.
func Nearby(lat, lng, radiusKm float64, tasks []models.DeliveryTask) []models.NearbyTask {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	out := []models.NearbyTask{}
	for _, task := range tasks {
		if !task.HasLocation() {
			continue
		}
		// round before comparing so a task sitting right on the radius is
		// included rather than dropped by float noise
		d := math.Round(haversineKm(lat, lng, *task.CurrentLat, *task.CurrentLng)*100) / 100
		if d > radiusKm {
			continue
		}
		task.MaskOtps()
		out = append(out, models.NearbyTask{
			Task:       task,
			DistanceKm: d,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
