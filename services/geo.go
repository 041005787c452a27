package services

import (
	"math"
	"sort"

	"pod-tracker-api/models"
)

const earthRadiusKm = 6371.0

// PodDistance pairs a pod with its great-circle distance from a query origin.
type PodDistance struct {
	models.Pod
	DistanceKm float64 `json:"distance_km"`
}

// Haversine returns the great-circle distance in kilometers between two
// WGS-84 coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Nearby filters pods to those within radiusKm of the origin and returns them
// sorted ascending by distance. The sort is stable, so ties keep the input
// order. Pure function: the input slice is not modified.
func Nearby(pods []models.Pod, lat, lng, radiusKm float64) []PodDistance {
	result := make([]PodDistance, 0, len(pods))
	for _, pod := range pods {
		d := Haversine(lat, lng, pod.Lat, pod.Lng)
		if d <= radiusKm {
			result = append(result, PodDistance{Pod: pod, DistanceKm: d})
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})
	return result
}
