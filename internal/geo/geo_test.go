package geo_test

import (
	"math"
	"testing"

	"github.com/spec-kit/roadside-assist/internal/geo"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	if d := geo.Distance(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	points := [][4]float64{
		{12.9716, 77.5946, 13.0827, 80.2707},
		{0, 0, 45, 90},
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, p := range points {
		ab := geo.Distance(p[0], p[1], p[2], p[3])
		ba := geo.Distance(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// Bengaluru to Chennai, roughly 290 km great-circle.
	d := geo.Distance(12.9716, 77.5946, 13.0827, 80.2707)
	if d < 280 || d > 300 {
		t.Fatalf("Bengaluru-Chennai distance = %v km, want ~290", d)
	}
}

func TestETAMinutesRoundsUp(t *testing.T) {
	tests := []struct {
		km   float64
		want int
	}{
		{0, 0},
		{0.5, 1},   // 1 minute exactly at 30 km/h
		{0.6, 2},   // 1.2 minutes rounds up
		{15, 30},   // half an hour
		{15.1, 31}, // 30.2 minutes rounds up
	}
	for _, tt := range tests {
		if got := geo.ETAMinutes(tt.km); got != tt.want {
			t.Fatalf("ETAMinutes(%v) = %d, want %d", tt.km, got, tt.want)
		}
	}
}

func TestETAMonotonicInDistance(t *testing.T) {
	origin := [2]float64{12.9716, 77.5946}
	near := [2]float64{12.98, 77.60}
	far := [2]float64{13.20, 77.90}

	dNear := geo.Distance(origin[0], origin[1], near[0], near[1])
	dFar := geo.Distance(origin[0], origin[1], far[0], far[1])
	if dNear >= dFar {
		t.Fatalf("fixture broken: near %v >= far %v", dNear, dFar)
	}
	if geo.ETAMinutes(dNear) > geo.ETAMinutes(dFar) {
		t.Fatalf("ETA not monotonic: near %d > far %d", geo.ETAMinutes(dNear), geo.ETAMinutes(dFar))
	}
}

func TestSquaredDelta(t *testing.T) {
	if got := geo.SquaredDelta(1, 2, 4, 6); got != 25 {
		t.Fatalf("SquaredDelta = %v, want 25", got)
	}
	if got := geo.SquaredDelta(10, 10, 10, 10); got != 0 {
		t.Fatalf("SquaredDelta to self = %v, want 0", got)
	}
	// Symmetric by construction.
	if geo.SquaredDelta(1, 2, 3, 4) != geo.SquaredDelta(3, 4, 1, 2) {
		t.Fatal("SquaredDelta not symmetric")
	}
}
