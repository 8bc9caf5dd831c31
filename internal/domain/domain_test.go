package domain

import (
	"errors"
	"math"
	"testing"
)

func TestNewPointSetOrdering(t *testing.T) {
	current := Coordinates{Lon: 1, Lat: 2}
	warehouse := Coordinates{Lon: 5, Lat: 6}
	orders := []Order{
		{ID: "b", Coords: Coordinates{Lon: 3, Lat: 3}, Weight: 2},
		{ID: "a", Coords: Coordinates{Lon: 4, Lat: 4}, Weight: 1},
	}

	points := NewPointSet(current, orders, warehouse)

	if len(points) != 4 {
		t.Fatalf("len(points) = %d, want 4", len(points))
	}
	if points[0].Kind != KindCurrentLocation || points[0].Label() != CurrentLocationID {
		t.Fatalf("points[0] = %+v, want current location", points[0])
	}
	if points[3].Kind != KindWarehouse || points[3].Coords != warehouse {
		t.Fatalf("points[3] = %+v, want warehouse", points[3])
	}
	if points[1].Label() != "b" || points[2].Label() != "a" {
		t.Fatalf("orders reordered: %q, %q", points[1].Label(), points[2].Label())
	}
	if points[1].DestinationWeight() != 2 || points[3].DestinationWeight() != 0 {
		t.Fatalf("unexpected destination weights")
	}
}

func TestSanitize(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		if got := Sanitize(v); got != Sentinel {
			t.Fatalf("Sanitize(%v) = %v, want %v", v, got, Sentinel)
		}
	}
	if got := Sanitize(12.5); got != 12.5 {
		t.Fatalf("Sanitize(12.5) = %v", got)
	}
}

func TestEstimateReachable(t *testing.T) {
	if Unavailable().Reachable() {
		t.Fatal("unavailable estimate must not be reachable")
	}
	if (Estimate{Distance: Sentinel, Duration: 5, Available: true}).Reachable() {
		t.Fatal("sentinel distance must not be reachable")
	}
	if !(Estimate{Distance: 10, Duration: 5, Available: true}).Reachable() {
		t.Fatal("finite estimate must be reachable")
	}
}

func TestWeightingNormalize(t *testing.T) {
	w, err := Weighting{Time: 0.2, Distance: 0.6}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(w.Time-0.25) > 1e-12 || math.Abs(w.Distance-0.75) > 1e-12 {
		t.Fatalf("normalized = %+v, want {0.25 0.75}", w)
	}

	for _, bad := range []Weighting{{}, {Time: -1, Distance: 2}, {Time: math.NaN(), Distance: 1}} {
		if _, err := bad.Normalize(); !errors.Is(err, ErrInvalidWeighting) {
			t.Fatalf("Normalize(%+v) err = %v, want ErrInvalidWeighting", bad, err)
		}
	}
}

func TestPairKeyString(t *testing.T) {
	k := PairKey{From: Coordinates{Lon: 106.7, Lat: 10.8}, To: Coordinates{Lon: -0.5, Lat: 51}}
	if got, want := k.String(), "106.7,10.8--0.5,51"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if k.Same() {
		t.Fatal("distinct coordinates reported as same")
	}
}
