package models

import "testing"

func TestNewGeoPointStoresLngFirst(t *testing.T) {
	p := NewGeoPoint(28.61, 77.20, "New Delhi")
	if p.Type != "Point" {
		t.Fatalf("type = %q, want Point", p.Type)
	}
	if len(p.Coordinates) != 2 {
		t.Fatalf("coordinates length = %d", len(p.Coordinates))
	}
	if p.Coordinates[0] != 77.20 {
		t.Errorf("coordinates[0] = %v, want longitude 77.20", p.Coordinates[0])
	}
	if p.Coordinates[1] != 28.61 {
		t.Errorf("coordinates[1] = %v, want latitude 28.61", p.Coordinates[1])
	}
	if p.Lat() != 28.61 || p.Lng() != 77.20 {
		t.Errorf("accessors returned lat=%v lng=%v", p.Lat(), p.Lng())
	}
}

func TestGeoPointAccessorsOnEmptyPoint(t *testing.T) {
	var p GeoPoint
	if p.Lat() != 0 || p.Lng() != 0 {
		t.Error("empty point should read as origin")
	}
}

func TestPickupTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{PickupStatusScheduled, PickupStatusArriving, true},
		{PickupStatusScheduled, PickupStatusCompleted, true},
		{PickupStatusScheduled, PickupStatusCancelled, true},
		{PickupStatusArriving, PickupStatusCompleted, true},
		{PickupStatusArriving, PickupStatusScheduled, false},
		{PickupStatusCompleted, PickupStatusArriving, false},
		{PickupStatusCompleted, PickupStatusCancelled, false},
		{PickupStatusCancelled, PickupStatusScheduled, false},
		{"bogus", PickupStatusArriving, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
