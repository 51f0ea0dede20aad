package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var london = weather.Place{ID: "london", Name: "London"}

func snapshotAt(id string, ts time.Time) weather.Snapshot {
	return weather.Snapshot{
		CycleID:           id,
		Place:             london,
		MeasurementSystem: weather.SystemMetric,
		Timestamp:         ts,
	}
}

func TestMemoryStoreLatestAndRange(t *testing.T) {
	s := NewMemoryStore(10, 0)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		s.SaveSnapshot(snapshotAt(id, base.Add(time.Duration(i)*time.Hour)))
	}

	latest, err := s.GetLatest(london, weather.SystemMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest.CycleID != "c" {
		t.Errorf("expected latest c, got %s", latest.CycleID)
	}

	got, err := s.GetRange(london, weather.SystemMetric, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].CycleID != "a" || got[1].CycleID != "b" {
		t.Errorf("unexpected range: %+v", got)
	}

	if _, err := s.GetRange(london, weather.SystemMetric, base.Add(5*time.Hour), base.Add(6*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty range, got %v", err)
	}
}

func TestMemoryStoreKeysBySystem(t *testing.T) {
	s := NewMemoryStore(0, 0)
	s.SaveSnapshot(snapshotAt("metric", time.Now().UTC()))

	if _, err := s.GetLatest(london, weather.SystemUS); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another system, got %v", err)
	}
	if _, err := s.GetLatest(weather.Place{ID: "paris"}, weather.SystemMetric); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another place, got %v", err)
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		s.SaveSnapshot(snapshotAt(id, base.Add(time.Duration(i)*time.Minute)))
	}

	got, err := s.GetRange(london, weather.SystemMetric, base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].CycleID != "b" {
		t.Errorf("expected b and c to remain, got %+v", got)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveSnapshot(snapshotAt("old", now.Add(-3*time.Hour)))
	s.SaveSnapshot(snapshotAt("older-but-kept", now.Add(-2*time.Hour)))
	if latest, _ := s.GetLatest(london, weather.SystemMetric); latest.CycleID != "older-but-kept" {
		t.Fatalf("newest snapshot must survive age retention, got %s", latest.CycleID)
	}

	s.SaveSnapshot(snapshotAt("fresh", now.Add(-10*time.Minute)))
	got, err := s.GetRange(london, weather.SystemMetric, now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CycleID != "fresh" {
		t.Errorf("expected only fresh to remain, got %+v", got)
	}
}
