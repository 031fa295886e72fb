package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"waste-whirl-api/models"
)

func TestForecastNeedsHistory(t *testing.T) {
	db := newTestDB(t)
	seedCollection(t, db, 0)
	svc := NewForecastService(db)

	_, err := svc.NextFull(context.Background(), "Bin1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound with no history, got %v", err)
	}
}

func TestForecastMeanWithTwoEvents(t *testing.T) {
	db := newTestDB(t)
	sensorID, _, _ := seedCollection(t, db, 0)
	svc := NewForecastService(db)

	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{base, base.Add(6 * time.Hour)} {
		entry := models.SensorLog{SensorID: sensorID, SensorStatus: i%2 == 0, Timestamp: ts}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	fc, err := svc.NextFull(context.Background(), sensorID)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.CycleCount != 1 {
		t.Errorf("expected 1 cycle, got %d", fc.CycleCount)
	}
	want := base.Add(12 * time.Hour)
	if !fc.NextFullAt.Equal(want) {
		t.Errorf("expected next full at %s, got %s", want, fc.NextFullAt)
	}
	if math.Abs(fc.MeanCycleSec-(6*time.Hour).Seconds()) > 1 {
		t.Errorf("expected mean cycle ~%.0fs, got %.2f", (6 * time.Hour).Seconds(), fc.MeanCycleSec)
	}
}

func TestForecastRegressionFollowsTrend(t *testing.T) {
	db := newTestDB(t)
	sensorID, _, _ := seedCollection(t, db, 0)
	svc := NewForecastService(db)

	// Intervals shrink by an hour each cycle: 8h, 7h, 6h, 5h. A mean
	// forecast would predict 6.5h; the fitted line should predict 4h.
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ts := base
	times := []time.Time{ts}
	for _, gap := range []time.Duration{8 * time.Hour, 7 * time.Hour, 6 * time.Hour, 5 * time.Hour} {
		ts = ts.Add(gap)
		times = append(times, ts)
	}
	for _, when := range times {
		entry := models.SensorLog{SensorID: sensorID, SensorStatus: true, Timestamp: when}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	fc, err := svc.NextFull(context.Background(), sensorID)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.CycleCount != 4 {
		t.Errorf("expected 4 cycles, got %d", fc.CycleCount)
	}

	want := times[len(times)-1].Add(4 * time.Hour)
	if diff := fc.NextFullAt.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expected next full near %s, got %s", want, fc.NextFullAt)
	}
}

func TestForecastIgnoresOtherSensors(t *testing.T) {
	db := newTestDB(t)
	sensorID, _, _ := seedCollection(t, db, 0)
	svc := NewForecastService(db)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	noise := models.SensorLog{SensorID: "OtherBin", SensorStatus: true, Timestamp: base}
	if err := db.Create(&noise).Error; err != nil {
		t.Fatalf("seed noise log: %v", err)
	}
	for _, when := range []time.Time{base, base.Add(3 * time.Hour)} {
		entry := models.SensorLog{SensorID: sensorID, SensorStatus: true, Timestamp: when}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("seed log: %v", err)
		}
	}

	fc, err := svc.NextFull(context.Background(), sensorID)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.CycleCount != 1 {
		t.Errorf("expected 1 cycle for %s, got %d", sensorID, fc.CycleCount)
	}
}
