package services

import (
	"context"
	"fmt"
	"time"

	"waste-whirl-api/models"

	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

// ForecastService estimates when a bin will next report full, from the
// intervals between its logged collection cycles. With enough cycles it fits
// a line over the interval series to catch trends (a street filling faster
// over time); otherwise it falls back to the mean interval.
type ForecastService struct {
	db *gorm.DB
}

func NewForecastService(db *gorm.DB) *ForecastService {
	return &ForecastService{db: db}
}

type Forecast struct {
	SensorID     string    `json:"sensor_id"`
	NextFullAt   time.Time `json:"next_full_at"`
	CycleCount   int       `json:"cycle_count"`
	MeanCycleSec float64   `json:"mean_cycle_sec"`
}

const minCyclesForRegression = 3

func (s *ForecastService) NextFull(ctx context.Context, sensorID string) (*Forecast, error) {
	var logs []models.SensorLog
	err := s.db.WithContext(ctx).
		Where("sensor_id = ?", sensorID).
		Order("timestamp ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	// Settled rows carry the time the bin was emptied, not filled, so
	// consecutive row timestamps span roughly one empty-to-empty turnover
	// rather than a strict fill-to-fill cycle. The turnover period is the
	// quantity extrapolated here.
	var eventTimes []time.Time
	for _, l := range logs {
		eventTimes = append(eventTimes, l.Timestamp)
	}
	if len(eventTimes) < 2 {
		return nil, fmt.Errorf("%w: not enough history for sensor %s", ErrNotFound, sensorID)
	}

	var xs, ys []float64
	for i := 1; i < len(eventTimes); i++ {
		xs = append(xs, float64(i-1))
		ys = append(ys, eventTimes[i].Sub(eventTimes[i-1]).Seconds())
	}

	mean := stat.Mean(ys, nil)
	nextInterval := mean
	if len(ys) >= minCyclesForRegression {
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		predicted := alpha + beta*float64(len(ys))
		if predicted > 0 {
			nextInterval = predicted
		}
	}

	last := eventTimes[len(eventTimes)-1]
	return &Forecast{
		SensorID:     sensorID,
		NextFullAt:   last.Add(time.Duration(nextInterval * float64(time.Second))),
		CycleCount:   len(ys),
		MeanCycleSec: mean,
	}, nil
}
