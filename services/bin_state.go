package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"waste-whirl-api/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	transitionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wastewhirl_bin_transitions_applied_total",
		Help: "Total number of applied bin status transitions, by direction.",
	}, []string{"direction"})
	transitionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wastewhirl_bin_transitions_rejected_total",
		Help: "Total number of rejected bin status transitions.",
	})
)

// BinStateService owns the EMPTY⇄FULL transition logic and the RFID attach
// sub-protocol. Transitions for one sensor are serialized through a keyed
// mutex on top of the database transaction, so two concurrent bin-full
// signals for the same sensor cannot both open a collection.
type BinStateService struct {
	db         *gorm.DB
	settlement *SettlementService
	notifier   Notifier
	cache      *CacheService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBinStateService(db *gorm.DB, settlement *SettlementService, notifier Notifier, cache *CacheService) *BinStateService {
	return &BinStateService{
		db:         db,
		settlement: settlement,
		notifier:   notifier,
		cache:      cache,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *BinStateService) sensorLock(sensorID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sensorID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sensorID] = l
	}
	return l
}

// UpdateStatus applies a status signal from the hardware. Redundant signals
// (requesting the state the sensor is already in) are rejected rather than
// ignored, so a retried bin-full cannot slip past the RFID precondition.
func (s *BinStateService) UpdateStatus(ctx context.Context, sensorID string, status bool) (*models.SensorLog, *SettlementResult, error) {
	l := s.sensorLock(sensorID)
	l.Lock()
	defer l.Unlock()

	var entry *models.SensorLog
	var result *SettlementResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sensor models.Sensor
		if err := tx.Where("sensor_id = ?", sensorID).First(&sensor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sensor %s", ErrNotFound, sensorID)
			}
			return err
		}

		if status {
			var err error
			entry, err = s.markFull(tx, &sensor)
			return err
		}
		var err error
		entry, result, err = s.markEmpty(tx, &sensor)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrPrecondition) || errors.Is(err, ErrNotFound) {
			transitionsRejected.Inc()
		}
		return nil, nil, err
	}

	s.afterTransition(ctx, sensorID, status, result)
	return entry, result, nil
}

func (s *BinStateService) markFull(tx *gorm.DB, sensor *models.Sensor) (*models.SensorLog, error) {
	if sensor.SensorStatus {
		return nil, fmt.Errorf("%w: sensor %s already reported full", ErrConflict, sensor.SensorID)
	}

	// A lingering open entry means a previous collection never resolved;
	// starting a second one would break the one-open-event invariant.
	var open int64
	if err := tx.Model(&models.SensorLog{}).
		Where("sensor_id = ? AND sensor_status = ? AND rfid IS NULL", sensor.SensorID, true).
		Count(&open).Error; err != nil {
		return nil, err
	}
	if open > 0 {
		return nil, fmt.Errorf("%w: collection already open for sensor %s", ErrConflict, sensor.SensorID)
	}

	entry := models.SensorLog{
		SensorID:     sensor.SensorID,
		SensorStatus: true,
		Timestamp:    time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}

	sensor.SensorStatus = true
	if err := tx.Save(sensor).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *BinStateService) markEmpty(tx *gorm.DB, sensor *models.Sensor) (*models.SensorLog, *SettlementResult, error) {
	if !sensor.SensorStatus {
		return nil, nil, fmt.Errorf("%w: sensor %s already reported empty", ErrConflict, sensor.SensorID)
	}

	var entry models.SensorLog
	err := tx.Where("sensor_id = ? AND sensor_status = ?", sensor.SensorID, true).
		Order("timestamp DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("%w: RFID not scanned for current active log", ErrPrecondition)
	}
	if err != nil {
		return nil, nil, err
	}
	if entry.RFID == nil {
		return nil, nil, fmt.Errorf("%w: RFID not scanned for current active log", ErrPrecondition)
	}

	entry.SensorStatus = false
	entry.Timestamp = time.Now().UTC()
	if err := tx.Save(&entry).Error; err != nil {
		return nil, nil, err
	}

	sensor.SensorStatus = false
	if err := tx.Save(sensor).Error; err != nil {
		return nil, nil, err
	}

	result, err := s.settlement.Settle(tx, sensor, &entry)
	if err != nil {
		return nil, nil, err
	}
	return &entry, result, nil
}

// AttachRFID binds a scanned tag to the open log entry for the sensor. The
// one-open-event invariant makes the target entry unambiguous.
func (s *BinStateService) AttachRFID(ctx context.Context, sensorID, rfid string) (*models.SensorLog, error) {
	l := s.sensorLock(sensorID)
	l.Lock()
	defer l.Unlock()

	var entry models.SensorLog

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var picker models.RagpickerDetails
		err := tx.Where("rfid = ?", rfid).First(&picker).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: RFID %s not registered", ErrNotFound, rfid)
		}
		if err != nil {
			return err
		}

		err = tx.Where("sensor_id = ? AND sensor_status = ? AND rfid IS NULL", sensorID, true).
			Order("timestamp DESC, id DESC").
			First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no active log entry for sensor %s", ErrNotFound, sensorID)
		}
		if err != nil {
			return err
		}

		entry.RFID = &rfid
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("rfid attached: sensor=%s rfid=%s log=%d", sensorID, rfid, entry.ID)
	return &entry, nil
}

// afterTransition runs the fire-and-forget side effects once the transition
// is durable. Failures here never surface to the caller.
func (s *BinStateService) afterTransition(ctx context.Context, sensorID string, status bool, result *SettlementResult) {
	if status {
		transitionsApplied.WithLabelValues("full").Inc()
		if !s.notifier.Send(fmt.Sprintf("Bin %s is full and ready for collection.", sensorID)) {
			log.Printf("bin-full notification failed for sensor=%s", sensorID)
		}
	} else {
		transitionsApplied.WithLabelValues("empty").Inc()
		if result != nil && result.Paid {
			msg := fmt.Sprintf("Payout of %.0f tokens received for emptying bin %s. New balance: %.0f.",
				result.Amount, sensorID, result.NewBalance)
			if !s.notifier.Send(msg) {
				log.Printf("payout notification failed for ragpicker=%s", result.RagpickerClerkID)
			}
		}
	}

	if s.cache != nil {
		payload := map[string]interface{}{
			"sensor_id": sensorID,
			"status":    status,
			"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		}
		if err := s.cache.Publish(ctx, BinChannel, payload); err != nil {
			log.Printf("bin status publish failed for sensor=%s: %v", sensorID, err)
		}
	}
}
