package services

import (
	"sync"
	"testing"

	"waste-whirl-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database per test. A single connection
// keeps every query on the same in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{}, &models.UserDetails{}, &models.CustomerDetails{},
		&models.RagpickerDetails{}, &models.Balance{}, &models.CompanyBalance{},
		&models.Review{}, &models.Request{}, &models.RagpickerApplication{},
		&models.Sensor{}, &models.SensorLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedCollection sets up a company, its sensor and a ragpicker with a bound
// RFID, the fixture most transition tests start from.
func seedCollection(t *testing.T, db *gorm.DB, companyBalance float64) (sensorID, rfid, pickerID string) {
	t.Helper()

	company := models.CompanyBalance{CompanyName: "EcoCollect", CompanyPassword: "x", Balance: companyBalance}
	if err := db.Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	sensor := models.Sensor{SensorID: "Bin1", SensorName: "Main St bin", Location: "Main St", CompanyID: &company.ID}
	if err := db.Create(&sensor).Error; err != nil {
		t.Fatalf("seed sensor: %v", err)
	}

	tag := "RFID-123"
	picker := models.RagpickerDetails{ClerkID: "picker_1", RFID: &tag}
	if err := db.Create(&picker).Error; err != nil {
		t.Fatalf("seed ragpicker: %v", err)
	}

	return sensor.SensorID, tag, picker.ClerkID
}

// recordingNotifier captures messages; fail makes every send report failure.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (n *recordingNotifier) Send(message string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return !n.fail
}

func newTestBinService(db *gorm.DB, notifier Notifier, payout float64) *BinStateService {
	ledger := NewLedgerService()
	settlement := NewSettlementService(ledger, payout)
	return NewBinStateService(db, settlement, notifier, nil)
}

func companyBalance(t *testing.T, db *gorm.DB) float64 {
	t.Helper()
	var company models.CompanyBalance
	if err := db.First(&company).Error; err != nil {
		t.Fatalf("load company: %v", err)
	}
	return company.Balance
}

func partyBalance(t *testing.T, db *gorm.DB, clerkID string) float64 {
	t.Helper()
	bal, err := NewLedgerService().GetBalance(db, clerkID)
	if err != nil {
		t.Fatalf("load balance for %s: %v", clerkID, err)
	}
	return bal
}
