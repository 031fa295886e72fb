package models

import "time"

type Sensor struct {
	SensorID     string `gorm:"column:sensor_id;primaryKey" json:"sensor_id"`
	SensorName   string `gorm:"column:sensor_name" json:"sensor_name"`
	Location     string `gorm:"column:location" json:"location"`
	SensorStatus bool   `gorm:"column:sensor_status;default:false" json:"sensor_status"`
	CompanyID    *uint  `gorm:"column:company_id" json:"company_id"`
}

func (Sensor) TableName() string { return "sensors" }

// SensorLog is the append-only event log per sensor. A row with
// sensor_status=true and a NULL RFID is an open collection awaiting
// an RFID tap; attaching the RFID and the final status flip are the
// only permitted mutations.
type SensorLog struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	SensorID     string    `gorm:"column:sensor_id;index" json:"sensor_id"`
	RFID         *string   `gorm:"column:rfid" json:"rfid"`
	SensorStatus bool      `gorm:"column:sensor_status" json:"sensor_status"`
	Timestamp    time.Time `gorm:"column:timestamp" json:"timestamp"`
}

func (SensorLog) TableName() string { return "sensor_logs" }
