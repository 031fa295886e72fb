// Package storage holds the raw telemetry sink. Fill-level readings are
// time-series data and go to InfluxDB; state transitions stay relational.
package storage

import (
	"context"
	"time"

	"waste-whirl-api/config"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

type TelemetryWriter struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

func NewTelemetryWriter(cfg config.InfluxConfig) *TelemetryWriter {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &TelemetryWriter{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

// WriteFillLevel records one ultrasonic distance reading for a bin.
func (w *TelemetryWriter) WriteFillLevel(ctx context.Context, sensorID string, distanceCM float64, ts time.Time) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	point := influxdb2.NewPoint(
		"bin_fill",
		map[string]string{"sensor_id": sensorID},
		map[string]interface{}{"distance_cm": distanceCM},
		ts,
	)
	return w.writeAPI.WritePoint(ctx, point)
}

func (w *TelemetryWriter) Close() {
	w.client.Close()
}
