package services

import "errors"

// Sentinel errors for the sensor/settlement flows. Handlers map these to
// HTTP statuses with errors.Is; services wrap them with context via %w.
var (
	// ErrNotFound: sensor, ragpicker, or RFID lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrConflict: the requested transition duplicates current state, or
	// an open log entry already exists for the sensor.
	ErrConflict = errors.New("conflict")

	// ErrPrecondition: a bin-empty signal arrived before any RFID was
	// attached to the open log entry.
	ErrPrecondition = errors.New("precondition failed")
)
