package lexis

import "errors"

var (
	// ErrMaintenanceRunning is returned when maintenance is already scheduled.
	ErrMaintenanceRunning = errors.New("maintenance already running")

	// ErrInvalidSchedule is returned when the maintenance cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid maintenance schedule")
)
