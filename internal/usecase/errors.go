package usecase

import "errors"

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrReportNotReady     = errors.New("report not ready")
	ErrIDCollision        = errors.New("could not allocate a unique report id")
	ErrInvalidInput       = errors.New("invalid input")
	ErrTrackerUnavailable = errors.New("job status store unavailable")
	ErrJobExists          = errors.New("job status record already exists")
)
