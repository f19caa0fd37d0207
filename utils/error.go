package utils

import "errors"

// Error taxonomy. Every failure leaving the models layer is one of these
// (possibly wrapped with fmt.Errorf("%w: ...")) or a raw storage error,
// which handlers surface as a transient 500.
var (
	ErrorRecordNotFound = errors.New("record not found")

	// ErrorForbidden marks a cross-tenant access attempt. Never retried.
	ErrorForbidden = errors.New("access denied: resource belongs to a different company")

	// ErrorConflict marks a concurrent-mutation collision (e.g. two version
	// creations racing on the same quote). Callers retry with a fresh read.
	ErrorConflict = errors.New("conflict: concurrent modification, retry")

	ErrorInvalidStatus      = errors.New("invalid status")
	ErrorInvalidCalibration = errors.New("invalid calibration: reference dimensions must be positive")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
