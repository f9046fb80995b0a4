package engagement

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCheckedIn is returned when the last check-in is less than a day old.
	ErrAlreadyCheckedIn = errors.New("already checked in within the last 24 hours")
	// ErrNoPriorCheckIn is returned by a make-up when the user never checked in.
	ErrNoPriorCheckIn = errors.New("make-up requires a prior check-in")
	// ErrMakeupWindowExpired is returned when the gap exceeds the level's allowance.
	ErrMakeupWindowExpired = errors.New("make-up window expired")
)

// MakeupWindowError carries the numbers behind ErrMakeupWindowExpired.
type MakeupWindowError struct {
	Level   Level
	Allowed int
	Elapsed int
}

func (e *MakeupWindowError) Error() string {
	return fmt.Sprintf("%s: %d days elapsed, %s allows %d", ErrMakeupWindowExpired, e.Elapsed, e.Level, e.Allowed)
}

func (e *MakeupWindowError) Is(target error) bool {
	return target == ErrMakeupWindowExpired
}
