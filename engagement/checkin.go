// Package engagement holds the check-in streak rules and reward aggregation.
// Every function takes the current time and prior state explicitly and performs no I/O;
// persisting the result atomically is the caller's job.
package engagement

import "time"

// Day is the check-in period.
const Day = 24 * time.Hour

// CheckInState is the persisted streak of one wallet address.
type CheckInState struct {
	Address         string     `json:"address"`
	ConsecutiveDays int        `json:"consecutive_days"`
	LastCheckIn     *time.Time `json:"last_check_in"`
	Level           Level      `json:"level"`
}

// Status is the read-side view returned to clients.
type Status struct {
	ConsecutiveDays  int        `json:"consecutive_days"`
	Level            string     `json:"level"`
	NextLevelAt      int        `json:"next_level_at"`
	LastCheckIn      *time.Time `json:"last_check_in"`
	CanCheckIn       bool       `json:"can_check_in"`
	NextCheckInAt    *time.Time `json:"next_check_in_at,omitempty"`
	MakeupAllowed    int        `json:"makeup_days_allowed"`
	MakeupAvailable  bool       `json:"makeup_available"`
	DaysSinceCheckIn int        `json:"days_since_check_in"`
}

// CanCheckIn reports whether a normal check-in is allowed at now.
func CanCheckIn(state *CheckInState, now time.Time) bool {
	if state == nil || state.LastCheckIn == nil {
		return true
	}
	return now.Sub(*state.LastCheckIn) > Day
}

// CheckIn advances the streak by exactly one day.
func CheckIn(state *CheckInState, now time.Time) (CheckInState, error) {
	if !CanCheckIn(state, now) {
		return *state, ErrAlreadyCheckedIn
	}
	next := CheckInState{ConsecutiveDays: 1, Level: Initiate}
	if state != nil {
		next = *state
		next.ConsecutiveDays = state.ConsecutiveDays + 1
	}
	return stamp(next, now), nil
}

// MakeUpCheckIn credits the whole gap since the last check-in when it fits the
// allowance of the current level.
func MakeUpCheckIn(state *CheckInState, now time.Time) (CheckInState, error) {
	if state == nil || state.LastCheckIn == nil {
		var zero CheckInState
		if state != nil {
			zero = *state
		}
		return zero, ErrNoPriorCheckIn
	}
	gap := DaysSince(*state.LastCheckIn, now)
	allowed := MakeupDaysAllowed(state.Level)
	if gap > allowed {
		return *state, &MakeupWindowError{Level: state.Level, Allowed: allowed, Elapsed: gap}
	}
	if gap < 1 {
		return *state, ErrAlreadyCheckedIn
	}
	next := *state
	next.ConsecutiveDays = state.ConsecutiveDays + gap
	return stamp(next, now), nil
}

// DaysSince is the number of whole days between last and now, truncated toward zero.
func DaysSince(last, now time.Time) int {
	return int(now.Sub(last) / Day)
}

// StatusOf summarizes state for display.
func StatusOf(state *CheckInState, now time.Time) Status {
	if state == nil {
		state = &CheckInState{}
	}
	lvl := LevelFor(state.ConsecutiveDays)
	st := Status{
		ConsecutiveDays: state.ConsecutiveDays,
		Level:           lvl.String(),
		NextLevelAt:     NextLevelAt(lvl),
		LastCheckIn:     state.LastCheckIn,
		CanCheckIn:      CanCheckIn(state, now),
		MakeupAllowed:   MakeupDaysAllowed(lvl),
	}
	if state.LastCheckIn != nil {
		gap := DaysSince(*state.LastCheckIn, now)
		st.DaysSinceCheckIn = gap
		st.MakeupAvailable = gap >= 1 && gap <= st.MakeupAllowed
		if !st.CanCheckIn {
			at := state.LastCheckIn.Add(Day)
			st.NextCheckInAt = &at
		}
	}
	return st
}

// stamp recomputes the level from the streak and records now as the last check-in.
func stamp(s CheckInState, now time.Time) CheckInState {
	s.Level = LevelFor(s.ConsecutiveDays)
	t := now
	s.LastCheckIn = &t
	return s
}
