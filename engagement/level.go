package engagement

import "fmt"

// Level is the ordered tier derived from a user's check-in streak.
type Level int

const (
	Initiate Level = iota
	Operative
	Enforcer
	Vanguard
	Prime
)

var levelNames = [...]string{"Initiate", "Operative", "Enforcer", "Vanguard", "Prime"}

// thresholds[i] is the minimum streak for Level(i).
var thresholds = [...]int{0, 25, 50, 75, 100}

var makeupAllowance = [...]int{0, 1, 3, 5, 7}

func (l Level) String() string {
	if l < Initiate || l > Prime {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel maps a persisted level name back to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return Initiate, fmt.Errorf("unknown level %q", s)
}

// LevelFor returns the highest level whose threshold does not exceed days.
func LevelFor(days int) Level {
	lvl := Initiate
	for i, min := range thresholds {
		if days >= min {
			lvl = Level(i)
		}
	}
	return lvl
}

// MakeupDaysAllowed is the largest whole-day gap a make-up check-in may cover at level l.
func MakeupDaysAllowed(l Level) int {
	if l < Initiate || l > Prime {
		return 0
	}
	return makeupAllowance[l]
}

// NextLevelAt returns the streak needed for the next level, or 0 at Prime.
func NextLevelAt(l Level) int {
	if l >= Prime {
		return 0
	}
	return thresholds[l+1]
}
