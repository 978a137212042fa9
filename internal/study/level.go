package study

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the difficulty tier a summary is written for. It only changes
// prompt wording.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Levels lists the closed set of tiers in display order.
var Levels = []Level{Beginner, Intermediate, Advanced}

var ErrUnknownLevel = errors.New("unknown level")

var levelLabels = map[Level]string{
	Beginner:     "Beginner",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
}

func (l Level) Label() string {
	if s, ok := levelLabels[l]; ok {
		return s
	}
	return string(l)
}

func (l Level) Valid() bool {
	_, ok := levelLabels[l]
	return ok
}

// Next cycles through Levels.
func (l Level) Next() Level {
	for i, v := range Levels {
		if v == l {
			return Levels[(i+1)%len(Levels)]
		}
	}
	return Beginner
}

// ParseLevel accepts an id or a label, case-insensitively.
func ParseLevel(raw string) (Level, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, l := range Levels {
		if s == string(l) || s == strings.ToLower(l.Label()) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLevel, raw)
}
