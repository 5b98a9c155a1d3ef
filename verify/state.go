package verify

import "fmt"

// State is a step of the per-format round trip. The steps run in order;
// a failure jumps straight to CleaningUp.
type State int

const (
	Generating State = iota + 1
	Writing
	Written
	Reading
	ReadBack
	Comparing
	Compared
	CleaningUp
	Done
)

var stateNames = map[State]string{
	Generating: "generating",
	Writing:    "writing",
	Written:    "written",
	Reading:    "reading",
	ReadBack:   "read back",
	Comparing:  "comparing",
	Compared:   "compared",
	CleaningUp: "cleaning up",
	Done:       "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
