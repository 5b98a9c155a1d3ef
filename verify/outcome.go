package verify

import (
	"time"

	"github.com/goccy/go-json"
)

// Outcome records one format's round trip
type Outcome struct {
	Format         string        `json:"format"`
	Resolution     int           `json:"resolution"`
	Channels       int           `json:"channels"`
	Tolerance      float64       `json:"tolerance"`
	WriteSucceeded bool          `json:"write_succeeded"`
	WriteDuration  time.Duration `json:"write_duration_ns"`
	BytesWritten   int64         `json:"bytes_written"`
	ReadSucceeded  bool          `json:"read_succeeded"`
	ReadDuration   time.Duration `json:"read_duration_ns"`
	MaxError       float64       `json:"max_error"`
	Passed         bool          `json:"passed"`

	// FailedAt is the state the failure happened in, zero when passed
	FailedAt State `json:"failed_at,omitempty"`
	Err      error `json:"-"`
}

func newOutcome(p Probe) Outcome {
	return Outcome{
		Format:     p.Format,
		Resolution: p.Resolution,
		Channels:   p.Channels,
		Tolerance:  p.Tolerance,
	}
}

// fail keeps the first failure
func (o *Outcome) fail(at State, err error) {
	if o.Err != nil {
		return
	}
	o.FailedAt = at
	o.Err = err
}

// MarshalJSON adds the error text
func (o Outcome) MarshalJSON() ([]byte, error) {
	type plain Outcome
	var msg string
	if o.Err != nil {
		msg = o.Err.Error()
	}
	return json.Marshal(struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain(o), msg})
}

// RunStatus is the sweep verdict. It is a value: Fold and Fault return a
// new status, and once failed a status stays failed.
type RunStatus struct {
	failed   bool
	failures int
	faults   int
}

// Fold accounts for one outcome
func (s RunStatus) Fold(o Outcome) RunStatus {
	if !o.Passed {
		s.failed = true
		s.failures++
	}
	return s
}

// Fault accounts for a fault outside any per-format step
func (s RunStatus) Fault(error) RunStatus {
	s.failed = true
	s.faults++
	return s
}

// Failed reports whether any outcome failed or any fault occurred
func (s RunStatus) Failed() bool { return s.failed }

// Failures returns the number of failed outcomes
func (s RunStatus) Failures() int { return s.failures }

// Faults returns the number of faults outside the per-format steps
func (s RunStatus) Faults() int { return s.faults }

// ExitCode returns 1 when failed, else 0
func (s RunStatus) ExitCode() int {
	if s.failed {
		return 1
	}
	return 0
}

// MarshalJSON exposes the counters
func (s RunStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Failed   bool `json:"failed"`
		Failures int  `json:"failures"`
		Faults   int  `json:"faults"`
		ExitCode int  `json:"exit_code"`
	}{s.failed, s.failures, s.faults, s.ExitCode()})
}
