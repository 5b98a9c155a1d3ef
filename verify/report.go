package verify

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Skip records a format that was not tested
type Skip struct {
	Format string `json:"format"`
	Reason string `json:"reason"`
}

// Report collects the result of one sweep
type Report struct {
	RunID    uuid.UUID `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Outcomes []Outcome `json:"outcomes"`
	Skipped  []Skip    `json:"skipped,omitempty"`
	Status   RunStatus `json:"status"`
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Status = r.Status.Fold(o)
}

// Failed returns the outcomes that did not pass
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.Passed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Summary is a one-line description of the sweep
func (r *Report) Summary() string {
	failed := len(r.Failed())
	s := fmt.Sprintf("%d formats tested, %d passed, %d failed, %d skipped in %s",
		len(r.Outcomes), len(r.Outcomes)-failed, failed, len(r.Skipped),
		r.Finished.Sub(r.Started).Round(time.Millisecond))
	if n := r.Status.Faults(); n > 0 {
		s += fmt.Sprintf(", %d aborted", n)
	}
	return s
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile writes the report as JSON to path
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
