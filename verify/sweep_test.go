package verify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/cocosip/go-image-big64/capability"
	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/enumerate"
	"github.com/cocosip/go-image-big64/synth"
)

const sweepPolicy = `
formats:
  - name: small
    max_resolution: 8
  - name: gray
    channels: 1
`

func newSweep(t *testing.T, jobs int, formats ...codec.Format) (*Sweep, *bytes.Buffer) {
	t.Helper()
	reg := codec.NewRegistry()
	for _, f := range formats {
		reg.Register(f)
	}
	table, err := capability.Load([]byte(sweepPolicy))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	return &Sweep{
		Verifier: &Verifier{
			Codec:     reg,
			Generator: synth.Generator{},
			Dir:       t.TempDir(),
			Out:       &out,
		},
		Capabilities:  table,
		Enumerator:    &enumerate.Enumerator{Catalog: reg},
		MaxResolution: 32,
		Jobs:          jobs,
		MemoryBudget:  1 << 20,
	}, &out
}

func broken(name string) *codec.TestFormat {
	f := codec.NewTestFormat(name)
	f.DecodeErr = errors.New("cannot decode")
	return f
}

func outcomeNames(rep *Report) []string {
	var names []string
	for _, o := range rep.Outcomes {
		names = append(names, o.Format)
	}
	return names
}

func TestSweepAllPass(t *testing.T) {
	s, out := newSweep(t, 1,
		codec.NewTestFormat("raw"),
		codec.NewTestFormat("small"),
		codec.NewTestFormat("gray"),
	)
	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Status.Failed() || rep.Status.ExitCode() != 0 {
		t.Errorf("Status failed %v exit %d, want pass", rep.Status.Failed(), rep.Status.ExitCode())
	}
	if got := strings.Join(outcomeNames(rep), ","); got != "gray,raw,small" {
		t.Errorf("outcomes = %s, want gray,raw,small", got)
	}
	for _, o := range rep.Outcomes {
		switch o.Format {
		case "small":
			if o.Resolution != 8 {
				t.Errorf("small resolution = %d, want 8", o.Resolution)
			}
		case "gray":
			if o.Channels != 1 || o.Resolution != 32 {
				t.Errorf("gray source = %dx%d ch %d, want 32 ch 1", o.Resolution, o.Resolution, o.Channels)
			}
		}
	}
	if !strings.Contains(out.String(), "Testing big small (8 x 8, ch 3, uint8): big.small") {
		t.Errorf("progress log missing small block:\n%s", out.String())
	}
	assertNoResidue(t, s.Verifier.Dir)
}

// One failing format, one read-only format and one excluded format
func TestSweepAggregation(t *testing.T) {
	var skips []string
	s, _ := newSweep(t, 1,
		codec.NewTestFormat("raw"),
		broken("bad"),
		&codec.TestReadOnlyFormat{FormatName: "scan", Exts: []string{"scn"}},
		codec.NewTestFormat("null"),
	)
	s.Enumerator.OnSkip = func(name string, _ error) { skips = append(skips, name) }

	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := strings.Join(outcomeNames(rep), ","); got != "bad,raw" {
		t.Errorf("outcomes = %s, want bad,raw", got)
	}
	if !rep.Status.Failed() || rep.Status.ExitCode() != 1 || rep.Status.Failures() != 1 {
		t.Errorf("Status = failed %v exit %d failures %d, want failed 1 1",
			rep.Status.Failed(), rep.Status.ExitCode(), rep.Status.Failures())
	}
	if failed := rep.Failed(); len(failed) != 1 || failed[0].Format != "bad" {
		t.Errorf("Failed() = %+v, want [bad]", failed)
	}

	if len(rep.Skipped) != 2 {
		t.Fatalf("Skipped = %+v, want null and scan", rep.Skipped)
	}
	for _, sk := range rep.Skipped {
		switch sk.Format {
		case "scan":
			if !strings.Contains(sk.Reason, "no writer") {
				t.Errorf("scan skip reason = %q", sk.Reason)
			}
		case "null":
		default:
			t.Errorf("unexpected skip %+v", sk)
		}
	}
	if strings.Join(skips, ",") != "null,scan" {
		t.Errorf("OnSkip saw %v, want [null scan]", skips)
	}

	want := "2 formats tested, 1 passed, 1 failed, 2 skipped in "
	if got := rep.Summary(); !strings.HasPrefix(got, want) {
		t.Errorf("Summary() = %q, want prefix %q", got, want)
	}
	assertNoResidue(t, s.Verifier.Dir)
}

// A read-only format alone leaves the run green
func TestSweepSkipOnly(t *testing.T) {
	s, _ := newSweep(t, 1, &codec.TestReadOnlyFormat{FormatName: "scan", Exts: []string{"scn"}})
	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Outcomes) != 0 || rep.Status.Failed() {
		t.Errorf("outcomes %d failed %v, want none and pass", len(rep.Outcomes), rep.Status.Failed())
	}
}

func TestSweepParallelMatchesSequential(t *testing.T) {
	formats := func() []codec.Format {
		return []codec.Format{
			codec.NewTestFormat("a"),
			broken("b"),
			codec.NewTestFormat("c"),
			codec.NewTestFormat("d"),
			broken("e"),
			codec.NewTestFormat("gray"),
		}
	}
	seq, _ := newSweep(t, 1, formats()...)
	par, out := newSweep(t, 3, formats()...)
	// Room for one 32x32x3 job at a time
	par.MemoryBudget = 2 * 32 * 32 * 3

	seqRep, err := seq.Run(context.Background())
	if err != nil {
		t.Fatalf("sequential Run failed: %v", err)
	}
	parRep, err := par.Run(context.Background())
	if err != nil {
		t.Fatalf("parallel Run failed: %v", err)
	}

	if got, want := strings.Join(outcomeNames(parRep), ","), strings.Join(outcomeNames(seqRep), ","); got != want {
		t.Errorf("parallel outcomes = %s, want %s", got, want)
	}
	for i := range seqRep.Outcomes {
		if seqRep.Outcomes[i].Passed != parRep.Outcomes[i].Passed {
			t.Errorf("%s: parallel passed %v, sequential %v",
				seqRep.Outcomes[i].Format, parRep.Outcomes[i].Passed, seqRep.Outcomes[i].Passed)
		}
	}
	if parRep.Status.ExitCode() != 1 || parRep.Status.Failures() != 2 {
		t.Errorf("parallel status exit %d failures %d, want 1 and 2", parRep.Status.ExitCode(), parRep.Status.Failures())
	}

	// Every block is flushed whole
	log := out.String()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		header := "  Testing big " + name + " "
		i := strings.Index(log, header)
		if i < 0 {
			t.Errorf("progress log missing block for %s", name)
			continue
		}
		block := log[i+len(header):]
		if j := strings.Index(block, "  Testing big "); j >= 0 {
			block = block[:j]
		}
		if !strings.Contains(block, "Reading...") {
			t.Errorf("block for %s is interleaved:\n%s", name, block)
		}
	}
	assertNoResidue(t, par.Verifier.Dir)
}

func TestSweepCanceled(t *testing.T) {
	for _, jobs := range []int{1, 4} {
		s, _ := newSweep(t, jobs, codec.NewTestFormat("raw"), codec.NewTestFormat("other"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rep, err := s.Run(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("jobs %d: Run error = %v, want context.Canceled", jobs, err)
		}
		if len(rep.Outcomes) != 0 {
			t.Errorf("jobs %d: %d outcomes after cancel, want 0", jobs, len(rep.Outcomes))
		}
		if rep.Status.ExitCode() != 1 || rep.Status.Faults() != 1 {
			t.Errorf("jobs %d: status exit %d faults %d, want 1 and 1", jobs, rep.Status.ExitCode(), rep.Status.Faults())
		}
	}
}

type faultyCatalog struct{}

func (faultyCatalog) ExtensionList() string { panic("registry corrupted") }

func (faultyCatalog) CreateWriter(string) (codec.Encoder, error) { return nil, codec.ErrNoWriter }

func TestSweepFaultOutsideLoop(t *testing.T) {
	s, _ := newSweep(t, 1)
	s.Enumerator = &enumerate.Enumerator{Catalog: faultyCatalog{}}

	rep, err := s.Run(context.Background())
	if !errors.Is(err, ErrUnexpectedFault) {
		t.Fatalf("Run error = %v, want ErrUnexpectedFault", err)
	}
	if !rep.Status.Failed() || rep.Status.ExitCode() != 1 {
		t.Error("status not failed after an aborted run")
	}
	if !strings.Contains(rep.Summary(), "1 aborted") {
		t.Errorf("Summary() = %q, want abort count", rep.Summary())
	}
}

// panicOnPass panics when a format is reported as passed, which happens
// after the per-format steps and cleanup have returned
type panicOnPass struct{ slog.Handler }

func (h panicOnPass) Enabled(context.Context, slog.Level) bool { return true }

func (h panicOnPass) Handle(_ context.Context, r slog.Record) error {
	if r.Message == "format passed" {
		panic("log sink closed")
	}
	return nil
}

func TestSweepFaultAfterVerify(t *testing.T) {
	for _, jobs := range []int{1, 3} {
		s, _ := newSweep(t, jobs, codec.NewTestFormat("raw"), codec.NewTestFormat("small"))
		s.Verifier.Logger = slog.New(panicOnPass{slog.DiscardHandler})

		rep, err := s.Run(context.Background())
		if !errors.Is(err, ErrUnexpectedFault) {
			t.Fatalf("jobs %d: Run error = %v, want ErrUnexpectedFault", jobs, err)
		}
		if rep.Status.ExitCode() != 1 || rep.Status.Faults() != 1 {
			t.Errorf("jobs %d: exit %d faults %d, want 1 and 1", jobs, rep.Status.ExitCode(), rep.Status.Faults())
		}
		assertNoResidue(t, s.Verifier.Dir)
	}
}

func TestReportJSON(t *testing.T) {
	s, _ := newSweep(t, 1, codec.NewTestFormat("raw"), broken("bad"))
	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var doc struct {
		RunID    string `json:"run_id"`
		Outcomes []struct {
			Format   string `json:"format"`
			Passed   bool   `json:"passed"`
			FailedAt string `json:"failed_at"`
			Error    string `json:"error"`
		} `json:"outcomes"`
		Status struct {
			Failed   bool `json:"failed"`
			ExitCode int  `json:"exit_code"`
		} `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, buf.String())
	}
	if doc.RunID != rep.RunID.String() {
		t.Errorf("run_id = %q, want %q", doc.RunID, rep.RunID)
	}
	if len(doc.Outcomes) != 2 {
		t.Fatalf("%d outcomes in JSON, want 2", len(doc.Outcomes))
	}
	bad := doc.Outcomes[0]
	if bad.Format != "bad" || bad.Passed || bad.FailedAt != "reading" || !strings.Contains(bad.Error, "cannot decode") {
		t.Errorf("bad outcome = %+v", bad)
	}
	if good := doc.Outcomes[1]; !good.Passed || good.FailedAt != "" || good.Error != "" {
		t.Errorf("raw outcome = %+v", good)
	}
	if !doc.Status.Failed || doc.Status.ExitCode != 1 {
		t.Errorf("status = %+v, want failed exit 1", doc.Status)
	}
}

func TestRunStatusMonotonic(t *testing.T) {
	var s RunStatus
	if s.Failed() || s.ExitCode() != 0 {
		t.Fatal("zero RunStatus is failed")
	}
	s = s.Fold(Outcome{Passed: true})
	if s.Failed() {
		t.Error("passing outcome failed the run")
	}
	failed := s.Fold(Outcome{Passed: false})
	if !failed.Failed() || failed.ExitCode() != 1 {
		t.Error("failing outcome did not fail the run")
	}
	if s.Failed() {
		t.Error("Fold modified its receiver")
	}
	for range 3 {
		failed = failed.Fold(Outcome{Passed: true})
	}
	if !failed.Failed() {
		t.Error("passing outcomes cleared the failure")
	}
	if f := (RunStatus{}).Fault(errors.New("boom")); !f.Failed() || f.Faults() != 1 || f.Failures() != 0 {
		t.Errorf("Fault = failed %v faults %d failures %d", f.Failed(), f.Faults(), f.Failures())
	}
}
