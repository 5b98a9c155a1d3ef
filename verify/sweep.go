package verify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/cocosip/go-image-big64/capability"
	"github.com/cocosip/go-image-big64/enumerate"
)

// Sweep tests every enumerated format
type Sweep struct {
	Verifier     *Verifier
	Capabilities *capability.Table
	Enumerator   *enumerate.Enumerator

	// MaxResolution caps every probe; zero means capability.DefaultResolution
	MaxResolution int

	// Jobs is the number of formats tested at once. Values up to 1 run the
	// formats one after another.
	Jobs int

	// MemoryBudget bounds the probe bytes in flight when Jobs > 1. Each
	// job holds twice its probe size: the source and the decoded copy.
	// Zero means unbounded.
	MemoryBudget int64

	Logger *slog.Logger
}

// Run performs the sweep. The returned error is non-nil only when the run
// was aborted: by ctx or by a fault outside the per-format steps. Format
// failures are reported through the Report's Status.
func (s *Sweep) Run(ctx context.Context) (rep *Report, err error) {
	rep = &Report{RunID: uuid.New(), Started: time.Now()}
	logger := s.logger()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpectedFault, r)
			logger.Error("sweep aborted", "error", err)
		}
		if err != nil {
			rep.Status = rep.Status.Fault(err)
		}
		rep.Finished = time.Now()
	}()

	table := s.Capabilities
	if table == nil {
		table = capability.Default()
	}

	en := *s.Enumerator
	var skipMu sync.Mutex
	en.OnSkip = func(name string, reason error) {
		skipMu.Lock()
		rep.Skipped = append(rep.Skipped, Skip{Format: name, Reason: reason.Error()})
		skipMu.Unlock()
		if s.Enumerator.OnSkip != nil {
			s.Enumerator.OnSkip(name, reason)
		}
	}

	probes := func(yield func(Probe) bool) {
		for c := range en.Formats() {
			if !yield(NewProbe(c, table.Provider(c.Name), s.MaxResolution)) {
				return
			}
		}
	}

	if s.Jobs <= 1 {
		err = s.sequential(ctx, rep, probes)
	} else {
		err = s.parallel(ctx, rep, probes)
	}
	return rep, err
}

func (s *Sweep) sequential(ctx context.Context, rep *Report, probes func(func(Probe) bool)) error {
	for p := range probes {
		if err := ctx.Err(); err != nil {
			return err
		}
		o := s.Verifier.Verify(p)
		rep.add(o)
		// The next probe may need as much memory again
		debug.FreeOSMemory()
	}
	return nil
}

func (s *Sweep) parallel(ctx context.Context, rep *Report, probes func(func(Probe) bool)) error {
	logger := s.logger()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Jobs)

	var sem *semaphore.Weighted
	if s.MemoryBudget > 0 {
		sem = semaphore.NewWeighted(s.MemoryBudget)
	}

	out := s.Verifier.Out
	if out == nil {
		out = io.Discard
	}

	var (
		mu       sync.Mutex
		outcomes []indexed
	)
	i := 0
	for p := range probes {
		if gctx.Err() != nil {
			break
		}
		idx := i
		i++
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %s: %v", ErrUnexpectedFault, p.Format, r)
					logger.Error("job aborted", "format", p.Format, "error", err)
				}
			}()
			need := p.SizeBytes() * 2
			if sem != nil {
				if need <= 0 || need > s.MemoryBudget {
					need = s.MemoryBudget
				}
				if err := sem.Acquire(gctx, need); err != nil {
					return err
				}
				defer sem.Release(need)
			}
			logger.Debug("job started", "format", p.Format, "reserved", need)

			var log bytes.Buffer
			v := *s.Verifier
			v.Out = &log
			o := v.Verify(p)

			mu.Lock()
			defer mu.Unlock()
			outcomes = append(outcomes, indexed{idx, o})
			_, err = log.WriteTo(out)
			return err
		})
	}
	err := g.Wait()

	// Report in enumeration order regardless of completion order
	slices.SortFunc(outcomes, func(a, b indexed) int { return a.i - b.i })
	for _, o := range outcomes {
		rep.add(o.o)
	}
	if err == nil {
		err = ctx.Err()
	}
	return err
}

type indexed struct {
	i int
	o Outcome
}

func (s *Sweep) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
