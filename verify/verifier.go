// Package verify runs the big image round trip: for each format it
// generates a probe image, writes it, reads it back, compares two corner
// regions and removes the file, then folds the outcomes into one verdict.
package verify

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec writes and reads image files. *codec.Registry implements it.
type Codec interface {
	WriteFile(buf *imagebuf.Buffer, filename string, pixelType imagebuf.PixelType, formatName string) error
	ReadFile(filename string, forceType imagebuf.PixelType) (*imagebuf.Buffer, error)
}

// Generator produces probe images. synth.Generator implements it.
type Generator interface {
	Generate(res, channels int, pt imagebuf.PixelType) (*imagebuf.Buffer, error)
}

// cornerSize is the side of the two compare regions
const cornerSize = 2

// Verifier runs the round trip for one probe at a time
type Verifier struct {
	Codec     Codec
	Generator Generator

	// Dir holds the temporary big.<ext> files; empty means the working directory
	Dir string

	// MemoryLimit bounds the bytes a probe holds at once: the source and
	// its decoded copy. Zero means unbounded.
	MemoryLimit int64

	// Out receives the progress log; nil discards it
	Out    io.Writer
	Logger *slog.Logger
}

// run carries one probe through the steps
type run struct {
	v     *Verifier
	p     Probe
	path  string
	out   io.Writer
	state State
	o     Outcome
}

// Verify runs the round trip for p. It never returns an error: every
// failure, including a panic from a codec, is recorded in the Outcome.
// The probe file is removed before Verify returns.
func (v *Verifier) Verify(p Probe) Outcome {
	r := &run{
		v:    v,
		p:    p,
		path: filepath.Join(v.Dir, p.Filename),
		out:  v.Out,
		o:    newOutcome(p),
	}
	if r.out == nil {
		r.out = io.Discard
	}

	r.guarded()
	r.cleanup()

	r.o.Passed = r.o.Err == nil && r.o.WriteSucceeded && r.o.ReadSucceeded && !(r.o.MaxError > r.o.Tolerance)
	if r.o.Passed {
		v.logger().Info("format passed", "format", p.Format, "resolution", p.Resolution, "max_error", r.o.MaxError)
	} else {
		v.logger().Error("format failed",
			"format", p.Format,
			"resolution", p.Resolution,
			"channels", p.Channels,
			"state", r.o.FailedAt,
			"max_error", r.o.MaxError,
			"error", r.o.Err)
	}
	return r.o
}

func (r *run) guarded() {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w while %s: %v", ErrUnexpectedFault, r.state, rec)
			fmt.Fprintf(r.out, "\n    Error: %v\n", err)
			r.o.fail(r.state, err)
		}
	}()
	r.steps()
}

func (r *run) enter(s State) {
	r.state = s
	r.v.logger().Debug("round trip step", "format", r.p.Format, "state", s)
}

func (r *run) steps() {
	p := r.p
	fmt.Fprintf(r.out, "  Testing big %s (%d x %d, ch %d, %s): %s\n",
		p.Format, p.Resolution, p.Resolution, p.Channels, p.PixelType, p.Filename)

	r.enter(Generating)
	if need := 2 * p.SizeBytes(); r.v.MemoryLimit > 0 && need > r.v.MemoryLimit {
		err := fmt.Errorf("%w: source and read-back need %s, limit %s", imagebuf.ErrAllocation,
			humanize.IBytes(uint64(need)), humanize.IBytes(uint64(r.v.MemoryLimit)))
		fmt.Fprintf(r.out, "    Error: %v\n", err)
		r.o.fail(Generating, fmt.Errorf("%w: %w", ErrGeneration, err))
		return
	}
	src, err := r.v.Generator.Generate(p.Resolution, p.Channels, p.PixelType)
	if err != nil {
		fmt.Fprintf(r.out, "    Error: %v\n", err)
		r.o.fail(Generating, fmt.Errorf("%w: %w", ErrGeneration, err))
		return
	}

	r.enter(Writing)
	fmt.Fprint(r.out, "    Writing... ")
	start := time.Now()
	err = p.WriterErr
	if err == nil {
		err = r.v.Codec.WriteFile(src, r.path, p.PixelType, p.Format)
	}
	r.o.WriteDuration = time.Since(start)
	if err != nil {
		fmt.Fprintf(r.out, "  no file written  Error: %v\n", err)
		r.o.fail(Writing, fmt.Errorf("%w: %w", ErrEncode, err))
		return
	}
	fi, err := os.Stat(r.path)
	if err != nil {
		fmt.Fprintf(r.out, "  no file written  Error: %v\n", err)
		r.o.fail(Writing, fmt.Errorf("%w: output missing: %w", ErrEncode, err))
		return
	}
	r.o.WriteSucceeded = true
	r.o.BytesWritten = fi.Size()
	r.enter(Written)
	fmt.Fprintf(r.out, "  wrote file size %s in %s  OK\n",
		humanize.IBytes(uint64(fi.Size())), r.o.WriteDuration.Round(time.Millisecond))

	r.enter(Reading)
	fmt.Fprint(r.out, "    Reading... ")
	start = time.Now()
	back, err := r.v.Codec.ReadFile(r.path, imagebuf.UInt8)
	r.o.ReadDuration = time.Since(start)
	fmt.Fprintf(r.out, "  read %s  ", r.o.ReadDuration.Round(time.Millisecond))
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		r.o.fail(Reading, fmt.Errorf("%w: %w", ErrDecode, err))
		return
	}
	r.o.ReadSucceeded = true
	r.enter(ReadBack)

	r.enter(Comparing)
	maxErr, err := compareCorners(src, back, p.Resolution, p.Tolerance)
	r.o.MaxError = maxErr
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		r.o.fail(Comparing, fmt.Errorf("%w: %w", ErrToleranceExceeded, err))
		return
	}
	r.enter(Compared)
	if maxErr > p.Tolerance {
		fmt.Fprintf(r.out, "Error: read/write images do not match, max err was %g\n", maxErr)
		r.o.fail(Compared, fmt.Errorf("%w: max error %g > %g", ErrToleranceExceeded, maxErr, p.Tolerance))
		return
	}
	fmt.Fprintln(r.out, "OK")
}

// compareCorners returns the largest error over the 2x2 blocks at the
// origin and at the far corner
func compareCorners(src, back *imagebuf.Buffer, res int, tol float64) (float64, error) {
	if back.Width != src.Width || back.Height != src.Height {
		return 0, fmt.Errorf("read back %s, wrote %s", back, src)
	}
	rois := []imagebuf.ROI{
		{XBegin: 0, XEnd: cornerSize, YBegin: 0, YEnd: cornerSize},
		{XBegin: res - cornerSize, XEnd: res, YBegin: res - cornerSize, YEnd: res},
	}
	maxErr := 0.0
	for _, roi := range rois {
		cr, err := imagebuf.CompareRegion(src, back, roi, tol, tol)
		if err != nil {
			return maxErr, err
		}
		maxErr = max(maxErr, cr.MaxError)
	}
	return maxErr, nil
}

// cleanup removes the probe file if it exists. A failed removal is logged;
// the outcome is already decided.
func (r *run) cleanup() {
	r.enter(CleaningUp)
	err := os.Remove(r.path)
	switch {
	case err == nil:
		r.v.logger().Debug("removed probe file", "path", r.path)
	case errors.Is(err, fs.ErrNotExist):
	default:
		r.v.logger().Warn("probe file may be leaked", "path", r.path, "error", err)
	}
	r.enter(Done)
}

func (v *Verifier) logger() *slog.Logger {
	if v.Logger != nil {
		return v.Logger
	}
	return slog.New(slog.DiscardHandler)
}
