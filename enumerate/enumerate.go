// Package enumerate lists the formats the big image sweep can test: every
// registered format that has a writer and is a plain 2D image sink.
package enumerate

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/cocosip/go-image-big64/codec"
)

// DefaultExclusions are never swept: a no-op sink, a network sink and the
// volumetric formats
var DefaultExclusions = []string{"null", "socket", "field3d", "openvdb"}

// Candidate is a format that passed enumeration
type Candidate struct {
	Name       string
	Extensions []string

	// WriterErr is set when looking up the writer failed for a reason other
	// than a missing writer. The format is still tested and fails.
	WriterErr error
}

// Catalog is the part of the codec subsystem the enumerator queries.
// *codec.Registry implements it.
type Catalog interface {
	ExtensionList() string
	CreateWriter(name string) (codec.Encoder, error)
}

// Enumerator yields testable formats from a Catalog
type Enumerator struct {
	Catalog Catalog

	// Exclude replaces DefaultExclusions when non-nil
	Exclude []string

	// Only, when non-empty, restricts the sweep to the named formats
	Only []string

	Logger *slog.Logger

	// OnSkip is called for every format that is not yielded, with
	// ErrExcluded, ErrNotSelected or ErrNoWriter
	OnSkip func(name string, reason error)
}

// ParseExtensionList splits "name:ext,ext;name:ext" into candidates.
// Entries without a name are dropped.
func ParseExtensionList(list string) []Candidate {
	var out []Candidate
	for entry := range strings.SplitSeq(list, ";") {
		name, exts, _ := strings.Cut(strings.TrimSpace(entry), ":")
		if name == "" {
			continue
		}
		c := Candidate{Name: name}
		for ext := range strings.SplitSeq(exts, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				c.Extensions = append(c.Extensions, ext)
			}
		}
		out = append(out, c)
	}
	return out
}

// Formats returns a single-pass sequence of candidates. The catalog is
// queried when iteration starts, so every call sees the current registry.
func (e *Enumerator) Formats() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		logger := e.logger()
		exclude := e.Exclude
		if exclude == nil {
			exclude = DefaultExclusions
		}

		for _, c := range ParseExtensionList(e.Catalog.ExtensionList()) {
			if slices.Contains(exclude, c.Name) {
				logger.Debug("skipping excluded format", "format", c.Name)
				e.skip(c.Name, ErrExcluded)
				continue
			}
			if len(e.Only) > 0 && !slices.Contains(e.Only, c.Name) {
				e.skip(c.Name, ErrNotSelected)
				continue
			}
			if _, err := e.Catalog.CreateWriter(c.Name); err != nil {
				if codec.IsCapabilityMiss(err) {
					logger.Info("skipping format without writer", "format", c.Name, "error", err)
					e.skip(c.Name, fmt.Errorf("%w: %w", ErrNoWriter, err))
					continue
				}
				logger.Warn("writer lookup failed", "format", c.Name, "error", err)
				c.WriterErr = err
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Unknown returns the names in Only that the catalog does not list
func (e *Enumerator) Unknown() []string {
	known := ParseExtensionList(e.Catalog.ExtensionList())
	var missing []string
	for _, name := range e.Only {
		if !slices.ContainsFunc(known, func(c Candidate) bool { return c.Name == name }) {
			missing = append(missing, name)
		}
	}
	return missing
}

func (e *Enumerator) skip(name string, reason error) {
	if e.OnSkip != nil {
		e.OnSkip(name, reason)
	}
}

func (e *Enumerator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.DiscardHandler)
}
