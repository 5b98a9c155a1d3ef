// Package capability holds the per-format policy for the big image sweep:
// how large a probe image may be, how many channels it carries and how
// much round-trip error is tolerated. The numbers are configuration, kept
// in an embedded YAML table that an override file can replace entry by
// entry.
package capability

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultResolution is the side of the square probe image when a
	// format has no cap
	DefaultResolution = 1 << 16
	// DefaultChannels is the probe channel count without an override
	DefaultChannels = 3
	// DefaultTolerance is the largest normalized corner error that passes
	DefaultTolerance = 0.01
	// MinResolution keeps the two 2x2 compare regions from overlapping
	MinResolution = 4
)

//go:embed caps.yaml
var defaultPolicy []byte

// FormatCapability describes the limits of one format
type FormatCapability struct {
	Name            string  `json:"name"`
	ExtensionHint   string  `json:"extension_hint,omitempty"`
	MaxResolution   int     `json:"max_resolution"`
	ChannelOverride int     `json:"channel_override,omitempty"`
	ErrorTolerance  float64 `json:"error_tolerance"`
	Notes           string  `json:"notes,omitempty"`
}

// Defaults returns the record used for a format without an entry
func Defaults(name string) FormatCapability {
	return FormatCapability{
		Name:           name,
		MaxResolution:  DefaultResolution,
		ErrorTolerance: DefaultTolerance,
	}
}

// Channels returns the probe channel count
func (c FormatCapability) Channels() int {
	if c.ChannelOverride > 0 {
		return c.ChannelOverride
	}
	return DefaultChannels
}

// Validate checks the entry against the compare floor and channel range
func (c FormatCapability) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("%w: empty format name", ErrInvalidEntry)
	case c.MaxResolution < MinResolution:
		return fmt.Errorf("%w: %s: max_resolution %d below floor %d", ErrInvalidEntry, c.Name, c.MaxResolution, MinResolution)
	case c.ChannelOverride < 0 || c.ChannelOverride > 4:
		return fmt.Errorf("%w: %s: channels %d", ErrInvalidEntry, c.Name, c.ChannelOverride)
	case !(c.ErrorTolerance >= 0):
		return fmt.Errorf("%w: %s: tolerance %g", ErrInvalidEntry, c.Name, c.ErrorTolerance)
	}
	return nil
}

// Table maps format names to capability entries. A Table is never
// modified after Load; Merge returns a new one.
type Table struct {
	entries map[string]FormatCapability
}

type policyFile struct {
	Formats []policyEntry `yaml:"formats"`
}

// Optional fields are pointers so that an absent key keeps the default
type policyEntry struct {
	Name          string   `yaml:"name"`
	Extension     string   `yaml:"extension"`
	MaxResolution *int     `yaml:"max_resolution"`
	Channels      *int     `yaml:"channels"`
	Tolerance     *float64 `yaml:"tolerance"`
	Notes         string   `yaml:"notes"`
}

func (e policyEntry) capability() FormatCapability {
	c := Defaults(e.Name)
	c.ExtensionHint = e.Extension
	c.Notes = e.Notes
	if e.MaxResolution != nil {
		c.MaxResolution = *e.MaxResolution
	}
	if e.Channels != nil {
		c.ChannelOverride = *e.Channels
	}
	if e.Tolerance != nil {
		c.ErrorTolerance = *e.Tolerance
	}
	return c
}

// Load parses a YAML policy document
func Load(data []byte) (*Table, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	t := &Table{entries: make(map[string]FormatCapability, len(pf.Formats))}
	for _, e := range pf.Formats {
		c := e.capability()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.entries[c.Name]; dup {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidEntry, c.Name)
		}
		t.entries[c.Name] = c
	}
	return t, nil
}

// LoadFile parses a YAML policy file
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return Load(defaultPolicy)
})

// Default returns the built-in policy table
func Default() *Table {
	t, err := defaultTable()
	if err != nil {
		panic(fmt.Sprintf("capability: embedded policy: %v", err))
	}
	return t
}

// Merge returns a table holding t's entries with other's entries replacing
// those of the same name
func (t *Table) Merge(other *Table) *Table {
	merged := &Table{entries: maps.Clone(t.entries)}
	if merged.entries == nil {
		merged.entries = make(map[string]FormatCapability)
	}
	if other != nil {
		maps.Copy(merged.entries, other.entries)
	}
	return merged
}

// CapabilityFor returns the entry for name, or the defaults when there is
// none. It never fails.
func (t *Table) CapabilityFor(name string) FormatCapability {
	if c, ok := t.entries[name]; ok {
		return c
	}
	return Defaults(name)
}

// Lookup returns the entry for name and whether one exists
func (t *Table) Lookup(name string) (FormatCapability, bool) {
	c, ok := t.entries[name]
	return c, ok
}

// Names returns the names with an entry, sorted
func (t *Table) Names() []string {
	return slices.Sorted(maps.Keys(t.entries))
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}
