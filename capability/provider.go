package capability

// Provider answers the probe questions for one format
type Provider interface {
	// Capability returns the underlying record
	Capability() FormatCapability
	// Resolution returns the probe side length given the sweep's maximum
	Resolution(globalMax int) int
	// Channels returns the probe channel count
	Channels() int
	// Tolerance returns the largest passing corner error
	Tolerance() float64
	// Overridden reports whether the format has its own entry
	Overridden() bool
}

// override is the Provider for a format listed in the table
type override struct {
	c FormatCapability
}

func (p override) Capability() FormatCapability { return p.c }
func (p override) Channels() int                { return p.c.Channels() }
func (p override) Tolerance() float64           { return p.c.ErrorTolerance }
func (p override) Overridden() bool             { return true }

func (p override) Resolution(globalMax int) int {
	return clampResolution(globalMax, p.c.MaxResolution)
}

// fallback is the Provider for a format without an entry
type fallback struct {
	name string
}

func (p fallback) Capability() FormatCapability { return Defaults(p.name) }
func (p fallback) Channels() int                { return DefaultChannels }
func (p fallback) Tolerance() float64           { return DefaultTolerance }
func (p fallback) Overridden() bool             { return false }

func (p fallback) Resolution(globalMax int) int {
	return clampResolution(globalMax, DefaultResolution)
}

// clampResolution returns min(globalMax, formatMax) but never less than
// MinResolution. A non-positive globalMax means the default.
func clampResolution(globalMax, formatMax int) int {
	if globalMax <= 0 {
		globalMax = DefaultResolution
	}
	return max(min(globalMax, formatMax), MinResolution)
}

// Provider selects the implementation for name
func (t *Table) Provider(name string) Provider {
	if c, ok := t.entries[name]; ok {
		return override{c: c}
	}
	return fallback{name: name}
}
