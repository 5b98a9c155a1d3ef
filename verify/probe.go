package verify

import (
	"github.com/cocosip/go-image-big64/capability"
	"github.com/cocosip/go-image-big64/enumerate"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Probe is the fixed recipe for testing one format
type Probe struct {
	Format     string
	Filename   string
	Resolution int
	Channels   int
	PixelType  imagebuf.PixelType
	Tolerance  float64

	// WriterErr fails the probe at Writing without calling the codec
	WriterErr error
}

// NewProbe derives the probe for a candidate. globalMax is the sweep's
// resolution ceiling, zero meaning capability.DefaultResolution.
func NewProbe(c enumerate.Candidate, p capability.Provider, globalMax int) Probe {
	ext := p.Capability().ExtensionHint
	if ext == "" && len(c.Extensions) > 0 {
		ext = c.Extensions[0]
	}
	if ext == "" {
		ext = c.Name
	}
	return Probe{
		Format:     c.Name,
		Filename:   "big." + ext,
		Resolution: p.Resolution(globalMax),
		Channels:   p.Channels(),
		PixelType:  imagebuf.UInt8,
		Tolerance:  p.Tolerance(),
		WriterErr:  c.WriterErr,
	}
}

// SizeBytes returns the size of the probe image
func (p Probe) SizeBytes() int64 {
	return imagebuf.SizeBytes(p.Resolution, p.Resolution, p.Channels)
}
