package imagebuf

import (
	"fmt"
	"math"
)

// CompareResult summarizes the per-channel differences inside one region.
// Errors are normalized to 0..1 (a difference of 255 is 1.0).
type CompareResult struct {
	MeanError float64
	RMSError  float64
	MaxError  float64

	// Location of MaxError
	MaxX, MaxY, MaxC int

	// Number of samples above the warn and fail thresholds
	NWarn int64
	NFail int64
}

// CompareRegion compares b against the reference a over roi, on every
// channel of a. Channels b lacks count as 0, except a dropped alpha that
// is opaque in a. The region must lie inside both buffers.
func CompareRegion(a, b *Buffer, roi ROI, failThresh, warnThresh float64) (CompareResult, error) {
	var cr CompareResult
	if a == nil || b == nil {
		return cr, fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	if roi.Empty() {
		return cr, fmt.Errorf("%w: empty region %s", ErrROIOutOfBounds, roi)
	}
	if !a.Bounds().Contains(roi) || !b.Bounds().Contains(roi) {
		return cr, fmt.Errorf("%w: %s not inside %s and %s", ErrROIOutOfBounds, roi, a, b)
	}

	nc := a.Channels
	var sum, sumSq float64
	var n int64
	for y := roi.YBegin; y < roi.YEnd; y++ {
		for x := roi.XBegin; x < roi.XEnd; x++ {
			pa := a.Pixel(x, y)
			for c := 0; c < nc; c++ {
				d := math.Abs(float64(pa[c])-float64(b.Sample(x, y, c, nc))) / 255
				sum += d
				sumSq += d * d
				n++
				if d > cr.MaxError || n == 1 {
					cr.MaxError = d
					cr.MaxX, cr.MaxY, cr.MaxC = x, y, c
				}
				if d > failThresh {
					cr.NFail++
				} else if d > warnThresh {
					cr.NWarn++
				}
			}
		}
	}
	if n > 0 {
		cr.MeanError = sum / float64(n)
		cr.RMSError = math.Sqrt(sumSq / float64(n))
	}
	return cr, nil
}
