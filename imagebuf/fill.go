package imagebuf

import (
	"fmt"
	"math"
)

// FillCorners fills buf with a bilinear gradient between four corner colors.
// Pixel (x, y) is sampled at its center, u = (x+0.5)/Width and
// v = (y+0.5)/Height, so the corner pixels approach but never equal the
// corner colors. Each color must carry at least buf.Channels values in
// 0..1; only the first buf.Channels are used.
func FillCorners(buf *Buffer, topLeft, topRight, bottomLeft, bottomRight []float32) error {
	if buf == nil || buf.Channels < 1 || len(buf.Pix) != int(SizeBytes(buf.Width, buf.Height, buf.Channels)) {
		return fmt.Errorf("%w: fill target", ErrInvalidDimensions)
	}
	nc := buf.Channels
	for _, c := range [][]float32{topLeft, topRight, bottomLeft, bottomRight} {
		if len(c) < nc {
			return fmt.Errorf("%w: have %d, need %d", ErrCornerValues, len(c), nc)
		}
	}

	w, h := float64(buf.Width), float64(buf.Height)
	left := make([]float64, nc)
	right := make([]float64, nc)

	for y := 0; y < buf.Height; y++ {
		v := (float64(y) + 0.5) / h
		for c := 0; c < nc; c++ {
			left[c] = float64(topLeft[c])*(1-v) + float64(bottomLeft[c])*v
			right[c] = float64(topRight[c])*(1-v) + float64(bottomRight[c])*v
		}
		row := buf.Row(y)
		i := 0
		for x := 0; x < buf.Width; x++ {
			u := (float64(x) + 0.5) / w
			for c := 0; c < nc; c++ {
				row[i] = quantize(left[c]*(1-u) + right[c]*u)
				i++
			}
		}
	}
	return nil
}

// quantize maps a 0..1 value to 0..255 with rounding and clamping
func quantize(v float64) byte {
	v = math.Round(v * 255)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v)
}
