package imagebuf

import (
	"image"
	"image/color"
)

// Image returns an image.Image backed by the buffer's pixels. One and four
// channel buffers map onto *image.Gray and *image.NRGBA without copying;
// three channel buffers use an opaque RGB view; two channel buffers are
// presented as gray plus alpha.
func (b *Buffer) Image() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Channels {
	case 1:
		return &image.Gray{Pix: b.Pix, Stride: b.Stride(), Rect: rect}
	case 4:
		return &image.NRGBA{Pix: b.Pix, Stride: b.Stride(), Rect: rect}
	case 2:
		return &grayAlphaView{b}
	default:
		return &rgbView{b}
	}
}

// Image16 returns a 16-bit view of the buffer. Values are widened with v*257,
// so narrowing with v>>8 restores them exactly.
func (b *Buffer) Image16() image.Image {
	switch b.Channels {
	case 1:
		return &gray16View{b}
	case 3:
		return &rgb16View{b}
	default:
		return &nrgba16View{b}
	}
}

type rgbView struct{ b *Buffer }

func (m *rgbView) ColorModel() color.Model { return color.RGBAModel }
func (m *rgbView) Bounds() image.Rectangle { return image.Rect(0, 0, m.b.Width, m.b.Height) }
func (m *rgbView) Opaque() bool            { return true }

func (m *rgbView) At(x, y int) color.Color { return m.RGBAAt(x, y) }

func (m *rgbView) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.RGBA{}
	}
	p := m.b.Pixel(x, y)
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
}

func (m *rgbView) RGBA64At(x, y int) color.RGBA64 {
	c := m.RGBAAt(x, y)
	return color.RGBA64{R: uint16(c.R) * 0x101, G: uint16(c.G) * 0x101, B: uint16(c.B) * 0x101, A: uint16(c.A) * 0x101}
}

type grayAlphaView struct{ b *Buffer }

func (m *grayAlphaView) ColorModel() color.Model { return color.NRGBAModel }
func (m *grayAlphaView) Bounds() image.Rectangle { return image.Rect(0, 0, m.b.Width, m.b.Height) }

func (m *grayAlphaView) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.NRGBA{}
	}
	p := m.b.Pixel(x, y)
	return color.NRGBA{R: p[0], G: p[0], B: p[0], A: p[1]}
}

type gray16View struct{ b *Buffer }

func (m *gray16View) ColorModel() color.Model { return color.Gray16Model }
func (m *gray16View) Bounds() image.Rectangle { return image.Rect(0, 0, m.b.Width, m.b.Height) }
func (m *gray16View) Opaque() bool            { return true }

func (m *gray16View) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.Gray16{}
	}
	return color.Gray16{Y: uint16(m.b.Pixel(x, y)[0]) * 0x101}
}

type rgb16View struct{ b *Buffer }

func (m *rgb16View) ColorModel() color.Model { return color.RGBA64Model }
func (m *rgb16View) Bounds() image.Rectangle { return image.Rect(0, 0, m.b.Width, m.b.Height) }
func (m *rgb16View) Opaque() bool            { return true }

func (m *rgb16View) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.RGBA64{}
	}
	p := m.b.Pixel(x, y)
	return color.RGBA64{R: uint16(p[0]) * 0x101, G: uint16(p[1]) * 0x101, B: uint16(p[2]) * 0x101, A: 0xffff}
}

type nrgba16View struct{ b *Buffer }

func (m *nrgba16View) ColorModel() color.Model { return color.NRGBA64Model }
func (m *nrgba16View) Bounds() image.Rectangle { return image.Rect(0, 0, m.b.Width, m.b.Height) }

func (m *nrgba16View) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Bounds())) {
		return color.NRGBA64{}
	}
	p := m.b.Pixel(x, y)
	if m.b.Channels == 2 {
		g := uint16(p[0]) * 0x101
		return color.NRGBA64{R: g, G: g, B: g, A: uint16(p[1]) * 0x101}
	}
	return color.NRGBA64{R: uint16(p[0]) * 0x101, G: uint16(p[1]) * 0x101, B: uint16(p[2]) * 0x101, A: uint16(p[3]) * 0x101}
}

// FromImage copies a decoded image into a new 8-bit buffer. Gray images
// become one channel, opaque color images three, anything with alpha four.
// Samples wider than 8 bits are narrowed to their high byte.
func FromImage(m image.Image) (*Buffer, error) {
	r := m.Bounds()
	w, h := r.Dx(), r.Dy()

	switch src := m.(type) {
	case *image.Gray:
		buf, err := New(w, h, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(buf.Row(y), src.Pix[i:i+w])
		}
		return buf, nil
	case *image.NRGBA:
		return fromRGBA8(src.Pix, src.Stride, src.PixOffset(r.Min.X, r.Min.Y), w, h, src.Opaque())
	case *image.RGBA:
		// Premultiplied and non-premultiplied agree when alpha is 0xff.
		if src.Opaque() {
			return fromRGBA8(src.Pix, src.Stride, src.PixOffset(r.Min.X, r.Min.Y), w, h, true)
		}
	case *image.Gray16:
		buf, err := New(w, h, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < h; y++ {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			row := buf.Row(y)
			for x := range row {
				row[x] = src.Pix[i+2*x]
			}
		}
		return buf, nil
	case *image.NRGBA64:
		return fromRGBA16(src.Pix, src.Stride, src.PixOffset(r.Min.X, r.Min.Y), w, h, src.Opaque())
	case *image.RGBA64:
		if src.Opaque() {
			return fromRGBA16(src.Pix, src.Stride, src.PixOffset(r.Min.X, r.Min.Y), w, h, true)
		}
	}

	return FromImageChannels(m, channelsOf(m))
}

// FromImageChannels copies m into a new buffer with nc channels, for
// decoders that know the layout their color model hides. One channel keeps
// luma, two add alpha, three keep color and four add alpha.
func FromImageChannels(m image.Image, nc int) (*Buffer, error) {
	r := m.Bounds()
	w, h := r.Dx(), r.Dy()
	buf, err := New(w, h, nc)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		row := buf.Row(y)
		i := 0
		for x := 0; x < w; x++ {
			c := m.At(r.Min.X+x, r.Min.Y+y)
			switch nc {
			case 1:
				row[i] = color.GrayModel.Convert(c).(color.Gray).Y
			case 2:
				row[i] = color.GrayModel.Convert(c).(color.Gray).Y
				row[i+1] = nrgba(c).A
			default:
				n := nrgba(c)
				row[i], row[i+1], row[i+2] = n.R, n.G, n.B
				if nc == 4 {
					row[i+3] = n.A
				}
			}
			i += nc
		}
	}
	return buf, nil
}

// nrgba converts c without the premultiply round trip for 16-bit NRGBA
func nrgba(c color.Color) color.NRGBA {
	if n64, ok := c.(color.NRGBA64); ok {
		return color.NRGBA{uint8(n64.R >> 8), uint8(n64.G >> 8), uint8(n64.B >> 8), uint8(n64.A >> 8)}
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func fromRGBA8(pix []byte, stride, offset, w, h int, opaque bool) (*Buffer, error) {
	nc := 4
	if opaque {
		nc = 3
	}
	buf, err := New(w, h, nc)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		src := pix[offset+y*stride : offset+y*stride+4*w]
		dst := buf.Row(y)
		if nc == 4 {
			copy(dst, src)
			continue
		}
		for x := 0; x < w; x++ {
			dst[3*x], dst[3*x+1], dst[3*x+2] = src[4*x], src[4*x+1], src[4*x+2]
		}
	}
	return buf, nil
}

// fromRGBA16 keeps the high byte of each big-endian 16-bit sample
func fromRGBA16(pix []byte, stride, offset, w, h int, opaque bool) (*Buffer, error) {
	nc := 4
	if opaque {
		nc = 3
	}
	buf, err := New(w, h, nc)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		src := pix[offset+y*stride : offset+y*stride+8*w]
		dst := buf.Row(y)
		for x := 0; x < w; x++ {
			for c := 0; c < nc; c++ {
				dst[nc*x+c] = src[8*x+2*c]
			}
		}
	}
	return buf, nil
}

func channelsOf(m image.Image) int {
	switch m.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	if o, ok := m.(interface{ Opaque() bool }); ok {
		if o.Opaque() {
			return 3
		}
		return 4
	}
	r := m.Bounds()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := m.At(x, y).RGBA(); a != 0xffff {
				return 4
			}
		}
	}
	return 3
}
