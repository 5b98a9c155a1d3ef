// Package qoi registers the "Quite OK Image" format: a lossless byte
// oriented encoding of 8-bit RGB and RGBA images.
package qoi

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

const (
	magic      = "qoif"
	headerSize = 14

	// Reference decoders refuse anything above 400 million pixels
	maxPixels = 400_000_000

	maxRun    = 62
	indexSize = 64
)

const (
	opIndex uint8 = 0b00000000
	opDiff  uint8 = 0b01000000
	opLuma  uint8 = 0b10000000
	opRun   uint8 = 0b11000000
	opRGB   uint8 = 0b11111110
	opRGBA  uint8 = 0b11111111

	maskOp uint8 = 0b11000000
)

var endMarker = []byte{0, 0, 0, 0, 0, 0, 0, 1}

type pixel struct{ r, g, b, a uint8 }

func (p pixel) hash() uint8 {
	return (p.r*3 + p.g*5 + p.b*7 + p.a*11) % indexSize
}

// Codec implements codec.Encoder and codec.Decoder for QOI
type Codec struct{}

// NewCodec creates a QOI codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "qoi" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"qoi"} }

// Encode writes a three or four channel buffer
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if err := codec.CheckChannels(buf, 3, 4); err != nil {
		return err
	}
	if int64(buf.Width)*int64(buf.Height) > maxPixels {
		return codec.ErrImageTooLarge
	}

	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}

	var hdr [headerSize]byte
	copy(hdr[:], magic)
	binary.BigEndian.PutUint32(hdr[4:], uint32(buf.Width))
	binary.BigEndian.PutUint32(hdr[8:], uint32(buf.Height))
	hdr[12] = uint8(buf.Channels)
	hdr[13] = 0 // sRGB with linear alpha
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	var index [indexSize]pixel
	prev := pixel{a: 255}
	run := 0
	nc := buf.Channels
	last := len(buf.Pix) - nc

	for i := 0; i <= last; i += nc {
		px := pixel{buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], 255}
		if nc == 4 {
			px.a = buf.Pix[i+3]
		}

		if px == prev {
			run++
			if run == maxRun || i == last {
				bw.WriteByte(opRun | uint8(run-1))
				run = 0
			}
			continue
		}
		if run > 0 {
			bw.WriteByte(opRun | uint8(run-1))
			run = 0
		}

		h := px.hash()
		switch {
		case index[h] == px:
			bw.WriteByte(opIndex | h)
		case px.a != prev.a:
			index[h] = px
			bw.Write([]byte{opRGBA, px.r, px.g, px.b, px.a})
		default:
			index[h] = px
			vr := int8(px.r - prev.r)
			vg := int8(px.g - prev.g)
			vb := int8(px.b - prev.b)
			vgr := vr - vg
			vgb := vb - vg
			switch {
			case vr > -3 && vr < 2 && vg > -3 && vg < 2 && vb > -3 && vb < 2:
				bw.WriteByte(opDiff | uint8(vr+2)<<4 | uint8(vg+2)<<2 | uint8(vb+2))
			case vgr > -9 && vgr < 8 && vg > -33 && vg < 32 && vgb > -9 && vgb < 8:
				bw.Write([]byte{opLuma | uint8(vg+32), uint8(vgr+8)<<4 | uint8(vgb+8)})
			default:
				bw.Write([]byte{opRGB, px.r, px.g, px.b})
			}
		}
		prev = px
	}

	if _, err := bw.Write(endMarker); err != nil {
		return err
	}
	return bw.Flush()
}

// Decode reads a QOI stream into a buffer with the header's channel count
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", codec.ErrInvalidData, err)
	}
	if string(hdr[:4]) != magic {
		return nil, fmt.Errorf("%w: bad magic %q", codec.ErrInvalidData, hdr[:4])
	}
	width := binary.BigEndian.Uint32(hdr[4:])
	height := binary.BigEndian.Uint32(hdr[8:])
	nc := int(hdr[12])
	if width == 0 || height == 0 || (nc != 3 && nc != 4) {
		return nil, fmt.Errorf("%w: %dx%d, %d channels", codec.ErrInvalidData, width, height, nc)
	}
	if uint64(width)*uint64(height) > maxPixels {
		return nil, codec.ErrImageTooLarge
	}

	buf, err := imagebuf.New(int(width), int(height), nc)
	if err != nil {
		return nil, err
	}

	var index [indexSize]pixel
	px := pixel{a: 255}
	run := 0

	for i := 0; i < len(buf.Pix); i += nc {
		if run > 0 {
			run--
		} else {
			b1, err := br.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: truncated stream: %v", codec.ErrInvalidData, err)
			}
			switch {
			case b1 == opRGB:
				if err := readInto(br, &px.r, &px.g, &px.b); err != nil {
					return nil, err
				}
			case b1 == opRGBA:
				if err := readInto(br, &px.r, &px.g, &px.b, &px.a); err != nil {
					return nil, err
				}
			case b1&maskOp == opIndex:
				px = index[b1]
			case b1&maskOp == opDiff:
				px.r += (b1>>4)&0x03 - 2
				px.g += (b1>>2)&0x03 - 2
				px.b += b1&0x03 - 2
			case b1&maskOp == opLuma:
				b2, err := br.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("%w: truncated stream: %v", codec.ErrInvalidData, err)
				}
				vg := b1&0x3f - 32
				px.r += vg - 8 + (b2>>4)&0x0f
				px.g += vg
				px.b += vg - 8 + b2&0x0f
			case b1&maskOp == opRun:
				run = int(b1 & 0x3f)
			}
			index[px.hash()] = px
		}

		buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2] = px.r, px.g, px.b
		if nc == 4 {
			buf.Pix[i+3] = px.a
		}
	}
	return buf, nil
}

func readInto(br *bufio.Reader, dst ...*uint8) error {
	for _, d := range dst {
		b, err := br.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: truncated stream: %v", codec.ErrInvalidData, err)
		}
		*d = b
	}
	return nil
}

func init() {
	codec.Register(NewCodec())
}
