// Package zfile registers the Pixar/Renderman depth file format: a small
// header with two 4x4 matrices followed by one little-endian float32 per
// pixel, optionally gzip compressed.
package zfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

const (
	magic        uint32 = 0x2f0867ab
	magicSwapped uint32 = 0xab67082f

	// magic + width + height + worldToScreen + worldToCamera
	headerSize = 4 + 2 + 2 + 16*4 + 16*4

	maxDimension = 65535
)

var identity = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// Codec implements codec.Encoder and codec.Decoder for zfile
type Codec struct {
	// Compress gzips the output. The reader accepts both forms.
	Compress bool
	// Level is the gzip level used when Compress is set
	Level int
}

// NewCodec creates a zfile codec writing gzip compressed files
func NewCodec() *Codec {
	return &Codec{Compress: true, Level: gzip.BestSpeed}
}

// Name returns the format name
func (c *Codec) Name() string { return "zfile" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"zfile"} }

// Encode writes a single channel buffer as normalized depth values
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8, imagebuf.Float32); err != nil {
		return err
	}
	if err := codec.CheckChannels(buf, 1); err != nil {
		return err
	}
	if buf.Width > maxDimension || buf.Height > maxDimension {
		return codec.ErrImageTooLarge
	}

	out := w
	var zw *gzip.Writer
	if c.Compress {
		var err error
		if zw, err = gzip.NewWriterLevel(w, c.Level); err != nil {
			return err
		}
		out = zw
	}
	bw := bufio.NewWriterSize(out, 1<<20)

	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], magic)
	binary.LittleEndian.PutUint16(hdr[4:], uint16(buf.Width))
	binary.LittleEndian.PutUint16(hdr[6:], uint16(buf.Height))
	for m := 0; m < 2; m++ {
		for i, v := range identity {
			binary.LittleEndian.PutUint32(hdr[8+m*64+i*4:], math.Float32bits(v))
		}
	}
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}

	var lut [256][4]byte
	for i := range lut {
		binary.LittleEndian.PutUint32(lut[i][:], math.Float32bits(float32(i)/255))
	}
	for _, v := range buf.Pix {
		if _, err := bw.Write(lut[v][:]); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

// Decode reads depth values back into 8-bit samples
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	sig, err := br.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrInvalidData, err)
	}
	if sig[0] == 0x1f && sig[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", codec.ErrInvalidData, err)
		}
		defer zr.Close()
		br = bufio.NewReaderSize(zr, 1<<20)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", codec.ErrInvalidData, err)
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch binary.LittleEndian.Uint32(hdr[0:]) {
	case magic:
	case magicSwapped:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad zfile magic", codec.ErrInvalidData)
	}
	width := int(order.Uint16(hdr[4:]))
	height := int(order.Uint16(hdr[6:]))

	buf, err := imagebuf.New(width, height, 1)
	if err != nil {
		return nil, err
	}
	var sample [4]byte
	for i := range buf.Pix {
		if _, err := io.ReadFull(br, sample[:]); err != nil {
			return nil, fmt.Errorf("%w: depth data: %v", codec.ErrInvalidData, err)
		}
		buf.Pix[i] = quantize(math.Float32frombits(order.Uint32(sample[:])))
	}
	return buf, nil
}

func quantize(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}

func init() {
	codec.Register(NewCodec())
}
