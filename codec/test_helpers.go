package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cocosip/go-image-big64/imagebuf"
)

// TestFormat is a simple raw-pixel plugin for tests. The stream is a
// 12-byte little-endian header (width, height, channels) followed by the
// pixels. Errors and pixel damage can be injected.
type TestFormat struct {
	FormatName string
	Exts       []string

	// EncodeErr and DecodeErr, when set, are returned instead of doing the work
	EncodeErr error
	DecodeErr error

	// Damage, when set, is applied to decoded pixels before they are returned
	Damage func(buf *imagebuf.Buffer)
}

// NewTestFormat creates a TestFormat claiming the given extensions
func NewTestFormat(name string, exts ...string) *TestFormat {
	if len(exts) == 0 {
		exts = []string{name}
	}
	return &TestFormat{FormatName: name, Exts: exts}
}

// Name returns the format name
func (f *TestFormat) Name() string { return f.FormatName }

// Extensions returns the claimed extensions
func (f *TestFormat) Extensions() []string { return f.Exts }

// Encode writes the raw header and pixels
func (f *TestFormat) Encode(w io.Writer, buf *imagebuf.Buffer, opts EncodeOptions) error {
	if f.EncodeErr != nil {
		return f.EncodeErr
	}
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	var hdr [12]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(buf.Width))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(buf.Height))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(buf.Channels))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(buf.Pix)
	return err
}

// Decode reads what Encode wrote
func (f *TestFormat) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	if f.DecodeErr != nil {
		return nil, f.DecodeErr
	}
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidData, err)
	}
	buf, err := imagebuf.New(
		int(binary.LittleEndian.Uint32(hdr[0:])),
		int(binary.LittleEndian.Uint32(hdr[4:])),
		int(binary.LittleEndian.Uint32(hdr[8:])),
	)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, buf.Pix); err != nil {
		return nil, fmt.Errorf("%w: pixels: %v", ErrInvalidData, err)
	}
	if f.Damage != nil {
		f.Damage(buf)
	}
	return buf, nil
}

// TestReadOnlyFormat is a plugin with a reader and no writer
type TestReadOnlyFormat struct {
	FormatName string
	Exts       []string
}

// Name returns the format name
func (f *TestReadOnlyFormat) Name() string { return f.FormatName }

// Extensions returns the claimed extensions
func (f *TestReadOnlyFormat) Extensions() []string { return f.Exts }

// Decode always fails; the format exists only to be enumerated
func (f *TestReadOnlyFormat) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	return nil, ErrInvalidData
}

// NewPatternBuffer returns a buffer filled with a deterministic pattern that
// varies in every channel. With four channels the alpha is never 0xff, so
// the image does not read back as opaque.
func NewPatternBuffer(width, height, channels int) (*imagebuf.Buffer, error) {
	buf, err := imagebuf.New(width, height, channels)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := buf.Pixel(x, y)
			for c := range p {
				p[c] = byte(x*(c+1) + y*(3-c) + 17*c)
			}
			if channels == 4 {
				p[3] = byte(64 + (x+y)%128)
			}
		}
	}
	return buf, nil
}

// RoundTrip encodes buf with enc and decodes the bytes with dec. The
// encoded size is returned alongside the decoded buffer.
func RoundTrip(enc Encoder, dec Decoder, buf *imagebuf.Buffer, opts EncodeOptions) (*imagebuf.Buffer, int, error) {
	var data bytes.Buffer
	if err := enc.Encode(&data, buf, opts); err != nil {
		return nil, 0, fmt.Errorf("encode: %w", err)
	}
	n := data.Len()
	out, err := dec.Decode(&data)
	if err != nil {
		return nil, n, fmt.Errorf("decode: %w", err)
	}
	return out, n, nil
}

// MaxSampleDiff returns the largest absolute difference between the
// reference a and b over every channel of a. Channels b lacks read as
// imagebuf.Buffer.Sample does. The buffers must share dimensions.
func MaxSampleDiff(a, b *imagebuf.Buffer) (int, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("%w: %s vs %s", ErrInvalidParameter, a, b)
	}
	diff := 0
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			pa := a.Pixel(x, y)
			for c := range pa {
				d := int(pa[c]) - int(b.Sample(x, y, c, a.Channels))
				if d < 0 {
					d = -d
				}
				diff = max(diff, d)
			}
		}
	}
	return diff, nil
}
