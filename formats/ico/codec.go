// Package ico registers the Windows icon format. Icons are written as a
// single PNG-compressed entry; reading accepts PNG entries only.
package ico

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"
	"io"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

const (
	dirSize   = 6
	entrySize = 16

	// Entry width and height are single bytes where 0 means 256
	maxDimension = 256
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Codec implements codec.Encoder and codec.Decoder for ICO
type Codec struct{}

// NewCodec creates an ICO codec
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "ico" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"ico"} }

// Encode writes buf as a one-entry icon
func (c *Codec) Encode(w io.Writer, buf *imagebuf.Buffer, opts codec.EncodeOptions) error {
	if err := opts.Validate(imagebuf.UInt8); err != nil {
		return err
	}
	if buf.Width > maxDimension || buf.Height > maxDimension {
		return fmt.Errorf("%w: %dx%d, icons are at most %d square", codec.ErrImageTooLarge, buf.Width, buf.Height, maxDimension)
	}

	var payload bytes.Buffer
	if err := png.Encode(&payload, buf.Image()); err != nil {
		return err
	}

	var hdr [dirSize + entrySize]byte
	binary.LittleEndian.PutUint16(hdr[2:], 1) // type: icon
	binary.LittleEndian.PutUint16(hdr[4:], 1) // count
	e := hdr[dirSize:]
	e[0] = uint8(buf.Width % maxDimension)
	e[1] = uint8(buf.Height % maxDimension)
	binary.LittleEndian.PutUint16(e[4:], 1)  // planes
	binary.LittleEndian.PutUint16(e[6:], 32) // bit count
	binary.LittleEndian.PutUint32(e[8:], uint32(payload.Len()))
	binary.LittleEndian.PutUint32(e[12:], dirSize+entrySize)

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := payload.WriteTo(w)
	return err
}

// Decode reads the first entry of an icon
func (c *Codec) Decode(r io.Reader) (*imagebuf.Buffer, error) {
	var dir [dirSize]byte
	if _, err := io.ReadFull(r, dir[:]); err != nil {
		return nil, fmt.Errorf("%w: directory: %v", codec.ErrInvalidData, err)
	}
	typ := binary.LittleEndian.Uint16(dir[2:])
	count := int(binary.LittleEndian.Uint16(dir[4:]))
	if binary.LittleEndian.Uint16(dir[0:]) != 0 || typ != 1 || count == 0 {
		return nil, fmt.Errorf("%w: not an icon (type %d, %d entries)", codec.ErrInvalidData, typ, count)
	}

	entries := make([]byte, count*entrySize)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("%w: entries: %v", codec.ErrInvalidData, err)
	}
	size := int64(binary.LittleEndian.Uint32(entries[8:]))
	offset := int64(binary.LittleEndian.Uint32(entries[12:]))
	pos := int64(dirSize + len(entries))
	if offset < pos {
		return nil, fmt.Errorf("%w: entry offset %d", codec.ErrInvalidData, offset)
	}
	if _, err := io.CopyN(io.Discard, r, offset-pos); err != nil {
		return nil, fmt.Errorf("%w: seek to entry: %v", codec.ErrInvalidData, err)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: entry data: %v", codec.ErrInvalidData, err)
	}
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, fmt.Errorf("%w: only PNG icon entries are supported", codec.ErrInvalidData)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return imagebuf.FromImage(img)
}

func init() {
	codec.Register(NewCodec())
}
