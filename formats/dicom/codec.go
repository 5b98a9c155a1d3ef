// Package dicom registers a read-only DICOM plugin backed by
// github.com/cocosip/go-dicom. Encapsulated transfer syntaxes are transcoded
// to Explicit VR Little Endian through the go-dicom codec registry before
// the first frame is narrowed to 8 bits.
package dicom

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/imaging"
	dcmcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"

	"github.com/cocosip/go-image-big64/codec"
	"github.com/cocosip/go-image-big64/imagebuf"
)

// Codec implements codec.FileDecoder. It has no encoder, so the sweep
// reports dicom as a format without writer support.
type Codec struct{}

// NewCodec creates a DICOM reader
func NewCodec() *Codec {
	return &Codec{}
}

// Name returns the format name
func (c *Codec) Name() string { return "dicom" }

// Extensions returns the claimed extensions
func (c *Codec) Extensions() []string { return []string{"dcm"} }

// DecodeFile parses path and returns its first frame as 8-bit samples
func (c *Codec) DecodeFile(path string) (*imagebuf.Buffer, error) {
	res, err := parser.ParseFile(path, parser.WithReadOption(parser.ReadAll))
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	ds := res.Dataset
	if res.TransferSyntax != nil && res.TransferSyntax.IsEncapsulated() {
		tr := dcmcodec.NewTranscoder(res.TransferSyntax, transfer.ExplicitVRLittleEndian,
			dcmcodec.WithCodecRegistry(dcmcodec.GetGlobalRegistry()))
		newDS, err := tr.Transcode(ds)
		if err != nil {
			return nil, fmt.Errorf("transcode failed: %w", err)
		}
		ds = newDS
	}

	rows := int(ds.TryGetUInt16(tag.Rows, 0))
	cols := int(ds.TryGetUInt16(tag.Columns, 0))
	spp := int(ds.TryGetUInt16(tag.SamplesPerPixel, 0))
	bitsStored := int(ds.TryGetUInt16(tag.BitsStored, 0))
	if spp == 0 {
		spp = 1
	}
	if rows == 0 || cols == 0 || spp > imagebuf.MaxChannels {
		return nil, fmt.Errorf("%w: %dx%d, %d samples per pixel", codec.ErrInvalidData, cols, rows, spp)
	}

	pd, err := imaging.CreatePixelData(ds)
	if err != nil {
		return nil, fmt.Errorf("%w: pixel data: %v", codec.ErrInvalidData, err)
	}
	frame, err := pd.GetFrame(0)
	if err != nil {
		return nil, fmt.Errorf("%w: frame 0: %v", codec.ErrInvalidData, err)
	}

	buf, err := imagebuf.New(cols, rows, spp)
	if err != nil {
		return nil, err
	}
	if err := narrow(buf.Pix, frame, bitsStored); err != nil {
		return nil, err
	}
	return buf, nil
}

// narrow copies frame into dst, reducing 16-bit little-endian samples to
// their top 8 stored bits. The sample width is derived from the frame size.
func narrow(dst, frame []byte, bitsStored int) error {
	switch len(frame) {
	case len(dst):
		copy(dst, frame)
		return nil
	case 2 * len(dst):
	default:
		return fmt.Errorf("%w: frame holds %d bytes for %d samples", codec.ErrInvalidData, len(frame), len(dst))
	}

	shift := 8
	if bitsStored > 8 && bitsStored <= 16 {
		shift = bitsStored - 8
	}
	for i := range dst {
		v := uint16(frame[2*i]) | uint16(frame[2*i+1])<<8
		v >>= shift
		if v > 0xff {
			v = 0xff
		}
		dst[i] = uint8(v)
	}
	return nil
}

func init() {
	codec.Register(NewCodec())
}
