package codec

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cocosip/go-image-big64/imagebuf"
)

const fileBufferSize = 1 << 20

// WriteFile encodes buf into filename using the named format. An empty
// formatName selects the format from the file extension.
func (r *Registry) WriteFile(buf *imagebuf.Buffer, filename string, pixelType imagebuf.PixelType, formatName string) (err error) {
	var enc Encoder
	if formatName == "" {
		f, ferr := r.ByExtension(filepath.Ext(filename))
		if ferr != nil {
			return ferr
		}
		formatName = f.Name()
	}
	enc, err = r.CreateWriter(formatName)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriterSize(file, fileBufferSize)
	if err := enc.Encode(w, buf, EncodeOptions{PixelType: pixelType}); err != nil {
		return fmt.Errorf("%s encode %s: %w", formatName, filename, err)
	}
	return w.Flush()
}

// ReadFile decodes filename, choosing the format from its extension.
// forceType names the in-memory sample type; buffers are 8-bit, so only
// UInt8 (or Unknown) is accepted and wider samples are narrowed.
func (r *Registry) ReadFile(filename string, forceType imagebuf.PixelType) (*imagebuf.Buffer, error) {
	if forceType != imagebuf.Unknown && forceType != imagebuf.UInt8 {
		return nil, fmt.Errorf("%w: read as %s", ErrUnsupportedPixelType, forceType)
	}
	f, err := r.ByExtension(filepath.Ext(filename))
	if err != nil {
		return nil, err
	}

	if fd, ok := f.(FileDecoder); ok {
		buf, err := fd.DecodeFile(filename)
		if err != nil {
			return nil, fmt.Errorf("%s decode %s: %w", f.Name(), filename, err)
		}
		return buf, nil
	}

	dec, ok := f.(Decoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoReader, f.Name())
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf, err := dec.Decode(bufio.NewReaderSize(file, fileBufferSize))
	if err != nil {
		return nil, fmt.Errorf("%s decode %s: %w", f.Name(), filename, err)
	}
	return buf, nil
}

// CreateWriter returns the encoder for a format in the default registry
func CreateWriter(name string) (Encoder, error) {
	return defaultRegistry.CreateWriter(name)
}

// ExtensionList describes the default registry, see Registry.ExtensionList
func ExtensionList() string {
	return defaultRegistry.ExtensionList()
}

// WriteFile writes through the default registry
func WriteFile(buf *imagebuf.Buffer, filename string, pixelType imagebuf.PixelType, formatName string) error {
	return defaultRegistry.WriteFile(buf, filename, pixelType, formatName)
}

// ReadFile reads through the default registry
func ReadFile(filename string, forceType imagebuf.PixelType) (*imagebuf.Buffer, error) {
	return defaultRegistry.ReadFile(filename, forceType)
}

// IsCapabilityMiss reports whether err means the format cannot be written at all
func IsCapabilityMiss(err error) bool {
	return errors.Is(err, ErrNoWriter) || errors.Is(err, ErrFormatNotFound)
}
