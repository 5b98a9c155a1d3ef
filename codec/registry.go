package codec

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry manages the available formats
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format // keyed by name
	byExt   map[string]Format // keyed by lower-case extension without the dot
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Format),
		byExt:   make(map[string]Format),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that plugins register into
func Default() *Registry {
	return defaultRegistry
}

// Register registers a format with the default registry
func Register(f Format) {
	defaultRegistry.Register(f)
}

// Get retrieves a format by name from the default registry
func Get(name string) (Format, error) {
	return defaultRegistry.Get(name)
}

// List returns all formats in the default registry
func List() []Format {
	return defaultRegistry.List()
}

// Register registers a format under its name and every extension it claims.
// It panics if f is nil, if the name is already registered, or if another
// format already claims one of the extensions.
func (r *Registry) Register(f Format) {
	if f == nil {
		panic("codec: Register format is nil")
	}
	name := f.Name()
	exts := f.Extensions()
	if name == "" || len(exts) == 0 {
		panic("codec: Register format needs a name and at least one extension")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.formats[name]; dup {
		panic("codec: Register called twice for format " + name)
	}
	for _, ext := range exts {
		if other, dup := r.byExt[normExt(ext)]; dup {
			panic(fmt.Sprintf("codec: extension %q of %s already claimed by %s", ext, name, other.Name()))
		}
	}

	r.formats[name] = f
	for _, ext := range exts {
		r.byExt[normExt(ext)] = f
	}
}

// Get retrieves a format by name
func (r *Registry) Get(name string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formats[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotFound, name)
	}
	return f, nil
}

// ByExtension retrieves a format by file extension, with or without the dot
func (r *Registry) ByExtension(ext string) (Format, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.byExt[normExt(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: extension %q", ErrFormatNotFound, ext)
	}
	return f, nil
}

// List returns all registered formats sorted by name
func (r *Registry) List() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]Format, 0, len(r.formats))
	for _, f := range r.formats {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i].Name() < formats[j].Name() })
	return formats
}

// ExtensionList describes every format as "name:ext,ext" joined by ";",
// sorted by name, e.g. "bmp:bmp,dib;png:png".
func (r *Registry) ExtensionList() string {
	var sb strings.Builder
	for i, f := range r.List() {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(f.Name())
		sb.WriteByte(':')
		sb.WriteString(strings.Join(f.Extensions(), ","))
	}
	return sb.String()
}

// CreateWriter returns the encoder for a format. It fails with
// ErrFormatNotFound for unknown names and ErrNoWriter for read-only formats.
func (r *Registry) CreateWriter(name string) (Encoder, error) {
	f, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	enc, ok := f.(Encoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoWriter, name)
	}
	return enc, nil
}

func normExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
