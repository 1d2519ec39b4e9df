package attachments

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// Converter turns file content into markdown.
//
// Implementations should be stateless and thread-safe.
type Converter interface {
	Convert(ctx context.Context, input []byte) (string, error)

	// MIMETypes and Extensions select the converter. Extensions include the
	// leading dot.
	MIMETypes() []string
	Extensions() []string

	// Name is used in logs.
	Name() string
}

// converterRegistry routes files to converters by MIME type, then by
// extension for uploads that arrive as application/octet-stream.
type converterRegistry struct {
	mu     sync.RWMutex
	byMIME map[string]Converter
	byExt  map[string]Converter
}

func newConverterRegistry(converters ...Converter) *converterRegistry {
	r := &converterRegistry{
		byMIME: make(map[string]Converter),
		byExt:  make(map[string]Converter),
	}
	for _, c := range converters {
		r.register(c)
	}
	return r
}

func (r *converterRegistry) register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range c.MIMETypes() {
		r.byMIME[strings.ToLower(m)] = c
	}
	for _, ext := range c.Extensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.byExt[ext] = c
	}
}

// lookup returns nil when nothing handles the file.
func (r *converterRegistry) lookup(name, mimeType string) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byMIME[baseMIME(mimeType)]; ok {
		return c
	}
	return r.byExt[strings.ToLower(filepath.Ext(name))]
}

// baseMIME drops parameters such as "; charset=utf-8".
func baseMIME(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
