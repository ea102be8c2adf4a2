package glyph

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

var bufferPool = sync.Pool{New: func() any { return new(sfnt.Buffer) }}

func getBuffer() *sfnt.Buffer  { return bufferPool.Get().(*sfnt.Buffer) }
func putBuffer(b *sfnt.Buffer) { bufferPool.Put(b) }

// Library maps font family names to parsed fonts. Lookups for families
// that were never registered resolve to the Go fonts, so rendering never
// blocks on a missing face. Safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	fonts    map[string]*sfnt.Font
	names    map[string]string
	fallback *sfnt.Font
	mono     *sfnt.Font
}

func NewLibrary() *Library {
	return &Library{
		fonts:    make(map[string]*sfnt.Font),
		names:    make(map[string]string),
		fallback: mustParse(goregular.TTF),
		mono:     mustParse(gomono.TTF),
	}
}

func mustParse(data []byte) *sfnt.Font {
	f, err := sfnt.Parse(data)
	if err != nil {
		panic(fmt.Sprintf("glyph: parse built-in font: %v", err))
	}
	return f
}

func normalizeFamily(family string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(family), `"'`))
}

// Register parses font data and files it under its family name.
func (l *Library) Register(data []byte) (string, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFont, err)
	}
	buf := getBuffer()
	defer putBuffer(buf)
	family, err := f.Name(buf, sfnt.NameIDTypographicFamily)
	if err != nil || family == "" {
		family, err = f.Name(buf, sfnt.NameIDFamily)
		if err != nil {
			return "", fmt.Errorf("%w: family name: %v", ErrInvalidFont, err)
		}
	}
	l.RegisterAs(family, f)
	return family, nil
}

// RegisterAs files an already parsed font under the given family name.
func (l *Library) RegisterAs(family string, f *sfnt.Font) {
	key := normalizeFamily(family)
	l.mu.Lock()
	l.fonts[key] = f
	l.names[key] = family
	l.mu.Unlock()
}

// LoadFile registers a .ttf or .otf file.
func (l *Library) LoadFile(path string) (string, error) {
	if !hasFontExtension(path) {
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidFont, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	family, err := l.Register(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return family, nil
}

// LoadDir registers every font file below dir. Files that fail to parse
// are logged and skipped.
func (l *Library) LoadDir(dir string) (int, error) {
	loaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasFontExtension(path) {
			return nil
		}
		family, err := l.LoadFile(path)
		if err != nil {
			slog.Warn("skipping font", "path", path, "error", err)
			return nil
		}
		slog.Debug("font loaded", "family", family, "path", path)
		loaded++
		return nil
	})
	return loaded, err
}

// Has reports whether family was registered.
func (l *Library) Has(family string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.fonts[normalizeFamily(family)]
	return ok
}

// Lookup returns the font for family. When the family is unknown the Go
// fonts stand in (Go Mono for families naming a monospace face) and exact
// is false.
func (l *Library) Lookup(family string) (f *sfnt.Font, exact bool) {
	key := normalizeFamily(family)
	l.mu.RLock()
	f, ok := l.fonts[key]
	l.mu.RUnlock()
	if ok {
		return f, true
	}
	if strings.Contains(key, "mono") {
		return l.mono, false
	}
	return l.fallback, false
}

// Families lists registered family names, sorted.
func (l *Library) Families() []string {
	l.mu.RLock()
	out := make([]string, 0, len(l.names))
	for _, name := range l.names {
		out = append(out, name)
	}
	l.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (l *Library) missing(families []string) []string {
	var out []string
	for _, family := range families {
		if family != "" && !l.Has(family) {
			out = append(out, family)
		}
	}
	return out
}

func hasFontExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}
