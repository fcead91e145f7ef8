package jsxcss

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yacobolo/jsxcss/internal/extract"
)

// ErrModuleNotFound is returned when a specifier does not resolve to a file.
var ErrModuleNotFound = errors.New("jsxcss: module not found")

// DefaultModuleExtensions are tried, in order, for specifiers without a
// file extension.
var DefaultModuleExtensions = []string{".js", ".jsx", ".mjs", ".ts", ".tsx"}

// FileModuleLoader evaluates the static exports of whitelisted modules
// from disk. Each file is evaluated once per loader, so one loader can be
// shared by every file of a build. It is safe for concurrent use.
type FileModuleLoader struct {
	// Extensions defaults to DefaultModuleExtensions.
	Extensions []string
	// Aliases map bare specifiers to file paths.
	Aliases map[string]string

	mu      sync.Mutex
	modules map[string]*moduleEntry
}

type moduleEntry struct {
	once    sync.Once
	exports Props
	err     error
}

// NewFileModuleLoader creates a loader with an empty cache.
func NewFileModuleLoader(aliases map[string]string) *FileModuleLoader {
	return &FileModuleLoader{Aliases: aliases}
}

// Load implements extract.ModuleLoader.
func (l *FileModuleLoader) Load(ctx context.Context, specifier, importer string) (Props, error) {
	path, err := l.resolve(specifier, importer)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.modules == nil {
		l.modules = make(map[string]*moduleEntry)
	}
	entry, ok := l.modules[path]
	if !ok {
		entry = &moduleEntry{}
		l.modules[path] = entry
	}
	l.mu.Unlock()

	entry.once.Do(func() {
		src, err := os.ReadFile(path)
		if err != nil {
			entry.err = fmt.Errorf("read module %s: %w", path, err)
			return
		}
		entry.exports, entry.err = extract.ModuleExports(ctx, src, path)
	})
	if entry.err != nil && ctx.Err() != nil {
		// A load cut short by its caller is retried by the next one.
		l.mu.Lock()
		if l.modules[path] == entry {
			delete(l.modules, path)
		}
		l.mu.Unlock()
	}
	return entry.exports, entry.err
}

func (l *FileModuleLoader) resolve(specifier, importer string) (string, error) {
	var base string
	switch {
	case l.Aliases[specifier] != "":
		base = l.Aliases[specifier]
	case strings.HasPrefix(specifier, "./"), strings.HasPrefix(specifier, "../"):
		base = filepath.Join(filepath.Dir(importer), filepath.FromSlash(specifier))
	case filepath.IsAbs(specifier):
		base = specifier
	default:
		return "", fmt.Errorf("%w: %q (bare specifiers need an alias)", ErrModuleNotFound, specifier)
	}

	exts := l.Extensions
	if len(exts) == 0 {
		exts = DefaultModuleExtensions
	}
	candidates := []string{base}
	for _, ext := range exts {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range exts {
		candidates = append(candidates, filepath.Join(base, "index"+ext))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return filepath.Clean(c), nil
		}
	}
	return "", fmt.Errorf("%w: %q from %s", ErrModuleNotFound, specifier, importer)
}

var _ extract.ModuleLoader = (*FileModuleLoader)(nil)
