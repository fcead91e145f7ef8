package jsxcss

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yacobolo/jsxcss/internal/extract"
)

// DefaultIncludes are the source globs used when none are configured.
var DefaultIncludes = []string{"**/*.{js,jsx,mjs,ts,tsx}"}

// ScanStats tracks file scanning statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files actually scanned (after filtering)
	FilesSkipped    int // Files skipped due to filtering
}

// scanner filters discovered sources. Rules are applied relative to the
// source directory.
type scanner struct {
	sourceDir string
	outputDir string
	gitignore *ignore.GitIgnore
}

func newScanner(sourceDir, outputDir string) *scanner {
	s := &scanner{sourceDir: sourceDir}
	// In-place output does not exclude the sources themselves.
	if outputDir != "" {
		abs, err := filepath.Abs(outputDir)
		src, srcErr := filepath.Abs(sourceDir)
		if err == nil && (srcErr != nil || abs != src) {
			s.outputDir = abs
		}
	}
	// Gracefully degrade - no .gitignore is fine
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(sourceDir, ".gitignore")); err == nil {
		s.gitignore = gi
	}
	return s
}

// isGenerated reports declaration files and stylesheets written by a
// previous run.
func isGenerated(path string) bool {
	return strings.HasSuffix(path, ".d.ts") ||
		strings.HasSuffix(path, extract.CSSFileSuffix) ||
		strings.HasSuffix(path, ".map")
}

// shouldSkipFile determines if a file should be excluded from extraction.
//
// Three-layer filtering:
// 1. Pattern check: generated files and dependencies
// 2. Output check: files inside the output directory
// 3. Gitignore check: ignored files of the source tree
func (s *scanner) shouldSkipFile(path string) bool {
	if isGenerated(path) {
		return true
	}
	rel, err := filepath.Rel(s.sourceDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	if rel == "node_modules" || strings.HasPrefix(rel, "node_modules/") || strings.Contains(rel, "/node_modules/") {
		return true
	}

	if s.outputDir != "" {
		if abs, err := filepath.Abs(path); err == nil {
			if inside, err := filepath.Rel(s.outputDir, abs); err == nil && !strings.HasPrefix(inside, "..") {
				return true
			}
		}
	}

	return s.gitignore != nil && s.gitignore.MatchesPath(rel)
}

// scanSourceFiles expands includes below sourceDir and tracks statistics
func scanSourceFiles(sourceDir, outputDir string, includes []string) ([]string, ScanStats, error) {
	s := newScanner(sourceDir, outputDir)
	var files []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range includes {
		// Use doublestar for ** glob support
		matches, err := doublestar.FilepathGlob(filepath.Join(sourceDir, pattern))
		if err != nil {
			return nil, stats, fmt.Errorf("glob pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			stats.FilesDiscovered++
			if s.shouldSkipFile(match) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, match)
			stats.FilesScanned++
		}
	}

	return files, stats, nil
}

// GetRelativePath returns a relative path from the current working directory
func GetRelativePath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}

	return rel
}
