package jsxcss

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/jsxcss/internal/extract"
)

// ExtractConfig holds batch extraction configuration
type ExtractConfig struct {
	SourceDir string   // "src"
	Includes  []string // ["**/*.{js,jsx,ts,tsx}"]
	// OutputDir receives the rewritten sources, mirroring their paths
	// below SourceDir. Empty means nothing is written.
	OutputDir string

	Modules            []string
	CSSMode            CSSMode
	ClassNames         string // "hash" (default) or "counter"
	ClassNamePropKey   string
	MediaQueries       []MediaQuery
	WhitelistedModules []string
	Aliases            map[string]string // bare module specifier → file
	NoEvaluateVars     bool
	WarningsAsErrors   bool
	Pretty             bool
	SourceMap          bool
	Concurrency        int // 0 = GOMAXPROCS

	Logger *zap.Logger
}

func (c ExtractConfig) withDefaults() ExtractConfig {
	if c.SourceDir == "" {
		c.SourceDir = "."
	}
	if len(c.Includes) == 0 {
		c.Includes = DefaultIncludes
	}
	if c.Concurrency <= 0 {
		c.Concurrency = runtime.GOMAXPROCS(0)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// FileResult is the outcome for one source file.
type FileResult struct {
	Path       string
	OutputPath string // empty when nothing was written
	CSSPath    string
	Changed    bool
	Stats      Stats
}

// ExtractRunResult contains batch extraction stats
type ExtractRunResult struct {
	ScanStats
	FilesChanged int
	FilesWritten int
	Files        []FileResult
	Issues       []Issue
	Stats        Stats
	Warnings     []string
}

// ErrorCount counts issues with error severity.
func (r *ExtractRunResult) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// ExtractFiles extracts every source file matched by the configuration.
//
// Files are processed in parallel. A file that cannot be read, parsed or
// written is reported and skipped; the other files are still processed and
// the per-file errors are returned together with the result.
func ExtractFiles(ctx context.Context, config ExtractConfig) (*ExtractRunResult, error) {
	config = config.withDefaults()
	log := config.Logger.Named("batch")

	// 1. Scan source files
	files, scanStats, err := scanSourceFiles(config.SourceDir, config.OutputDir, config.Includes)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	log.Debug("Scanned sources",
		zap.Int("files", scanStats.FilesScanned),
		zap.Int("skipped", scanStats.FilesSkipped))

	className, err := batchClassNames(config.ClassNames)
	if err != nil {
		return nil, err
	}
	opts := extract.Options{
		Modules:            config.Modules,
		ClassNamePropKey:   config.ClassNamePropKey,
		ClassName:          className,
		MediaQueries:       config.MediaQueries,
		CSSMode:            config.CSSMode,
		WhitelistedModules: config.WhitelistedModules,
		Loader:             NewFileModuleLoader(config.Aliases),
		NoEvaluateVars:     config.NoEvaluateVars,
		WarningsAsErrors:   config.WarningsAsErrors,
		Pretty:             config.Pretty,
		SourceMap:          config.SourceMap,
		Logger:             config.Logger,
	}

	// 2. Extract in parallel; only cancellation stops the run
	outcomes := make([]fileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = extractFile(gctx, file, config, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 3. Aggregate in discovery order
	result := &ExtractRunResult{ScanStats: scanStats}
	var errs error
	for _, o := range outcomes {
		result.Issues = append(result.Issues, o.issues...)
		if o.err != nil {
			errs = multierr.Append(errs, o.err)
			result.Warnings = append(result.Warnings, o.err.Error())
			continue
		}
		if o.skipped {
			continue
		}
		result.Files = append(result.Files, o.file)
		result.Stats.Add(o.file.Stats)
		if o.file.Changed {
			result.FilesChanged++
		}
		if o.file.OutputPath != "" {
			result.FilesWritten++
		}
	}
	return result, errs
}

type fileOutcome struct {
	file    FileResult
	issues  []Issue
	skipped bool
	err     error
}

func extractFile(ctx context.Context, path string, config ExtractConfig, opts extract.Options) fileOutcome {
	var out fileOutcome
	src, err := os.ReadFile(path)
	if err != nil {
		out.err = fmt.Errorf("read %s: %w", path, err)
		return out
	}

	res, err := extract.Extract(ctx, src, path, opts)
	if err != nil {
		// Unparseable sources are an issue of that file, not of the run.
		out.issues = append(out.issues, issueFromError(path, err))
		out.skipped = true
		return out
	}
	for _, d := range res.Diagnostics {
		out.issues = append(out.issues, IssueFromDiagnostic(d))
	}

	out.file = FileResult{
		Path:    path,
		Changed: res.JS != string(src),
		Stats:   res.Stats,
	}
	if config.OutputDir == "" {
		return out
	}

	rel, err := filepath.Rel(config.SourceDir, path)
	if err != nil {
		out.err = fmt.Errorf("relative path of %s: %w", path, err)
		return out
	}
	outPath := filepath.Join(config.OutputDir, rel)
	if err := writeOutputs(outPath, res); err != nil {
		out.err = err
		return out
	}
	out.file.OutputPath = outPath
	if res.CSSFileName != "" {
		out.file.CSSPath = filepath.Join(filepath.Dir(outPath), res.CSSFileName)
	}
	return out
}

func writeOutputs(outPath string, res *ExtractResult) error {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	js := res.JS
	if res.Map != "" {
		mapPath := outPath + ".map"
		if err := os.WriteFile(mapPath, []byte(res.Map), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", mapPath, err)
		}
		js += "\n//# sourceMappingURL=" + filepath.Base(mapPath) + "\n"
	}
	if err := os.WriteFile(outPath, []byte(js), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	if res.CSSFileName != "" {
		cssPath := filepath.Join(dir, res.CSSFileName)
		if err := os.WriteFile(cssPath, []byte(res.CSS), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cssPath, err)
		}
	}
	return nil
}

// batchClassNames returns a class name function safe for the parallel
// workers of one run.
func batchClassNames(strategy string) (ClassNameFunc, error) {
	switch strategy {
	case "", "hash":
		return HashClassNames(), nil
	case "counter":
		var mu sync.Mutex
		next := StrategyCounter()
		names := make(map[string]string)
		return func(key string) string {
			mu.Lock()
			defer mu.Unlock()
			if name, ok := names[key]; ok {
				return name
			}
			name := next(key)
			names[key] = name
			return name
		}, nil
	}
	return nil, fmt.Errorf("unknown class name strategy %q (want hash or counter)", strategy)
}
