package jsxcss

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

const appSource = `import { Box } from "jsxstyle";
export const App = () => <Box color="red">hi</Box>;
`

const themedApp = `import { Box } from "jsxstyle";
import { theme } from "./theme";
export const App = () => <Box color={theme.primary} />;
`

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExtractFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeTree(t, src, map[string]string{
		"App.jsx":        appSource,
		"lib/plain.js":   "export const x = 1;\n",
		"lib/broken.jsx": "const = ;\n",
	})

	result, err := ExtractFiles(context.Background(), ExtractConfig{
		SourceDir: src,
		OutputDir: out,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.FilesScanned)
	assert.Len(t, result.Files, 2)
	assert.Equal(t, 1, result.FilesChanged)
	assert.Equal(t, 2, result.FilesWritten)
	assert.Equal(t, 1, result.Stats.Extracted)
	assert.Equal(t, 1, result.Stats.Rules)

	require.Len(t, result.Issues, 1)
	issue := result.Issues[0]
	assert.Equal(t, SeverityError, issue.Severity)
	assert.Equal(t, filepath.Join(src, "lib/broken.jsx"), issue.Pos.Filename)
	assert.Equal(t, 1, issue.Pos.Line)
	assert.Equal(t, 1, result.ErrorCount())

	js := readFile(t, filepath.Join(out, "App.jsx"))
	assert.Contains(t, js, `<div className="_1jvcvsh">hi</div>`)
	assert.Contains(t, js, `import "./App__jsxstyle.css";`)
	assert.Contains(t, readFile(t, filepath.Join(out, "App__jsxstyle.css")), "._1jvcvsh { color:red; }")
	assert.Equal(t, "export const x = 1;\n", readFile(t, filepath.Join(out, "lib/plain.js")))
	assert.NoFileExists(t, filepath.Join(out, "lib/broken.jsx"))

	for _, f := range result.Files {
		if filepath.Base(f.Path) == "App.jsx" {
			assert.Equal(t, filepath.Join(out, "App__jsxstyle.css"), f.CSSPath)
		}
	}
}

func TestExtractFiles_DryRun(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"App.jsx": appSource})

	result, err := ExtractFiles(context.Background(), ExtractConfig{SourceDir: src})
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesChanged)
	assert.Equal(t, 0, result.FilesWritten)
	assert.Empty(t, result.Files[0].OutputPath)
	assert.NoFileExists(t, filepath.Join(src, "App__jsxstyle.css"))
}

func TestExtractFiles_Counter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeTree(t, src, map[string]string{"App.jsx": appSource})

	_, err := ExtractFiles(context.Background(), ExtractConfig{
		SourceDir:   src,
		OutputDir:   out,
		ClassNames:  "counter",
		Concurrency: 1,
	})
	require.NoError(t, err)
	assert.Contains(t, readFile(t, filepath.Join(out, "App.jsx")), `<div className="_x0">hi</div>`)
}

func TestExtractFiles_SourceMap(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeTree(t, src, map[string]string{"App.jsx": appSource})

	_, err := ExtractFiles(context.Background(), ExtractConfig{
		SourceDir: src,
		OutputDir: out,
		SourceMap: true,
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "App.jsx.map"))
	assert.Contains(t, readFile(t, filepath.Join(out, "App.jsx")), "//# sourceMappingURL=App.jsx.map\n")
}

func TestExtractFiles_Whitelisted(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeTree(t, src, map[string]string{
		"theme.js": "export const theme = { primary: \"red\" };\n",
		"App.jsx":  themedApp,
	})

	_, err := ExtractFiles(context.Background(), ExtractConfig{
		SourceDir:          src,
		OutputDir:          out,
		WhitelistedModules: []string{"./theme"},
	})
	require.NoError(t, err)
	assert.Contains(t, readFile(t, filepath.Join(out, "App.jsx")), `<div className="_1jvcvsh" />`)
}

func TestExtractFiles_Logging(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"App.jsx": appSource})
	core, logs := observer.New(zapcore.DebugLevel)

	_, err := ExtractFiles(context.Background(), ExtractConfig{
		SourceDir: src,
		Logger:    zap.New(core),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Scanned sources").Len())
}

func TestExtractFiles_Errors(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"App.jsx": appSource})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := ExtractFiles(context.Background(), ExtractConfig{SourceDir: src, ClassNames: "short"})
		assert.ErrorContains(t, err, "unknown class name strategy")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ExtractFiles(ctx, ExtractConfig{SourceDir: src})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBatchClassNames(t *testing.T) {
	fn, err := batchClassNames("counter")
	require.NoError(t, err)
	assert.Equal(t, "_x0", fn("color:red"))
	assert.Equal(t, "_x1", fn("color:blue"))
	assert.Equal(t, "_x0", fn("color:red"))

	fn, err = batchClassNames("")
	require.NoError(t, err)
	assert.Equal(t, "_1jvcvsh", fn("color:red"))
}
