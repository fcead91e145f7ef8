package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/jsxcss/internal/report"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetKoanf()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeSource(t, src, "App.jsx", "import { Box } from \"jsxstyle\";\nexport const App = () => <Box color=\"red\" />;\n")

	stdout, err := execute(t, "extract", "--source", src, "--output-dir", out, "--output-format", "json")
	require.NoError(t, err)

	var output report.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &output))
	assert.Equal(t, 1, output.Summary.FilesChanged)
	assert.Equal(t, 1, output.Stats.Rules)
	assert.FileExists(t, filepath.Join(out, "App__jsxstyle.css"))
}

func TestExtractCommand_SyntaxErrorFails(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "broken.jsx", "const = ;\n")

	_, err := execute(t, "extract", "--source", src, "--output-dir", "", "--output-format", "issues")
	assert.ErrorIs(t, err, errExtractFailed)
}

func TestVariantsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default:\n  color: black\ndark:\n  color: white\n"), 0o644))

	stdout, err := execute(t, "variants", path)
	require.NoError(t, err)
	assert.Equal(t, ":root { --jsxstyle-color:black; }\n"+
		":root.jsxstyle-default { --jsxstyle-color:black; }\n"+
		":root.jsxstyle-dark { --jsxstyle-color:white; }\n", stdout)

	_, err = execute(t, "variants", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
