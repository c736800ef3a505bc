// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess isn't a real test; it's the subprocess body stood in
// for the real pandoc/wkhtmltopdf binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	if os.Getenv("HELPER_FAIL") == "1" {
		os.Stderr.WriteString("boom")
		os.Exit(1)
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			// the last argument is the output path for both invocation shapes this
			// package builds (positional for wkhtmltopdf, "-o" for pandoc).
			rest := args[i+1:]
			out := rest[len(rest)-1]
			os.WriteFile(out, []byte("converted"), 0o644)
			break
		}
	}
	os.Exit(0)
}

func fakeExecCommandContext(fail bool) func(ctx context.Context, command string, args ...string) *exec.Cmd {
	return func(ctx context.Context, command string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", command}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		env := []string{"GO_WANT_HELPER_PROCESS=1"}
		if fail {
			env = append(env, "HELPER_FAIL=1")
		}
		cmd.Env = env
		return cmd
	}
}

func withFakeExec(t *testing.T, fail bool) {
	t.Helper()
	old := execCommandContext
	execCommandContext = fakeExecCommandContext(fail)
	t.Cleanup(func() { execCommandContext = old })
}

func TestConvert_PDFWritesOutputFile(t *testing.T) {
	withFakeExec(t, false)
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html></html>"), 0o644))

	c := NewExecConverter()
	out, err := c.Convert(context.Background(), PDF, htmlPath, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "doc.pdf"), out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "converted", string(data))
}

func TestConvert_EpubAndDocxUsePandoc(t *testing.T) {
	withFakeExec(t, false)
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html></html>"), 0o644))

	c := NewExecConverter()
	for _, kind := range []Kind{Epub, Docx} {
		out, err := c.Convert(context.Background(), kind, htmlPath, dir)
		require.NoError(t, err)
		assert.FileExists(t, out)
	}
}

func TestConvert_PropagatesStderrOnFailure(t *testing.T) {
	withFakeExec(t, true)
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "doc.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<html></html>"), 0o644))

	c := NewExecConverter()
	_, err := c.Convert(context.Background(), PDF, htmlPath, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestConvert_UnsupportedKind(t *testing.T) {
	c := NewExecConverter()
	_, err := c.Convert(context.Background(), Kind("rtf"), "doc.html", t.TempDir())
	assert.Error(t, err)
}
