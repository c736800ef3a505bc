// SPDX-License-Identifier: Apache-2.0

// Package convert invokes external pandoc/wkhtmltopdf-style binaries to
// turn a written HTML document into the optional PDF/ePub/DOCX output
// formats, writing via the external representation rather than a
// hand-rolled renderer.
package convert

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Kind identifies an output format a Converter can produce.
type Kind string

const (
	PDF  Kind = "pdf"
	Epub Kind = "epub"
	Docx Kind = "docx"
)

// timeout bounds a single external converter invocation.
const timeout = 2 * time.Minute

// execCommandContext is swapped out in tests to avoid depending on a real
// pandoc/wkhtmltopdf binary being on PATH.
var execCommandContext = exec.CommandContext

// Converter turns a written HTML document into another output format,
// returning the path of the produced file.
//
//counterfeiter:generate . Converter
type Converter interface {
	Convert(ctx context.Context, kind Kind, htmlPath, outDir string) (string, error)
}

// ExecConverter shells out to pandoc for ePub/DOCX and wkhtmltopdf for PDF.
// Both binaries are resolved on PATH unless overridden.
type ExecConverter struct {
	PandocPath      string
	WkhtmltopdfPath string
}

// NewExecConverter returns an ExecConverter using the default binary names.
func NewExecConverter() *ExecConverter {
	return &ExecConverter{PandocPath: "pandoc", WkhtmltopdfPath: "wkhtmltopdf"}
}

// Convert runs the external binary for kind against htmlPath, writing its
// output into outDir and returning the produced file's path.
func (e *ExecConverter) Convert(ctx context.Context, kind Kind, htmlPath, outDir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := strings.TrimSuffix(filepath.Base(htmlPath), filepath.Ext(htmlPath))
	out := filepath.Join(outDir, fmt.Sprintf("%s.%s", base, kind))

	var cmd *exec.Cmd
	switch kind {
	case PDF:
		cmd = execCommandContext(ctx, e.bin(e.WkhtmltopdfPath, "wkhtmltopdf"), htmlPath, out)
	case Epub, Docx:
		cmd = execCommandContext(ctx, e.bin(e.PandocPath, "pandoc"), htmlPath, "-o", out)
	default:
		return "", fmt.Errorf("convert: unsupported kind %q", kind)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := stderr.String(); msg != "" {
			return "", fmt.Errorf("convert %s: %w\nstderr: %s", kind, err, msg)
		}
		return "", fmt.Errorf("convert %s: %w", kind, err)
	}
	return out, nil
}

func (e *ExecConverter) bin(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}
