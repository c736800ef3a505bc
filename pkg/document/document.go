// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/wkelly17/bibleassembler/pkg/api"
)

const compactTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{title}}</title></head>
<body class="layout-compact">
{{{content}}}
</body>
</html>`

const standardTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{title}}</title>
<link rel="stylesheet" href="style.css">
</head>
<body class="layout-standard">
<header class="doc-header"><h1>{{title}}</h1></header>
<main>
{{{content}}}
</main>
<footer class="doc-footer"><p>{{footerText}}</p></footer>
</body>
</html>`

// wrapperData is the context handed to the Handlebars-style templates.
type wrapperData struct {
	Title      string             `json:"title"`
	Content    raymond.SafeString `json:"content"`
	FooterText string             `json:"footerText"`
}

// selectTemplate picks the compact vs. standard wrapper, keyed off the
// effective layout, not off LayoutForPrint directly (every
// _COMPACT layout uses the compact wrapper, matching how compact layouts
// were themselves defaulted in for print mode, see pkg/api's defaulting
// rule).
func selectTemplate(layout api.AssemblyLayoutKind) string {
	if strings.HasSuffix(string(layout), "_COMPACT") {
		return compactTemplate
	}
	return standardTemplate
}

// Wrap concatenates header + body + word-definitions + footer into the
// final document HTML.
func Wrap(title string, layout api.AssemblyLayoutKind, bodyFragments, wordDefFragments []string) (string, error) {
	tpl, err := raymond.Parse(selectTemplate(layout))
	if err != nil {
		return "", fmt.Errorf("document: parsing wrapper template: %w", err)
	}

	var content strings.Builder
	for _, f := range bodyFragments {
		content.WriteString(f)
		content.WriteString("\n")
	}
	for _, f := range wordDefFragments {
		content.WriteString(f)
		content.WriteString("\n")
	}

	out, err := tpl.Exec(wrapperData{
		Title:      title,
		Content:    raymond.SafeString(content.String()),
		FooterText: "Generated by bibleassembler",
	})
	if err != nil {
		return "", fmt.Errorf("document: executing wrapper template: %w", err)
	}
	return out, nil
}

// Write assembles the final document for req, under outputDir, and
// returns the document key it was written under
// (`{outputDir}/{documentKey}.html`).
func Write(outputDir string, req api.DocumentRequest, title string, bodyFragments, wordDefFragments []string, nowUnix int64) (string, error) {
	key := Key(req, nowUnix)

	html, err := Wrap(title, req.AssemblyLayoutKind, bodyFragments, wordDefFragments)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("document: creating output dir %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, key+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("document: writing %s: %w", path, err)
	}
	return key, nil
}
