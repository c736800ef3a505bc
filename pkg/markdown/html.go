// SPDX-License-Identifier: Apache-2.0

package markdown

import "bytes"

// ToHTML renders source Markdown to HTML using the same goldmark instance
// (GFM + frontmatter extensions) that Parse uses for AST inspection, so
// callers that need both inspection and final HTML see identical parsing
// behavior.
func ToHTML(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := gmParser.Convert(source, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
