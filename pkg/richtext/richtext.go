// Package richtext renders CMS richtext values (markdown) to HTML.
package richtext

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// ToHTML converts markdown source to HTML. Raw HTML in the source is omitted.
func ToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render richtext: %w", err)
	}
	return buf.String(), nil
}
