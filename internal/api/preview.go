package api

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

const previewShell = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s</body>
</html>
`

// newMarkdown returns the goldmark engine used for HTML previews. Raw HTML in
// the document is escaped.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

func renderHTML(md goldmark.Markdown, title string, src []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("api: render html: %w", err)
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, previewShell, html.EscapeString(title), body.String())
	return out.Bytes(), nil
}
