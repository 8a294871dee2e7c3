package renderer

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var converter = goldmark.New(goldmark.WithExtensions(extension.GFM))

const page = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s</body>
</html>
`

// HTML converts a markdown report into a standalone html page.
func HTML(title, markdown string) (string, error) {
	var body bytes.Buffer
	if err := converter.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("cannot convert report to html: %w", err)
	}
	return fmt.Sprintf(page, html.EscapeString(title), body.String()), nil
}
