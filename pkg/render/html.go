package render

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// HTML renders markdown into a standalone page. Relative image links keep
// working as long as the page sits next to the markdown file.
func HTML(title, source string) ([]byte, error) {
	var body bytes.Buffer

	if err := markdown.Convert([]byte(source), &body); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")

	return buf.Bytes(), nil
}
