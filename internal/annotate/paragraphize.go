package annotate

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/util"
)

var markdown = goldmark.New()

// Paragraphize converts blank-line separated text to HTML paragraphs. Raw HTML
// in the input is not passed through.
func Paragraphize(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// escapeText escapes s the way Paragraphize escapes text nodes, so a phrase
// from the plain body can be found in the rendered HTML.
func escapeText(s string) string {
	return string(util.EscapeHTML([]byte(s)))
}
