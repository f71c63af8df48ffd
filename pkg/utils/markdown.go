package utils

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// goldmark escapes raw HTML unless html.WithUnsafe is set, so descriptions
// written by trainers cannot inject markup.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Linkify, extension.Strikethrough))

// RenderMarkdown converts a content description to HTML. Empty input renders
// to an empty string.
func RenderMarkdown(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
