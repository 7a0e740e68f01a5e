package model

import (
	"strings"

	"github.com/k3a/html2text"
)

// Frame text fields arrive as HTML-ish rich text. These helpers derive
// plain text for logging and CLI display.

// PlainDescription returns the frame description stripped of markup.
func (f *Frame) PlainDescription() string {
	return plainText(f.Description)
}

// PlainCaption returns the frame caption stripped of markup.
func (f *Frame) PlainCaption() string {
	return plainText(f.Caption)
}

// PlainNotes returns the frame notes stripped of markup.
func (f *Frame) PlainNotes() string {
	return plainText(f.Notes)
}

func plainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html2text.HTML2Text(s))
}
