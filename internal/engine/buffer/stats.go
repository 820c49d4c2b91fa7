package buffer

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Stats summarizes the current content.
type Stats struct {
	Words              int // Tokens separated by spaces, tabs or newlines
	Characters         int // User-perceived characters (grapheme clusters)
	CharactersNoSpaces int // Characters excluding spaces, tabs and newlines
	Lines              int // Newline-separated lines; 0 for an empty buffer
}

// Stats computes statistics for the current content.
func (b *Buffer) Stats() Stats {
	return ComputeStats(b.Content())
}

// ComputeStats computes statistics for text.
func ComputeStats(text string) Stats {
	if text == "" {
		return Stats{}
	}

	stripped := strings.Map(func(r rune) rune {
		if isWordSeparator(r) {
			return -1
		}
		return r
	}, text)

	return Stats{
		Words:              len(strings.FieldsFunc(text, isWordSeparator)),
		Characters:         uniseg.GraphemeClusterCount(text),
		CharactersNoSpaces: uniseg.GraphemeClusterCount(stripped),
		Lines:              strings.Count(text, "\n") + 1,
	}
}

func isWordSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}
