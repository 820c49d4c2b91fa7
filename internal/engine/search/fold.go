package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/agilitext/internal/engine/buffer"
)

// folded is a lower-cased copy of some text with offset maps back to it.
// The maps are nil when folding kept every rune the same width.
type folded struct {
	src  string
	text string

	toOrig   []int // folded offset -> original offset, len(text)+1 entries
	toFolded []int // original offset -> folded offset, len(src)+1 entries
}

// foldString lower-cases s rune by rune. Invalid bytes are kept as is.
func foldString(s string) string {
	return foldText(s).text
}

func foldText(s string) *folded {
	if sameWidthFold(s) {
		return &folded{src: s, text: mapLower(s)}
	}

	var sb strings.Builder
	sb.Grow(len(s))
	toFolded := make([]int, len(s)+1)
	toOrig := make([]int, 0, len(s)+1)

	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		start := sb.Len()
		if r == utf8.RuneError && w == 1 {
			sb.WriteByte(s[i])
		} else {
			sb.WriteRune(unicode.ToLower(r))
		}
		for k := 0; k < w; k++ {
			toFolded[i+k] = start
		}
		for j := start; j < sb.Len(); j++ {
			toOrig = append(toOrig, i)
		}
		i += w
	}
	toFolded[len(s)] = sb.Len()
	toOrig = append(toOrig, len(s))

	return &folded{
		src:      s,
		text:     sb.String(),
		toOrig:   toOrig,
		toFolded: toFolded,
	}
}

// mapLower folds s when every rune keeps its width.
func mapLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r == utf8.RuneError {
			return r
		}
		return unicode.ToLower(r)
	}, s)
}

// sameWidthFold reports whether folding s keeps all byte offsets stable.
func sameWidthFold(s string) bool {
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError {
			// strings.Map would rewrite invalid bytes, take the slow path
			if w == 1 {
				return false
			}
		} else if utf8.RuneLen(unicode.ToLower(r)) != w {
			return false
		}
		i += w
	}
	return true
}

// folded returns the folded offset for an offset in the original text.
func (f *folded) fold(offset int) int {
	if f.toFolded == nil {
		return offset
	}
	return f.toFolded[offset]
}

// original maps a match in the folded text back to the original text.
func (f *folded) original(start, end int) buffer.Range {
	if f.toOrig == nil {
		return buffer.NewRange(start, end)
	}
	r := buffer.NewRange(f.toOrig[start], f.toOrig[end])
	if end == len(f.text) {
		r.End = len(f.src)
	} else if end > 0 && f.toOrig[end] == f.toOrig[end-1] {
		// match ended inside a multi-byte fold, round up to the next rune
		_, w := utf8.DecodeRuneInString(f.src[r.End:])
		r.End += w
	}
	return r
}
