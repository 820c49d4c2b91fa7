package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/agilitext/internal/engine/buffer"
)

func TestFoldString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"ABC", "abc"},
		{"ÄÖÜ", "äöü"},
		{"ΣΑΣ", "σασ"},
		{"\u212a", "k"}, // Kelvin sign
		{"a\xffB", "a\xffb"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, foldString(tt.in), "foldString(%q)", tt.in)
	}
}

func TestFoldSameWidthHasNoMaps(t *testing.T) {
	fc := foldText("Hello ÄÖÜ")
	assert.Nil(t, fc.toOrig)
	assert.Nil(t, fc.toFolded)
	assert.Equal(t, 7, fc.fold(7))
}

func TestFoldWidthChangeMapsOffsets(t *testing.T) {
	text := "5 \u212a and k"
	fc := foldText(text)
	require.NotNil(t, fc.toOrig)

	assert.Equal(t, "5 k and k", fc.text)
	assert.Equal(t, 3, fc.fold(5))
	assert.Equal(t, buffer.NewRange(2, 5), fc.original(2, 3))
	assert.Equal(t, buffer.NewRange(10, 11), fc.original(8, 9))
}

func TestFindAcrossWidthChangingFold(t *testing.T) {
	text := "5 \u212a and k"
	f, buf := newFinder(text)

	res := f.Find("\u212a")
	require.True(t, res.Found)
	assert.Equal(t, buffer.NewRange(2, 5), res.Range)
	got, err := buf.TextRange(res.Range)
	require.NoError(t, err)
	assert.Equal(t, "\u212a", got)

	res = f.Find("k")
	require.True(t, res.Found)
	assert.Equal(t, buffer.NewRange(10, 11), res.Range)

	n, err := f.ReplaceAll("k", "kelvin")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "5 kelvin and kelvin", buf.Content())
}
