package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Stats
	}{
		{"empty", "", Stats{}},
		{"single word", "hello", Stats{Words: 1, Characters: 5, CharactersNoSpaces: 5, Lines: 1}},
		{"mixed separators", "one two\tthree\nfour", Stats{Words: 4, Characters: 18, CharactersNoSpaces: 15, Lines: 2}},
		{"runs of separators", "  a  \n\n b ", Stats{Words: 2, Characters: 10, CharactersNoSpaces: 2, Lines: 3}},
		{"grapheme clusters", "été", Stats{Words: 1, Characters: 3, CharactersNoSpaces: 3, Lines: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.text))
		})
	}
}

func TestBufferStats(t *testing.T) {
	b := New(WithContent("the quick brown fox"))
	s := b.Stats()

	assert.Equal(t, 4, s.Words)
	assert.Equal(t, 19, s.Characters)
	assert.Equal(t, 16, s.CharactersNoSpaces)
}
