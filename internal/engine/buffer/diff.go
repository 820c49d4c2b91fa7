package buffer

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeSummary counts what changed between baseline and content.
type ChangeSummary struct {
	Inserted int // Runes present in content but not in baseline
	Deleted  int // Runes present in baseline but not in content
}

// IsZero returns true if nothing changed.
func (c ChangeSummary) IsZero() bool {
	return c.Inserted == 0 && c.Deleted == 0
}

// Diff returns a semantic diff from the baseline to the current content.
// An empty slice means the buffer is clean.
func (b *Buffer) Diff() []diffmatchpatch.Diff {
	baseline, content := b.pair()
	return diff(baseline, content)
}

// PatchText renders the baseline-to-content diff in unidiff-like patch form.
// Returns "" when the buffer is clean.
func (b *Buffer) PatchText() string {
	baseline, content := b.pair()
	diffs := diff(baseline, content)
	if len(diffs) == 0 {
		return ""
	}

	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(baseline, diffs)
	return dmp.PatchToText(patches)
}

// Summary counts inserted and deleted runes since the baseline.
func (b *Buffer) Summary() ChangeSummary {
	var s ChangeSummary
	for _, d := range b.Diff() {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Inserted += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			s.Deleted += utf8.RuneCountInString(d.Text)
		}
	}
	return s
}

func (b *Buffer) pair() (baseline, content string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.baseline, b.content
}

func diff(from, to string) []diffmatchpatch.Diff {
	if from == to {
		return nil
	}
	dmp := diffmatchpatch.New()
	return dmp.DiffCleanupSemantic(dmp.DiffMain(from, to, false))
}
