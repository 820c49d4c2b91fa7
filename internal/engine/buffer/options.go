package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithContent sets the initial content without touching the baseline.
// A buffer created this way starts dirty unless content is empty, which
// mirrors a shell restoring unsaved text from a previous session.
func WithContent(text string) Option {
	return func(b *Buffer) {
		b.content = text
	}
}

// WithBaseline sets both the content and the baseline, as if text had just
// been loaded from disk.
func WithBaseline(text string) Option {
	return func(b *Buffer) {
		b.content = text
		b.baseline = text
	}
}
