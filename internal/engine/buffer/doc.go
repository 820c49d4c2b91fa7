// Package buffer provides the text buffer at the heart of the document engine.
//
// A Buffer owns two strings: the live content and the baseline, which is the
// content as of the last successful load or save. Dirty state is derived by
// comparing the two, so there is no flag that can drift out of sync:
//
//	buf := buffer.New()
//	buf.Load("hello")        // content and baseline both "hello"
//	buf.SetContent("hello!") // buf.IsDirty() == true
//	buf.Revert()             // content back to "hello", clean again
//
// The package also provides:
//
//   - Range editing with byte offsets (Insert, Delete, Replace)
//   - Revision tracking for caches keyed on content
//   - Document statistics (words, grapheme clusters, lines)
//   - A baseline-to-content diff for "unsaved changes" prompts
//
// Thread Safety:
//
// All Buffer methods are safe for concurrent use. Read operations acquire a
// read lock, write operations an exclusive lock. The engine itself is driven
// from a single control flow, so the locks only protect against misuse.
package buffer
