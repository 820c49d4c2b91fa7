// Package search implements incremental, case-insensitive find and replace
// over a single document.
//
// A Finder remembers the last query and a cursor into the text. Each Find
// continues from the cursor and wraps to the start when nothing is left
// after it. The cursor resets to the start whenever the query changes or the
// reported selection no longer holds the last match, so a user who moves the
// selection starts a fresh search.
//
// Matching folds every rune with unicode.ToLower. When folding changes the
// UTF-8 width of a rune, offsets are mapped back so that every Range the
// Finder reports refers to the original text.
package search
