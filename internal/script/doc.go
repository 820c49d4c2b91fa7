// Package script runs Lua against the open document.
//
// Scripts run in a sandboxed gopher-lua state: only the base, table, string
// and math libraries are available, and nothing can load code from disk.
// The document is exposed as a global table named doc:
//
//	doc.text()                    -- full text
//	doc.set_text(s)
//	doc.insert(offset, s)         -- returns the end offset of the insert
//	doc.find(q)                   -- true, start, stop  or  false
//	doc.replace(r)                -- true if the current match was replaced
//	doc.replace_all(q, r)         -- number of replacements
//	doc.count(q)
//	doc.undo(), doc.redo()        -- true if something happened
//	doc.dirty()
//	doc.select(start, stop)
//	doc.stats()                   -- {words=, characters=, characters_no_spaces=, lines=}
//	doc.path()                    -- nil when untitled
//
// Offsets are 0-based byte offsets with exclusive ends, the same as the
// engine uses. Each doc call counts against the instruction limit, and the
// whole run is bounded by a timeout.
package script
