package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{0, "NONE"},
		{OpWrite, "WRITE"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRemove | OpRename, "REMOVE|RENAME"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestOpPredicates(t *testing.T) {
	if !(OpCreate | OpWrite).Has(OpWrite) {
		t.Error("CREATE|WRITE should have WRITE")
	}
	if OpWrite.Has(OpCreate) {
		t.Error("WRITE should not have CREATE")
	}
	if !OpWrite.Changed() || OpWrite.Gone() {
		t.Error("WRITE should be Changed and not Gone")
	}
	if !OpRename.Gone() || OpRename.Changed() {
		t.Error("RENAME should be Gone and not Changed")
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(timeout):
		return Event{}, false
	}
}

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer(20*time.Millisecond, 4)
	defer d.close()

	d.add("/a", OpCreate)
	d.add("/a", OpWrite)
	d.add("/a", OpWrite)
	if n := d.pendingCount(); n != 1 {
		t.Fatalf("pendingCount() = %d, want 1", n)
	}

	ev, ok := waitEvent(t, d.out, time.Second)
	if !ok {
		t.Fatal("no event delivered")
	}
	if ev.Path != "/a" || ev.Op != OpCreate|OpWrite {
		t.Errorf("event = %+v, want /a CREATE|WRITE", ev)
	}

	if _, ok := waitEvent(t, d.out, 60*time.Millisecond); ok {
		t.Error("expected a single coalesced event")
	}
}

func TestDebouncerSeparatesPaths(t *testing.T) {
	d := newDebouncer(10*time.Millisecond, 4)
	defer d.close()

	d.add("/a", OpWrite)
	d.add("/b", OpRemove)

	seen := map[string]Op{}
	for i := 0; i < 2; i++ {
		ev, ok := waitEvent(t, d.out, time.Second)
		if !ok {
			t.Fatalf("event %d not delivered", i)
		}
		seen[ev.Path] = ev.Op
	}
	if seen["/a"] != OpWrite || seen["/b"] != OpRemove {
		t.Errorf("events = %v", seen)
	}
}

func TestDebouncerClose(t *testing.T) {
	d := newDebouncer(time.Hour, 4)
	d.add("/a", OpWrite)

	d.close()
	d.close()
	d.add("/a", OpWrite)

	if _, ok := <-d.out; ok {
		t.Error("output channel should be closed")
	}
}

func newWatcher(t *testing.T) *Watcher {
	t.Helper()
	w, err := New(WithDebounce(20 * time.Millisecond))
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

func TestWatchUnwatch(t *testing.T) {
	w := newWatcher(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if err := w.Watch(filepath.Join(dir, "missing.txt")); err != ErrPathNotExist {
		t.Errorf("Watch missing error = %v, want ErrPathNotExist", err)
	}
	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(a); err != ErrAlreadyWatching {
		t.Errorf("Watch again error = %v, want ErrAlreadyWatching", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch second file error = %v", err)
	}
	if !w.IsWatching(a) || !w.IsWatching(b) {
		t.Error("both files should be watched")
	}

	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if err := w.Unwatch(a); err != ErrNotWatching {
		t.Errorf("Unwatch again error = %v, want ErrNotWatching", err)
	}
	if w.dirs[dir] != 1 {
		t.Errorf("directory refcount = %d, want 1", w.dirs[dir])
	}
	if err := w.Unwatch(b); err != nil {
		t.Fatalf("Unwatch second file error = %v", err)
	}
	if len(w.dirs) != 0 {
		t.Errorf("dirs = %v, want none", w.dirs)
	}
}

func TestReportsExternalWrite(t *testing.T) {
	w := newWatcher(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	writeFile(t, path, "v1")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}

	writeFile(t, filepath.Join(dir, "other.txt"), "noise")
	writeFile(t, path, "v2")

	ev, ok := waitEvent(t, w.Events(), 2*time.Second)
	if !ok {
		t.Fatal("no event for external write")
	}
	if ev.Path != path {
		t.Errorf("event path = %q, want %q", ev.Path, path)
	}
	if !ev.Op.Changed() {
		t.Errorf("event op = %v, want a content change", ev.Op)
	}
}

func TestReportsRemoval(t *testing.T) {
	w := newWatcher(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "v1")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove error = %v", err)
	}

	ev, ok := waitEvent(t, w.Events(), 2*time.Second)
	if !ok {
		t.Fatal("no event for removal")
	}
	if !ev.Op.Gone() {
		t.Errorf("event op = %v, want REMOVE", ev.Op)
	}
}

func TestIgnoreSuppressesOwnWrites(t *testing.T) {
	w := newWatcher(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "v1")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	w.Ignore(path, time.Now().Add(time.Hour))
	writeFile(t, path, "v2")

	if ev, ok := waitEvent(t, w.Events(), 300*time.Millisecond); ok {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestIgnoreExpires(t *testing.T) {
	w := newWatcher(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "v1")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	w.Ignore(path, time.Now().Add(-time.Second))
	writeFile(t, path, "v2")

	if _, ok := waitEvent(t, w.Events(), 2*time.Second); !ok {
		t.Fatal("expired ignore should not suppress events")
	}
}

func TestClose(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrWatcherClosed {
		t.Errorf("Watch after Close error = %v, want ErrWatcherClosed", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Error("Events should be closed")
	}
}
