package app

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

// runConsole feeds input to a started app and returns what the console wrote.
func runConsole(t *testing.T, app *App, input string) string {
	t.Helper()

	var out bytes.Buffer
	c := NewConsole(app, strings.NewReader(input), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	return out.String()
}

func TestConsole_EditFindPrint(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "set hello world\nfind WORLD\nfind world\nprint\n")

	if !strings.Contains(out, "found at [6:11)\n") {
		t.Errorf("missing first match in output:\n%s", out)
	}
	if !strings.Contains(out, "found at [6:11) (wrapped)\n") {
		t.Errorf("missing wrapped match in output:\n%s", out)
	}
	if !strings.Contains(out, "hello world\n") {
		t.Errorf("missing content in output:\n%s", out)
	}
}

func TestConsole_QuitConfirmation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantQuit  bool
		wantSaved bool
	}{
		{"clean document quits", "quit\nprint\n", true, false},
		{"discard", "set x\nquit\nn\nprint\n", true, false},
		{"cancel", "set x\nquit\nmaybe\nprint\n", false, false},
		{"save first", "set x\nsaveas /docs/x.txt\nset y\nquit\ny\nprint\n", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			_ = fs.MkdirAll("/docs", 0o755)
			app := startTestApp(t, fs, "")

			out := runConsole(t, app, tt.input)

			// print after quit only runs when quit was canceled
			printed := strings.HasSuffix(out, "x\n"+Prompt+"\n")
			if printed == tt.wantQuit {
				t.Errorf("quit = %v, want %v; output:\n%s", !printed, tt.wantQuit, out)
			}
			if tt.name == "cancel" && !strings.Contains(out, "error: canceled") {
				t.Errorf("expected cancel message:\n%s", out)
			}

			data, _ := afero.ReadFile(fs, "/docs/x.txt")
			if tt.wantSaved && string(data) != "y" {
				t.Errorf("saved file = %q, want %q", data, "y")
			}
		})
	}
}

func TestConsole_SaveUntitledAsksForPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/docs", 0o755)
	app := startTestApp(t, fs, "")

	out := runConsole(t, app, "set abc\nsave\n/docs/a.txt\nstatus\n")

	if !strings.Contains(out, "save as: ") {
		t.Errorf("expected path prompt:\n%s", out)
	}
	data, err := afero.ReadFile(fs, "/docs/a.txt")
	if err != nil || string(data) != "abc" {
		t.Errorf("file = %q (%v), want %q", data, err, "abc")
	}
	if !strings.Contains(out, "/docs/a.txt [clean]") {
		t.Errorf("expected clean status:\n%s", out)
	}
}

func TestConsole_NewDiscardsAfterConfirm(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	runConsole(t, app, "set draft\nnew\nn\n")

	if got := app.Session().Content(); got != "" {
		t.Errorf("Content() = %q, want empty", got)
	}
}

func TestConsole_OpenAndRevert(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/docs/a.txt", []byte("original"), 0o644)
	app := startTestApp(t, fs, "")

	out := runConsole(t, app, "open /docs/a.txt\nappend  more\nrevert\nn\nrevert\nprint\n")

	if !strings.Contains(out, "reverted\n") || !strings.Contains(out, "nothing to revert\n") {
		t.Errorf("unexpected revert output:\n%s", out)
	}
	if got := app.Session().Content(); got != "original" {
		t.Errorf("Content() = %q, want %q", got, "original")
	}
}

func TestConsole_RevertCanceled(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/docs/a.txt", []byte("original"), 0o644)
	app := startTestApp(t, fs, "")

	out := runConsole(t, app, "open /docs/a.txt\nappend  more\nrevert\ncancel\n")

	if !strings.Contains(out, "unsaved changes; save first?") {
		t.Errorf("expected confirmation prompt:\n%s", out)
	}
	if !strings.Contains(out, "error: canceled\n") || strings.Contains(out, "reverted\n") {
		t.Errorf("expected revert to be canceled:\n%s", out)
	}
	if got := app.Session().Content(); got == "original" {
		t.Error("canceled revert discarded the edit")
	}
}

func TestConsole_History(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "history\nset one\nappend \" two\"\nundo\nhistory\nmaxundo\nmaxundo 1\nmaxundo x\nstatus\nredo\nredo\n")

	for _, want := range []string{
		"no history\n",
		"undid Insert\n",
		"undo limit: none\n",
		"undo limit: 1\n",
		"error: usage: maxundo",
		"undo: 1 redo: 1",
		"redid Insert\n",
		"nothing to redo\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	var undoLines, redoLines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimPrefix(line, Prompt)
		switch {
		case strings.HasPrefix(line, "undo ") && !strings.HasPrefix(line, "undo limit"):
			undoLines = append(undoLines, line)
		case strings.HasPrefix(line, "redo "):
			redoLines = append(redoLines, line)
		}
	}
	if len(undoLines) != 1 || !strings.HasSuffix(undoLines[0], " Edit") {
		t.Errorf("undo listing = %q", undoLines)
	}
	if len(redoLines) != 1 || !strings.HasSuffix(redoLines[0], " Insert") {
		t.Errorf("redo listing = %q", redoLines)
	}
	if got := app.Session().Content(); got != "one two" {
		t.Errorf("Content() = %q, want %q", got, "one two")
	}
}

func TestConsole_LongLine(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")
	text := strings.Repeat("x", 200*1024)

	runConsole(t, app, "set "+text+"\n")

	if got := len(app.Session().Content()); got != len(text) {
		t.Errorf("len(Content()) = %d, want %d", got, len(text))
	}
}

func TestConsole_ReplaceAllAndCount(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "set the cat the hat\ncount THE\nreplaceall the \"a big\"\nundo\nredo\n")

	if !strings.Contains(out, "2\n") {
		t.Errorf("missing count:\n%s", out)
	}
	if !strings.Contains(out, "2 replaced\n") {
		t.Errorf("missing replace count:\n%s", out)
	}
	if got := app.Session().Content(); got != "a big cat a big hat" {
		t.Errorf("Content() = %q", got)
	}
}

func TestConsole_FindReplace(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "set aXa\nreplace b\nfind a\nreplace b\nreplace b\n")

	if !strings.Contains(out, "no current match\n") {
		t.Errorf("expected replace without match to report:\n%s", out)
	}
	if got := app.Session().Content(); got != "bXb" {
		t.Errorf("Content() = %q, want %q", got, "bXb")
	}
}

func TestConsole_InsertQuoted(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	runConsole(t, app, "set world\ninsert 0 \"hello\\n\"\n")

	if got := app.Session().Content(); got != "hello\nworld" {
		t.Errorf("Content() = %q", got)
	}
}

func TestConsole_Clipboard(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "set abcdef\nselect 0 3\ncut\nprint\npaste\ncut\n")

	if !strings.Contains(out, "def\n") {
		t.Errorf("expected text after cut:\n%s", out)
	}
	if !strings.Contains(out, "error: no selection") {
		t.Errorf("expected cut without selection to fail:\n%s", out)
	}
	if got := app.Session().Content(); got != "abcdef" {
		t.Errorf("Content() = %q, want %q", got, "abcdef")
	}
}

func TestConsole_SelectDelete(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	runConsole(t, app, "set abcdef\nselect 1 3\ndelete\n")

	if got := app.Session().Content(); got != "adef" {
		t.Errorf("Content() = %q, want %q", got, "adef")
	}
}

func TestConsole_DateTime(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	runConsole(t, app, "set \"on \"\ndate\nappend \" at \"\nselect\ntime\n")

	if got := app.Session().Content(); got != "on 05/03/2024 at 02:07:09" {
		t.Errorf("Content() = %q", got)
	}
}

func TestConsole_StatsDiffStatus(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/a.txt", []byte("one"), 0o644)
	app := startTestApp(t, fs, "/a.txt")

	out := runConsole(t, app, "diff\nappend \" two\"\nstats\ndiff\nstatus\n")

	for _, want := range []string{
		"no unsaved changes\n",
		"words: 2\n",
		"lines: 1\n",
		"+4 -0\n",
		"/a.txt [dirty] undo: 1 redo: 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsole_Lua(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "lua doc.set_text(string.rep(\"ab\", 3))\nprint\nlua os.exit(1)\n")

	if !strings.Contains(out, "ababab\n") {
		t.Errorf("expected script result:\n%s", out)
	}
	if !strings.Contains(out, "error: ") {
		t.Errorf("expected sandbox error:\n%s", out)
	}
}

func TestConsole_Errors(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")
	c := NewConsole(app, strings.NewReader(""), &bytes.Buffer{})
	ctx := context.Background()

	tests := []struct {
		line string
		want error
	}{
		{"bogus", ErrUnknownCommand},
		{"open", ErrUsage},
		{"saveas", ErrUsage},
		{"insert x y", ErrUsage},
		{"select 1", ErrUsage},
		{"replaceall onlyone", ErrUsage},
		{"lua", ErrUsage},
		{"delete", nil},
	}

	for _, tt := range tests {
		err := c.Execute(ctx, tt.line)
		if tt.want == nil {
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("Execute(%q) = %v, want %v", tt.line, err, tt.want)
		}
	}

	if err := c.Execute(ctx, "   "); err != nil {
		t.Errorf("blank line error = %v", err)
	}
}

func TestConsole_Help(t *testing.T) {
	app := startTestApp(t, afero.NewMemMapFs(), "")

	out := runConsole(t, app, "help\n")

	for name := range commands {
		if !strings.Contains(out, commands[name].usage) {
			t.Errorf("help missing %q", name)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"a b", []string{"a", "b"}, false},
		{"  a\t b  ", []string{"a", "b"}, false},
		{`"a b" c`, []string{"a b", "c"}, false},
		{`x "" `, []string{"x", ""}, false},
		{`"tab\there" y`, []string{"tab\there", "y"}, false},
		{`"unterminated`, nil, true},
		{"", nil, false},
	}

	for _, tt := range tests {
		got, err := splitArgs(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("splitArgs(%q) error = %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
