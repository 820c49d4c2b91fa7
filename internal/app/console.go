package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/agilitext/internal/engine"
	"github.com/dshills/agilitext/internal/engine/buffer"
)

// Prompt is printed before each console command.
const Prompt = "> "

type command struct {
	usage string
	help  string
	run   func(c *Console, ctx context.Context, arg string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"new":        {"new", "start an empty, untitled document", (*Console).cmdNew},
		"open":       {"open <path>", "open a file", (*Console).cmdOpen},
		"save":       {"save", "save to the current path", (*Console).cmdSave},
		"saveas":     {"saveas <path>", "save to a new path", (*Console).cmdSaveAs},
		"revert":     {"revert", "restore the last saved text", (*Console).cmdRevert},
		"print":      {"print", "print the document", (*Console).cmdPrint},
		"set":        {"set <text>", "replace the whole document", (*Console).cmdSet},
		"append":     {"append <text>", "add text at the end", (*Console).cmdAppend},
		"insert":     {"insert <offset> <text>", "insert text at a byte offset", (*Console).cmdInsert},
		"select":     {"select [<start> <end>]", "select a byte range, or clear the selection", (*Console).cmdSelect},
		"delete":     {"delete", "delete the selection", (*Console).cmdDelete},
		"undo":       {"undo", "undo the last edit", (*Console).cmdUndo},
		"redo":       {"redo", "redo the last undone edit", (*Console).cmdRedo},
		"history":    {"history", "list undo and redo steps", (*Console).cmdHistory},
		"maxundo":    {"maxundo [<n>]", "show or set the undo limit, 0 for none", (*Console).cmdMaxUndo},
		"find":       {"find <text>", "find the next match, ignoring case", (*Console).cmdFind},
		"replace":    {"replace <text>", "replace the current match and find the next", (*Console).cmdReplace},
		"replaceall": {"replaceall <query> <text>", "replace every match", (*Console).cmdReplaceAll},
		"count":      {"count <text>", "count matches", (*Console).cmdCount},
		"stats":      {"stats", "word, character and line counts", (*Console).cmdStats},
		"diff":       {"diff", "show unsaved changes", (*Console).cmdDiff},
		"status":     {"status", "show path, state and history", (*Console).cmdStatus},
		"date":       {"date", "insert the date at the selection", (*Console).cmdDate},
		"time":       {"time", "insert the time at the selection", (*Console).cmdTime},
		"cut":        {"cut", "cut the selection", (*Console).cmdCut},
		"copy":       {"copy", "copy the selection", (*Console).cmdCopy},
		"paste":      {"paste", "paste at the selection", (*Console).cmdPaste},
		"lua":        {"lua <code>", "run Lua against the document", (*Console).cmdLua},
		"run":        {"run <path>", "run a Lua file against the document", (*Console).cmdRun},
		"help":       {"help", "list commands", (*Console).cmdHelp},
		"quit":       {"quit", "exit", (*Console).cmdQuit},
	}
}

// maxLineSize bounds a single command line, which may carry a whole document.
const maxLineSize = 16 << 20

// Console drives an App from line-oriented input.
type Console struct {
	app *App
	in  *bufio.Scanner
	out io.Writer
}

// NewConsole creates a console reading commands from in.
func NewConsole(app *App, in io.Reader, out io.Writer) *Console {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Console{
		app: app,
		in:  sc,
		out: out,
	}
}

// Run reads and executes commands until quit or end of input.
// Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.reportChanges()
		fmt.Fprint(c.out, Prompt)

		line, ok := c.readLine()
		if !ok {
			fmt.Fprintln(c.out)
			return c.in.Err()
		}

		err := c.Execute(ctx, line)
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case err != nil:
			fmt.Fprintf(c.out, "error: %v\n", err)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Execute runs one command line.
func (c *Console) Execute(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	name, arg, _ := strings.Cut(line, " ")
	cmd, ok := commands[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(c, ctx, strings.TrimSpace(arg))
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *Console) session() (*engine.Session, error) {
	sess := c.app.Session()
	if sess == nil {
		return nil, ErrNotStarted
	}
	return sess, nil
}

func (c *Console) reportChanges() {
	for _, ev := range c.app.PendingChanges() {
		switch {
		case ev.Op.Gone():
			fmt.Fprintf(c.out, "%s was removed or renamed on disk\n", ev.Path)
		case ev.Op.Changed():
			fmt.Fprintf(c.out, "%s changed on disk; use open to reload\n", ev.Path)
		}
	}
}

// confirmDiscard asks before an action that would lose unsaved changes.
// y saves first, n discards, anything else cancels.
func (c *Console) confirmDiscard(ctx context.Context) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	if !sess.NeedsConfirmation() {
		return nil
	}

	fmt.Fprint(c.out, "unsaved changes; save first? [y/n/cancel] ")
	answer, ok := c.readLine()
	if !ok {
		return ErrCanceled
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return c.save(ctx)
	case "n", "no":
		return nil
	default:
		return ErrCanceled
	}
}

// save saves, asking for a path when the document is untitled.
func (c *Console) save(ctx context.Context) error {
	err := c.app.Save(ctx)
	if !errors.Is(err, engine.ErrNoPath) {
		return err
	}

	fmt.Fprint(c.out, "save as: ")
	path, ok := c.readLine()
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return ErrCanceled
	}
	return c.app.SaveAs(ctx, path)
}

func (c *Console) cmdNew(ctx context.Context, _ string) error {
	if err := c.confirmDiscard(ctx); err != nil {
		return err
	}
	return c.app.NewDocument()
}

func (c *Console) cmdOpen(ctx context.Context, arg string) error {
	path, err := requireArg("open", arg)
	if err != nil {
		return err
	}
	if err := c.confirmDiscard(ctx); err != nil {
		return err
	}
	return c.app.Open(ctx, path)
}

func (c *Console) cmdSave(ctx context.Context, _ string) error {
	if err := c.save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "saved")
	return nil
}

func (c *Console) cmdSaveAs(ctx context.Context, arg string) error {
	path, err := requireArg("saveas", arg)
	if err != nil {
		return err
	}
	if err := c.app.SaveAs(ctx, path); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "saved")
	return nil
}

func (c *Console) cmdRevert(ctx context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	if err := c.confirmDiscard(ctx); err != nil {
		return err
	}
	if sess.Revert() {
		fmt.Fprintln(c.out, "reverted")
	} else {
		fmt.Fprintln(c.out, "nothing to revert")
	}
	return nil
}

func (c *Console) cmdPrint(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, sess.Content())
	return nil
}

func (c *Console) cmdSet(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	text, err := unquote(arg)
	if err != nil {
		return err
	}
	sess.SetContent(text)
	return nil
}

func (c *Console) cmdAppend(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	text, err := unquote(arg)
	if err != nil {
		return err
	}
	_, err = sess.Insert(len(sess.Content()), text)
	return err
}

func (c *Console) cmdInsert(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	offArg, rest, _ := strings.Cut(arg, " ")
	offset, err := strconv.Atoi(offArg)
	if err != nil {
		return usageError("insert")
	}
	text, err := unquote(strings.TrimSpace(rest))
	if err != nil {
		return err
	}
	_, err = sess.Insert(offset, text)
	return err
}

func (c *Console) cmdSelect(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	if arg == "" {
		sess.ClearSelection()
		return nil
	}

	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return usageError("select")
	}
	start, err1 := strconv.Atoi(fields[0])
	end, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return usageError("select")
	}
	return sess.Select(buffer.NewRange(start, end))
}

func (c *Console) cmdDelete(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	return sess.DeleteSelection()
}

func (c *Console) cmdUndo(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	next, ok := sess.NextUndo()
	if !ok || !sess.Undo() {
		fmt.Fprintln(c.out, "nothing to undo")
		return nil
	}
	fmt.Fprintf(c.out, "undid %s\n", next.Description)
	return nil
}

func (c *Console) cmdRedo(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	next, ok := sess.NextRedo()
	if !ok || !sess.Redo() {
		fmt.Fprintln(c.out, "nothing to redo")
		return nil
	}
	fmt.Fprintf(c.out, "redid %s\n", next.Description)
	return nil
}

func (c *Console) cmdHistory(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	undo, redo := sess.UndoHistory(), sess.RedoHistory()
	if len(undo) == 0 && len(redo) == 0 {
		fmt.Fprintln(c.out, "no history")
		return nil
	}
	for _, info := range undo {
		fmt.Fprintf(c.out, "undo %s %s\n", info.Timestamp.Format("15:04:05"), info.Description)
	}
	// redo steps are listed in the order Redo would apply them
	for i := len(redo) - 1; i >= 0; i-- {
		fmt.Fprintf(c.out, "redo %s %s\n", redo[i].Timestamp.Format("15:04:05"), redo[i].Description)
	}
	return nil
}

func (c *Console) cmdMaxUndo(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return usageError("maxundo")
		}
		sess.SetMaxUndo(n)
	}
	if limit := sess.MaxUndo(); limit > 0 {
		fmt.Fprintf(c.out, "undo limit: %d\n", limit)
	} else {
		fmt.Fprintln(c.out, "undo limit: none")
	}
	return nil
}

func (c *Console) cmdFind(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	query, err := unquote(arg)
	if err != nil {
		return err
	}

	res := sess.Find(query)
	switch {
	case !res.Found:
		fmt.Fprintln(c.out, "not found")
	case res.Wrapped:
		fmt.Fprintf(c.out, "found at %s (wrapped)\n", res.Range)
	default:
		fmt.Fprintf(c.out, "found at %s\n", res.Range)
	}
	return nil
}

func (c *Console) cmdReplace(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	text, err := unquote(arg)
	if err != nil {
		return err
	}

	replaced, err := sess.Replace(text)
	if err != nil {
		return err
	}
	if !replaced {
		fmt.Fprintln(c.out, "no current match")
	}
	return nil
}

func (c *Console) cmdReplaceAll(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	args, err := splitArgs(arg)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return usageError("replaceall")
	}

	n, err := sess.ReplaceAll(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d replaced\n", n)
	return nil
}

func (c *Console) cmdCount(_ context.Context, arg string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	query, err := unquote(arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, sess.Count(query))
	return nil
}

func (c *Console) cmdStats(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	st := sess.Stats()
	fmt.Fprintf(c.out, "words: %d\ncharacters: %d\ncharacters (no spaces): %d\nlines: %d\n",
		st.Words, st.Characters, st.CharactersNoSpaces, st.Lines)
	return nil
}

func (c *Console) cmdDiff(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	if !sess.IsDirty() {
		fmt.Fprintln(c.out, "no unsaved changes")
		return nil
	}
	sum := sess.ChangeSummary()
	fmt.Fprintf(c.out, "+%d -%d\n", sum.Inserted, sum.Deleted)
	fmt.Fprint(c.out, sess.UnsavedChanges())
	return nil
}

func (c *Console) cmdStatus(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	path := sess.Path()
	if path == "" {
		path = "(untitled)"
	}
	undo, redo := sess.HistoryDepth()
	fmt.Fprintf(c.out, "%s [%s] undo: %d redo: %d", path, sess.State(), undo, redo)
	if sel, ok := sess.Selection(); ok {
		fmt.Fprintf(c.out, " selection: %s", sel)
	}
	fmt.Fprintln(c.out)
	return nil
}

func (c *Console) cmdDate(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	_, err = sess.InsertDate()
	return err
}

func (c *Console) cmdTime(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	_, err = sess.InsertTime()
	return err
}

func (c *Console) cmdCut(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	_, err = sess.Cut()
	return err
}

func (c *Console) cmdCopy(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	_, err = sess.Copy()
	return err
}

func (c *Console) cmdPaste(_ context.Context, _ string) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	_, err = sess.Paste()
	return err
}

func (c *Console) cmdLua(ctx context.Context, arg string) error {
	code, err := requireArg("lua", arg)
	if err != nil {
		return err
	}
	return c.app.RunScript(ctx, code)
}

func (c *Console) cmdRun(ctx context.Context, arg string) error {
	path, err := requireArg("run", arg)
	if err != nil {
		return err
	}
	return c.app.RunScriptFile(ctx, path)
}

func (c *Console) cmdHelp(_ context.Context, _ string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(c.out, "  %-26s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (c *Console) cmdQuit(ctx context.Context, _ string) error {
	if err := c.confirmDiscard(ctx); err != nil {
		return err
	}
	return ErrQuit
}

func requireArg(name, arg string) (string, error) {
	if arg == "" {
		return "", usageError(name)
	}
	return arg, nil
}

func usageError(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}

// unquote returns arg as typed, or decoded when it is a Go-style
// double-quoted string, so that "a\nb" inserts a newline.
func unquote(arg string) (string, error) {
	if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
		s, err := strconv.Unquote(arg)
		if err != nil {
			return "", fmt.Errorf("bad quoted text: %w", err)
		}
		return s, nil
	}
	return arg, nil
}

// splitArgs splits on spaces, keeping double-quoted strings together.
func splitArgs(s string) ([]string, error) {
	var args []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return args, nil
		}

		if s[0] == '"' {
			quoted, err := strconv.QuotedPrefix(s)
			if err != nil {
				return nil, fmt.Errorf("bad quoted text: %w", err)
			}
			arg, err := strconv.Unquote(quoted)
			if err != nil {
				return nil, fmt.Errorf("bad quoted text: %w", err)
			}
			args = append(args, arg)
			s = s[len(quoted):]
			continue
		}

		end := strings.IndexAny(s, " \t")
		if end < 0 {
			end = len(s)
		}
		args = append(args, s[:end])
		s = s[end:]
	}
}
