package app

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/agilitext/internal/engine"
	"github.com/dshills/agilitext/internal/prefs"
	"github.com/dshills/agilitext/internal/script"
	"github.com/dshills/agilitext/internal/watcher"
)

// Startup loads preferences, records the launch and creates the session.
// Text left over from the last run is restored unless path names a file
// to open. A failed open is returned but leaves a usable session.
func (a *App) Startup(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrShutdown
	}
	if a.started {
		return ErrAlreadyStarted
	}

	p, err := a.prefsStore.Load()
	if err != nil {
		a.logger.Warn("preferences unreadable, using defaults: %v", err)
		d := prefs.Defaults()
		p = &d
	}
	a.prefs = p
	a.firstRun = p.FirstRun()
	p.IncrementRunCount()
	if err := a.prefsStore.Save(p); err != nil {
		a.logger.Warn("saving preferences: %v", err)
	}

	sessOpts := []engine.Option{
		engine.WithStore(a.store),
		engine.WithLogger(a.logger),
		engine.WithMaxUndo(a.cfg.Editor.MaxUndo),
		engine.WithClock(a.now),
		engine.WithDateFormat(a.cfg.Editor.DateFormat),
		engine.WithTimeFormat(a.cfg.Editor.TimeFormat),
	}
	if a.clipboard != nil {
		sessOpts = append(sessOpts, engine.WithClipboard(a.clipboard))
	}
	if path == "" && p.LastText != nil {
		sessOpts = append(sessOpts, engine.WithInitialContent(*p.LastText))
	}
	a.session = engine.New(sessOpts...)

	a.script = script.New(a.session,
		script.WithInstructionLimit(int64(a.cfg.Script.InstructionLimit)),
		script.WithOutput(a.out),
		script.WithFs(a.fs),
	)

	a.started = true
	a.logger.Info("started (run %d)", p.RunCount)

	if path == "" {
		return nil
	}
	if err := a.session.Open(ctx, path); err != nil {
		return NewOperationError("open", path, err)
	}
	a.watchLocked(path)
	return nil
}

// Shutdown stores the closing text in the preferences and releases the
// watcher, the script state and the log file. It is safe to call more than once.
func (a *App) Shutdown() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	if a.started {
		a.prefs.SetLastText(a.session.Content())
		if err := a.prefsStore.Save(a.prefs); err != nil {
			errs = append(errs, NewOperationError("save preferences", a.prefsStore.Path(), err))
		}
		if err := a.script.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.logger.Info("shut down")
	a.closeLog()
	return errors.Join(errs...)
}

// sessionLocked returns the session or ErrNotStarted.
func (a *App) sessionLocked() (*engine.Session, error) {
	if a.closed {
		return nil, ErrShutdown
	}
	if !a.started {
		return nil, ErrNotStarted
	}
	return a.session, nil
}

// NewDocument discards the current document for an empty, untitled one.
func (a *App) NewDocument() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked()
	if err != nil {
		return err
	}
	sess.NewDocument()
	a.unwatchLocked()
	return nil
}

// Open replaces the document with the file at path and watches it.
func (a *App) Open(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked()
	if err != nil {
		return err
	}
	if err := sess.Open(ctx, path); err != nil {
		return NewOperationError("open", path, err)
	}
	a.watchLocked(path)
	return nil
}

// Save writes the document to its path. An untitled document returns
// engine.ErrNoPath so the caller can ask for one.
func (a *App) Save(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked()
	if err != nil {
		return err
	}
	path := sess.Path()
	if path == "" {
		return engine.ErrNoPath
	}

	a.ignoreOwnWriteLocked(path)
	if err := sess.Save(ctx); err != nil {
		return NewOperationError("save", path, err)
	}
	return nil
}

// SaveAs writes the document to path, which becomes its new path.
func (a *App) SaveAs(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, err := a.sessionLocked()
	if err != nil {
		return err
	}

	a.ignoreOwnWriteLocked(path)
	if err := sess.SaveAs(ctx, path); err != nil {
		return NewOperationError("save", path, err)
	}
	a.watchLocked(path)
	return nil
}

// RunScript runs Lua code against the document.
func (a *App) RunScript(ctx context.Context, code string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.sessionLocked(); err != nil {
		return err
	}
	return a.script.Run(ctx, code)
}

// RunScriptFile runs the Lua file at path against the document.
func (a *App) RunScriptFile(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.sessionLocked(); err != nil {
		return err
	}
	if err := a.script.RunFile(ctx, path); err != nil {
		return NewOperationError("run", path, err)
	}
	return nil
}

// PendingChanges drains external modifications of the open file reported
// since the last call. It never blocks.
func (a *App) PendingChanges() []watcher.Event {
	a.mu.Lock()
	w := a.watcher
	a.mu.Unlock()

	if w == nil {
		return nil
	}

	var events []watcher.Event
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case err, ok := <-w.Errors():
			if !ok {
				return events
			}
			a.logger.Warn("watcher: %v", err)
		default:
			return events
		}
	}
}

// watchLocked moves the watch to path. Errors only disable watching.
func (a *App) watchLocked(path string) {
	if a.watcher == nil || path == a.watched {
		return
	}
	a.unwatchLocked()
	if err := a.watcher.Watch(path); err != nil {
		a.logger.WithField("path", path).Debug("not watching: %v", err)
		return
	}
	a.watched = path
}

func (a *App) unwatchLocked() {
	if a.watcher == nil || a.watched == "" {
		return
	}
	if err := a.watcher.Unwatch(a.watched); err != nil {
		a.logger.WithField("path", a.watched).Debug("unwatch: %v", err)
	}
	a.watched = ""
}

func (a *App) ignoreOwnWriteLocked(path string) {
	if a.watcher != nil {
		a.watcher.Ignore(path, time.Now().Add(ignoreWindow))
	}
}
