// Package app wires the document session to its shell: configuration,
// logging, preferences, the file watcher and Lua scripting. It also
// provides the line-oriented Console driven by cmd/agilitext.
package app

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/dshills/agilitext/internal/config"
	"github.com/dshills/agilitext/internal/engine"
	"github.com/dshills/agilitext/internal/filestore"
	"github.com/dshills/agilitext/internal/logging"
	"github.com/dshills/agilitext/internal/prefs"
	"github.com/dshills/agilitext/internal/script"
	"github.com/dshills/agilitext/internal/watcher"
)

// ignoreWindow is how long watcher events are dropped after our own save.
const ignoreWindow = time.Second

// App owns one document session and everything around it.
type App struct {
	mu sync.Mutex

	cfg    *config.Config
	fs     afero.Fs
	logger *logging.Logger
	logOut io.Closer

	prefsStore *prefs.Store
	prefs      *prefs.Prefs
	firstRun   bool

	store     *filestore.Store
	clipboard engine.Clipboard
	session   *engine.Session
	script    *script.State
	watcher   *watcher.Watcher
	watched   string

	out io.Writer
	now func() time.Time

	started bool
	closed  bool
}

// Option configures an App.
type Option func(*App)

// WithFs sets the filesystem for documents, prefs, scripts and the log file.
func WithFs(fs afero.Fs) Option {
	return func(a *App) {
		if fs != nil {
			a.fs = fs
		}
	}
}

// WithLogger overrides the logger built from the configuration.
func WithLogger(l *logging.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithClipboard sets the clipboard handed to the session.
func WithClipboard(c engine.Clipboard) Option {
	return func(a *App) {
		a.clipboard = c
	}
}

// WithOutput sets where script print output goes.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		if w != nil {
			a.out = w
		}
	}
}

// WithClock sets the time source for date/time insertion.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// New creates an application from cfg. A nil cfg uses config.Defaults.
// The session does not exist until Startup.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		d := config.Defaults()
		cfg = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ComponentError{Component: "config", Err: err}
	}

	a := &App{
		cfg: cfg,
		fs:  afero.NewOsFs(),
		out: os.Stdout,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.bootstrap(); err != nil {
		a.closeLog()
		return nil, err
	}
	return a, nil
}

// bootstrap initializes components in dependency order.
func (a *App) bootstrap() error {
	// 1. Logging
	if a.logger == nil {
		logger, closer, err := a.openLogger()
		if err != nil {
			return &ComponentError{Component: "logging", Err: err}
		}
		a.logger = logger
		a.logOut = closer
	}

	// 2. Preferences
	a.prefsStore = prefs.NewStore(a.fs, a.cfg.PrefsPath())

	// 3. Document store
	storeOpts := []filestore.Option{
		filestore.WithLogger(a.logger.WithComponent("filestore")),
	}
	if a.cfg.Files.AtomicSave {
		storeOpts = append(storeOpts, filestore.WithAtomicSave())
	}
	if a.cfg.Files.PreserveLineEndings {
		storeOpts = append(storeOpts, filestore.WithPreserveLineEndings())
	}
	a.store = filestore.New(a.fs, storeOpts...)

	// 4. Watcher. Failure is non-fatal; the document simply is not watched.
	if a.cfg.Files.Watch {
		w, err := watcher.New(watcher.WithDebounce(a.cfg.Files.WatchDebounce))
		if err != nil {
			a.logger.Warn("file watching disabled: %v", err)
		} else {
			a.watcher = w
		}
	}

	return nil
}

// openLogger builds the logger described by the log config section.
func (a *App) openLogger() (*logging.Logger, io.Closer, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = a.cfg.LogLevel()

	var closer io.Closer
	if a.cfg.Log.File != "" {
		f, err := a.fs.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		cfg.Output = f
		closer = f
	}
	return logging.New(cfg), closer, nil
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger {
	return a.logger
}

// Session returns the document session, or nil before Startup.
func (a *App) Session() *engine.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Prefs returns a copy of the current preferences.
func (a *App) Prefs() prefs.Prefs {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.prefs == nil {
		return prefs.Defaults()
	}
	return *a.prefs
}

// FirstRun reports whether Startup found no earlier launch.
func (a *App) FirstRun() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.firstRun
}

// Watching returns the path currently watched for external changes.
func (a *App) Watching() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.watched
}

func (a *App) closeLog() {
	if a.logOut != nil {
		_ = a.logOut.Close()
		a.logOut = nil
	}
}
