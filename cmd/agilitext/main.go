// Package main is the entry point for agilitext.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dshills/agilitext/internal/app"
	"github.com/dshills/agilitext/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const welcome = `Welcome to agilitext.
Type "help" for a list of commands, "quit" to exit.`

var cfgFile string

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agilitext [file]",
		Short:         "A small plain-text document editor",
		Long:          "agilitext edits one plain-text document from a line-oriented console, with undo, find/replace and Lua scripting.",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEditor,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: "+filepath.Join(config.Dir(), "config.toml")+")")
	root.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	root.Flags().String("log-file", "", "write logs to this file instead of stderr")
	root.Flags().String("prefs", "", "preferences file (default: "+config.DefaultPrefsPath()+")")

	root.AddCommand(newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				path = filepath.Join(config.Dir(), "config.toml")
			}
			if err := config.WriteDefault(afero.NewOsFs(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	})

	return cfgCmd
}

// loadConfig reads the config file and environment, with flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.LoaderOption
	if cfgFile != "" {
		opts = append(opts, config.WithFile(cfgFile))
	}
	loader := config.NewLoader(opts...)

	// Bind flags to viper
	v := loader.Viper()
	for key, flag := range map[string]string{
		"log.level":  "log-level",
		"log.file":   "log-file",
		"prefs.path": "prefs",
	} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	return loader.Load()
}

func runEditor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	application, err := app.New(cfg, app.WithOutput(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shutdown persists the closing text, so it runs on every exit path.
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		}
	}()

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	if err := application.Startup(ctx, path); err != nil {
		var opErr *app.OperationError
		if !errors.As(err, &opErr) {
			return err
		}
		// A file that cannot be opened still leaves an empty document.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	out := cmd.OutOrStdout()
	if application.FirstRun() {
		fmt.Fprintln(out, welcome)
	}

	// The console blocks on input, so a signal must not wait for the next line.
	console := app.NewConsole(application, cmd.InOrStdin(), out)
	done := make(chan error, 1)
	go func() {
		done <- console.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-ctx.Done():
		fmt.Fprintln(out)
	}
	return nil
}
