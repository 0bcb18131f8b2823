// Package cli wires config, storage and the session into a cobra command
// tree. Each subcommand opens the saved collection, performs one operation
// and persists the result; the bare command starts the TUI.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/session"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/filestore"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type App struct {
	ConfigPath string
	DataDir    string
	Backend    string
	ExportDir  string
	LogLevel   string
	Theme      string
	Ephemeral  bool

	// In answers confirmation prompts when Interactive is set.
	In          io.Reader
	Interactive bool

	// Slot, when set, replaces the configured backend.
	Slot store.Slot
	// Now, when set, replaces the wall clock for new checklists and saves.
	Now func() time.Time

	cfg *config.Config
	log logging.Logger
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &App{
		In:          os.Stdin,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	return Run(ctx, app, args, stdout, stderr)
}

// Run is Execute with a caller-built App.
func Run(ctx context.Context, app *App, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(stderr, err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		if ue.hint != "" {
			ui.Hint(stderr, ue.hint)
		}
		return ExitUsage
	}
	return ExitFailure
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tada",
		Short:         "Local checklists in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive manager
  tada

  # Scriptable commands (indexes are 1-based, see: tada ls)
  tada new "Weekend trip"
  tada add 1 passport
  tada done 1 1
  tada export 1 --dir ~/Downloads
`),
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.configure(cmd.ErrOrStderr())
	}

	f := cmd.PersistentFlags()
	f.StringVar(&app.ConfigPath, "config", "", "Path to config.toml (default: $XDG_CONFIG_HOME/tada/config.toml)")
	f.StringVar(&app.DataDir, "data-dir", "", "Directory holding saved checklists")
	f.StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|file|memory)")
	f.StringVar(&app.ExportDir, "export-dir", "", "Directory export writes to")
	f.StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	f.StringVar(&app.Theme, "theme", "", "Theme (classic|neon|mono)")
	f.BoolVar(&app.Ephemeral, "ephemeral", false, "Keep checklists in memory only")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newNewCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newClearCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))

	return cmd
}

// configure resolves settings; flags win over the file and the environment.
func (app *App) configure(stderr io.Writer) error {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return err
	}
	override(&cfg.DataDir, app.DataDir)
	override(&cfg.Backend, app.Backend)
	override(&cfg.ExportDir, app.ExportDir)
	override(&cfg.LogLevel, app.LogLevel)
	override(&cfg.Theme, app.Theme)
	if app.Ephemeral {
		cfg.Backend = config.BackendMemory
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err: err}
	}

	l, err := logging.New(stderr, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return usageError{err: err}
	}
	ui.SetTheme(cfg.Theme)
	app.cfg, app.log = cfg, l
	return nil
}

func override(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (app *App) openSlot(ctx context.Context) (store.Slot, error) {
	if app.Slot != nil {
		return nopCloser{app.Slot}, nil
	}
	dir := app.cfg.ResolvedDataDir()
	switch app.cfg.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		st, err := sqlitestore.Open(ctx, filepath.Join(dir, "tada.db"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendFile:
		st, err := filestore.New(dir)
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return memstore.New(), nil
	}
}

// nopCloser keeps an injected slot open across commands.
type nopCloser struct{ store.Slot }

func (nopCloser) Close() error { return nil }

// openSession opens the collection and a session over it. The caller runs
// the returned close func.
func (app *App) openSession(cmd *cobra.Command) (*session.Session, func(), error) {
	ctx := cmd.Context()
	slot, err := app.openSlot(ctx)
	if err != nil {
		return nil, nil, err
	}
	coll := store.NewCollection(slot)
	closeFn := func() {
		if err := coll.Close(); err != nil {
			app.log.Warn(ctx, "close store", "err", err)
		}
	}
	opts := []session.Option{session.WithLogger(app.log)}
	if app.Now != nil {
		opts = append(opts, session.WithClock(app.Now))
	}
	sess, err := session.Open(ctx, coll, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if sess.Recovered {
		ui.Hint(cmd.ErrOrStderr(), "saved checklists were unreadable and have been reset")
	}
	return sess, closeFn, nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	closeLog, err := app.useLogFile()
	if err != nil {
		return err
	}
	defer closeLog()
	sess, closeFn, err := app.openSession(cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	return tui.Run(cmd.Context(), sess, tui.Options{
		ExportDir: app.cfg.ResolvedExportDir(),
		Logger:    app.log,
	})
}

// logFileName sits in the data dir and takes log output while the TUI owns
// the terminal.
const logFileName = "tada.log"

// useLogFile points the logger away from stderr, which the TUI draws over.
// Persistent backends append to logFileName; otherwise logs are dropped.
func (app *App) useLogFile() (func(), error) {
	var w io.Writer = io.Discard
	closeFn := func() {}
	if app.Slot == nil && app.cfg.Backend != config.BackendMemory {
		dir := app.cfg.ResolvedDataDir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, func() { _ = f.Close() }
	}
	l, err := logging.New(w, logging.Options{Level: app.cfg.LogLevel, Format: app.cfg.LogFormat})
	if err != nil {
		closeFn()
		return nil, usageError{err: err}
	}
	app.log = l
	return closeFn, nil
}

// confirm asks prompt on an interactive stdin. Without a terminal the
// caller must pass --yes.
func (app *App) confirm(cmd *cobra.Command, prompt string, yes bool) error {
	if yes {
		return nil
	}
	if !app.Interactive || app.In == nil {
		return usageError{err: errors.New("confirmation required"), hint: "Pass --yes to skip the prompt"}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	line, err := bufio.NewReader(app.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	}
	return errCancelled
}

var errCancelled = errors.New("cancelled")

// usageError marks a failure caused by the command line itself.
type usageError struct {
	err  error
	hint string
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError{err: fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()), hint: "Run `tada --help` for usage"}
	}
	return nil
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{err: fmt.Errorf("usage: %s", usage)}
		}
		return nil
	}
}

func minArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < n {
			return usageError{err: fmt.Errorf("usage: %s", usage)}
		}
		return nil
	}
}
