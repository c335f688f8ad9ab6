// Package cli wires the peadz command tree.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/metcalfc/peadz/internal/catalog"
	"github.com/metcalfc/peadz/internal/config"
	"github.com/metcalfc/peadz/internal/state"
)

// RunFunc starts the interactive interface.
type RunFunc func(cmd *cobra.Command, env *Env) error

// Env carries everything a command needs once configuration is loaded.
type Env struct {
	Config  *config.Config
	Log     *logrus.Logger
	Catalog *catalog.Catalog

	marks   state.MarkStore
	closers []io.Closer
}

// NewEnv loads configuration and opens the catalog. Logs go to logOut unless
// a log file is configured.
func NewEnv(cfgFile string, logOut io.Writer) (*Env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger, closer, err := cfg.NewLogger(logOut)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config:  cfg,
		Log:     logger,
		closers: []io.Closer{closer},
	}
	env.Catalog = catalog.Open(cfg.CatalogPath(), env.Logger("catalog"))
	return env, nil
}

// Logger returns a logger tagged with component.
func (e *Env) Logger(component string) *logrus.Entry {
	return e.Log.WithField("component", component)
}

// Marks opens the configured page mark store on first use.
func (e *Env) Marks() (state.MarkStore, error) {
	if e.marks != nil {
		return e.marks, nil
	}
	store, err := state.Open(e.Config.MarksBackend, e.Config.StateDir, e.Logger("marks"))
	if err != nil {
		return nil, err
	}
	e.UseMarks(store)
	return store, nil
}

// UseMarks installs store as the page mark store and closes it with the Env.
func (e *Env) UseMarks(store state.MarkStore) {
	e.marks = store
	e.closers = append(e.closers, store)
}

// RedirectLog sends log output to path, unless a log file is already
// configured. Full-screen interfaces call this so logs do not draw over them.
func (e *Env) RedirectLog(path string) error {
	if e.Config.LogFile != "" {
		return nil
	}
	f, err := config.OpenLogFile(path)
	if err != nil {
		return err
	}
	e.Log.SetOutput(f)
	e.closers = append(e.closers, f)
	return nil
}

// Close releases the mark store and log files.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	e.marks = nil
	return errors.Join(errs...)
}

// envHolder lets subcommands see the Env built in PersistentPreRunE.
type envHolder struct {
	env *Env
}

// NewRootCmd builds the command tree. run is invoked when peadz is started
// without a subcommand; nil prints help instead.
func NewRootCmd(run RunFunc) *cobra.Command {
	var cfgFile string
	h := &envHolder{}

	cmd := &cobra.Command{
		Use:   "peadz",
		Short: "A PDF library with a reader that remembers your page",
		Long: `peadz keeps a library of PDF files grouped into folders and opens them
in a paged or two-page reader that resumes at the last page you viewed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			env, err := NewEnv(cfgFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			h.env = env
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if h.env == nil {
				return nil
			}
			return h.env.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if run == nil {
				return cmd.Help()
			}
			return run(cmd, h.env)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/peadz/config.yaml)")

	cmd.AddCommand(newAddCmd(h))
	cmd.AddCommand(newListCmd(h))
	cmd.AddCommand(newRemoveCmd(h))
	cmd.AddCommand(newFoldersCmd(h))
	cmd.AddCommand(newRemoveFolderCmd(h))
	cmd.AddCommand(newMarkCmd(h))
	cmd.AddCommand(newConfigCmd(h))

	releaseOnError(h, cmd)
	for _, sub := range cmd.Commands() {
		releaseOnError(h, sub)
	}
	return cmd
}

// releaseOnError closes the Env when c fails, since cobra skips
// PersistentPostRunE after a RunE error.
func releaseOnError(h *envHolder, c *cobra.Command) {
	run := c.RunE
	if run == nil {
		return
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil && h.env != nil {
			if cerr := h.env.Close(); cerr != nil {
				h.env.Logger("cli").WithError(cerr).Warn("close failed")
			}
		}
		return err
	}
}

// Execute runs the command tree with fang, which adds --version, completions
// and styled errors.
func Execute(version string, run RunFunc) error {
	return fang.Execute(
		context.Background(),
		NewRootCmd(run),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	)
}
