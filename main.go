//go:build !gui

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/metcalfc/peadz/internal/cli"
	"github.com/metcalfc/peadz/internal/state"
	"github.com/metcalfc/peadz/internal/tui"
)

// tuiOptions opens the mark store for the terminal UI. The preferences
// backend belongs to the desktop app, so the terminal falls back to JSON.
func tuiOptions(env *cli.Env) (tui.Options, error) {
	log := env.Logger("main")
	if env.Config.MarksBackend == state.BackendPreferences {
		log.Warn("preferences marks backend needs the desktop app, using json")
		store, err := state.NewJSONStore(env.Config.StateDir, env.Logger("marks"))
		if err != nil {
			return tui.Options{}, err
		}
		env.UseMarks(store)
	}

	marks, err := env.Marks()
	if err != nil {
		return tui.Options{}, err
	}
	return tui.Options{
		Catalog:       env.Catalog,
		Marks:         marks,
		KeyStrategy:   env.Config.MarkKey,
		DefaultFolder: env.Config.DefaultFolder,
		BookMode:      env.Config.BookMode,
		Log:           env.Logger("tui"),
	}, nil
}

func runTUI(cmd *cobra.Command, env *cli.Env) error {
	if err := env.RedirectLog(filepath.Join(env.Config.StateDir, "peadz.log")); err != nil {
		return err
	}
	opts, err := tuiOptions(env)
	if err != nil {
		return err
	}
	return tui.Run(cmd.Context(), opts)
}

func main() {
	if err := cli.Execute(versionString(), runTUI); err != nil {
		os.Exit(1)
	}
}
