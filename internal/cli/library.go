package cli

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/metcalfc/peadz/internal/catalog"
	"github.com/metcalfc/peadz/internal/reader"
	"github.com/metcalfc/peadz/internal/state"
)

func newAddCmd(h *envHolder) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:   "add <file>...",
		Short: "Add documents to the library",
		Example: `  # Add a paper to the default folder
  peadz add paper.pdf

  # Add several files to a folder
  peadz add -f Work report.pdf slides.pdf

  # Add without a folder
  peadz add -f "" loose.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := h.env
			if !cmd.Flags().Changed("folder") {
				folder = env.Config.DefaultFolder
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			failed := 0
			for _, path := range args {
				if _, ok := reader.Lookup(path); !ok {
					fmt.Fprintf(errOut, "skipping %s: %v\n", path, reader.ErrUnsupportedFormat)
					failed++
					continue
				}

				e, err := env.Catalog.Add(path, folder)
				switch {
				case errors.Is(err, catalog.ErrDuplicateEntry):
					fmt.Fprintf(out, "%s is already in the library\n", e.DisplayName)
				case err != nil:
					fmt.Fprintf(errOut, "could not add %s: %v\n", path, err)
					failed++
				default:
					fmt.Fprintf(out, "added %s %s\n", e.DisplayName, e.ID)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents not added", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder to file the documents under (default from config)")
	return cmd
}

func newListCmd(h *envHolder) *cobra.Command {
	var folder string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List documents in the library",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := h.env
			entries := env.Catalog.List(folder)
			if len(entries) == 0 {
				if folder == catalog.AllFolders {
					fmt.Fprintln(cmd.OutOrStdout(), "Your library is empty.")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "No documents in %s.\n", folder)
				}
				return nil
			}

			marks, err := env.Marks()
			if err != nil {
				env.Logger("cli").WithError(err).Warn("page marks unavailable")
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.ID, e.Folder, e.DisplayName, lastPage(marks, e, env.Config.MarkKey)})
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "FOLDER", "NAME", "PAGE").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", catalog.AllFolders, "only list documents in this folder")
	return cmd
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// lastPage renders the remembered one-based page for e, or "-".
func lastPage(marks state.MarkStore, e catalog.Entry, strategy state.KeyStrategy) string {
	if marks == nil {
		return "-"
	}
	key, err := state.KeyFor(e.Location, strategy)
	if err != nil {
		return "-"
	}
	page, ok := marks.Get(key)
	if !ok {
		return "-"
	}
	return strconv.Itoa(page + 1)
}

func newRemoveCmd(h *envHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a document from the library",
		Long:  "Remove a document from the library. The file itself is left on disk.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := h.env
			e, ok := env.Catalog.Get(args[0])
			if !ok {
				return fmt.Errorf("no document with id %s", args[0])
			}
			if err := env.Catalog.DeleteEntry(e.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", e.DisplayName)
			return nil
		},
	}
}

func newFoldersCmd(h *envHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List folders and how many documents each holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := h.env
			folders := env.Catalog.Folders()
			if len(folders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No folders.")
				return nil
			}
			for _, f := range folders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d)\n", f, len(env.Catalog.List(f)))
			}
			return nil
		},
	}
}

func newRemoveFolderCmd(h *envHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "rmdir <folder>",
		Short: "Remove a folder and every document in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := h.env
			name := args[0]
			if !slices.Contains(env.Catalog.Folders(), name) {
				return fmt.Errorf("no folder named %s", name)
			}
			n := len(env.Catalog.List(name))
			if err := env.Catalog.DeleteFolder(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed folder %s and %d documents\n", name, n)
			return nil
		},
	}
}
