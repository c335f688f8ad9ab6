package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/metcalfc/peadz/internal/state"
)

func newMarkCmd(h *envHolder) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "mark <file> [page]",
		Short: "Show or set the page a document reopens at",
		Example: `  # Show the remembered page
  peadz mark report.pdf

  # Reopen report.pdf at page 12
  peadz mark report.pdf 12

  # Forget it
  peadz mark --clear report.pdf`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := h.env
			path := args[0]
			name := filepath.Base(path)

			key, err := state.KeyFor(path, env.Config.MarkKey)
			if err != nil {
				return err
			}
			marks, err := env.Marks()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case forget:
				if err := marks.Clear(key); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: forgotten\n", name)
			case len(args) == 2:
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return fmt.Errorf("page must be a positive number, got %q", args[1])
				}
				if err := marks.Set(key, n-1); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: page %d\n", name, n)
			default:
				page, ok := marks.Get(key)
				if !ok {
					fmt.Fprintf(out, "%s: no page remembered\n", name)
					return nil
				}
				fmt.Fprintf(out, "%s: page %d\n", name, page+1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&forget, "clear", false, "forget the remembered page")
	return cmd
}

func newConfigCmd(h *envHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(h.env.Config); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
