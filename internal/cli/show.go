package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/macro/step"
	"github.com/dshills/macrokit/internal/macro/transform"
)

func (r *runner) consolidateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "consolidate INPUT",
		Short: "Consolidate a macro file or raw event log into steps",
		Long: `Consolidate reads an .amc macro file or a .jsonl raw event log, merges
repeated actions, folds the time between them into delay steps, and prints
the resulting timeline. With --output the timeline is saved instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := r.app.Open(args[0])
			if err != nil {
				return err
			}
			if app.KindOf(args[0]) == app.KindSteps {
				r.app.Logger().Warn("%s already holds steps, nothing to consolidate", args[0])
			}
			for _, w := range doc.Warnings {
				r.app.Logger().Warn("%v", w)
			}
			if doc.Err != nil {
				if output != "" {
					return doc.Err
				}
				r.app.Logger().Warn("showing the steps built before: %v", doc.Err)
			}

			out := cmd.OutOrStdout()
			if output == "" {
				renderSteps(out, doc.Steps.Steps(), nil, isTerminalWriter(out))
				return nil
			}
			if err := r.app.Save(doc, output); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s written to %s\n", plural(doc.Steps.Len(), "step"), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "save the steps to this file (.amc, .json or .yaml)")
	return cmd
}

func (r *runner) showCommand() *cobra.Command {
	var (
		sel     selectFlags
		kind    string
		asTable bool
	)

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the steps of a macro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := r.app.Open(args[0])
			if err != nil {
				return err
			}
			if doc.Err != nil {
				r.app.Logger().Warn("showing the steps built before: %v", doc.Err)
			}

			steps := doc.Steps.Steps()
			idx, err := sel.resolve(doc.Steps)
			if err != nil {
				return err
			}
			if kind != "" {
				k, err := step.ParseKind(kind)
				if err != nil {
					return err
				}
				idx = intersect(idx, transform.SelectKind(steps, k))
			}

			out := cmd.OutOrStdout()
			renderSteps(out, steps, idx, asTable || isTerminalWriter(out))
			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only show steps of this kind (delay, key, click, move, goto, ...)")
	cmd.Flags().BoolVar(&asTable, "table", false, "render a table even when not writing to a terminal")
	return cmd
}

func (r *runner) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export INPUT OUTPUT",
		Short: "Convert a macro to another format",
		Long: `Export writes the steps of INPUT to OUTPUT. The output extension picks the
format: .amc for a macro file, .json or .yaml for a step document.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := r.app.Open(args[0])
			if err != nil {
				return err
			}
			if doc.Err != nil {
				return doc.Err
			}
			if err := r.app.Save(doc, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s written to %s\n", plural(doc.Steps.Len(), "step"), args[1])
			return nil
		},
	}
}

// intersect keeps the entries of a that are also in b, in a's order.
func intersect(a, b []int) []int {
	in := make(map[int]bool, len(b))
	for _, i := range b {
		in[i] = true
	}
	out := make([]int, 0, len(a))
	for _, i := range a {
		if in[i] {
			out = append(out, i)
		}
	}
	return out
}
