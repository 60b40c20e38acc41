package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/macro/step"
	"github.com/dshills/macrokit/internal/macro/transform"
)

func (r *runner) offsetDelaysCommand() *cobra.Command {
	var (
		sel  selectFlags
		edit editFlags
		by   string
	)

	cmd := &cobra.Command{
		Use:   "offset-delays FILE",
		Short: "Add a millisecond offset to delay steps",
		Long: `Offset-delays adds --by milliseconds to every selected delay, on both ends
of random delays. Results are clamped at zero.`,
		Example: `  macrokit offset-delays login.amc --by=-20
  macrokit offset-delays login.amc --by 150 --select 4-9`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offset, err := transform.ParseOffset(by)
			if err != nil {
				return err
			}
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				idx, err := sel.resolve(doc.Steps)
				if err != nil {
					return "", err
				}
				steps := doc.Steps.Steps()
				n := transform.OffsetDelays(steps, idx, offset)
				doc.Steps = step.NewList(steps)
				return fmt.Sprintf("offset %s by %d ms", plural(n, "delay"), offset), nil
			})
		},
	}

	sel.register(cmd)
	edit.register(cmd)
	cmd.Flags().StringVar(&by, "by", "", "signed offset in milliseconds")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func (r *runner) offsetCoordsCommand() *cobra.Command {
	var (
		sel  selectFlags
		edit editFlags
		by   string
	)

	cmd := &cobra.Command{
		Use:   "offset-coords FILE",
		Short: "Shift cursor moves and positioned clicks",
		Example: `  macrokit offset-coords login.amc --by 10,-5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dx, dy, err := transform.ParseCoordinateOffset(by)
			if err != nil {
				return err
			}
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				idx, err := sel.resolve(doc.Steps)
				if err != nil {
					return "", err
				}
				steps := doc.Steps.Steps()
				n := transform.OffsetCoordinates(steps, idx, dx, dy)
				doc.Steps = step.NewList(steps)
				return fmt.Sprintf("shifted %s by (%d, %d)", plural(n, "step"), dx, dy), nil
			})
		},
	}

	sel.register(cmd)
	edit.register(cmd)
	cmd.Flags().StringVar(&by, "by", "", "pixel offset as dx,dy")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func (r *runner) removeDelaysCommand() *cobra.Command {
	var (
		sel  selectFlags
		edit editFlags
	)

	cmd := &cobra.Command{
		Use:   "remove-delays FILE",
		Short: "Delete delay steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				idx, err := sel.resolve(doc.Steps)
				if err != nil {
					return "", err
				}
				n := transform.RemoveDelays(doc.Steps, idx)
				return fmt.Sprintf("removed %s", plural(n, "delay")), nil
			})
		},
	}

	sel.register(cmd)
	edit.register(cmd)
	return cmd
}

func (r *runner) scriptCommand() *cobra.Command {
	var edit editFlags

	cmd := &cobra.Command{
		Use:   "script FILE SCRIPT",
		Short: "Rewrite steps with a Lua script",
		Long: `Script runs the Lua function transform(step) over every step. Returning nil
drops the step, returning a table replaces it, and returning the argument
keeps it. Replacement steps are validated like edited ones.`,
		Example: `  -- slower.lua
  function transform(s)
    if s.kind == "Delay" then s.min = s.min * 2 end
    return s
  end`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := transform.LoadScriptFile(args[1], r.app.Logger())
			if err != nil {
				return err
			}
			defer script.Close()

			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				before := doc.Steps.Len()
				steps, err := script.Apply(cmd.Context(), doc.Steps.Steps())
				if err != nil {
					return "", err
				}
				doc.Steps = step.NewList(steps)
				return fmt.Sprintf("%s in, %s out", plural(before, "step"), plural(len(steps), "step")), nil
			})
		},
	}

	edit.register(cmd)
	return cmd
}
