package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/step"
)

// stepFlags carry the fields of a step typed on the command line.
type stepFlags struct {
	kind    string
	release bool
	min     string
	max     string
	random  bool
	key     string
	button  string
	x       string
	y       string
	line    string
	comment string
}

func (f *stepFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.kind, "kind", "", "step kind: delay, key, release, click, mouserelease, move or goto")
	fl.BoolVar(&f.release, "release", false, "make a key or click step a release")
	fl.StringVar(&f.min, "min", "", "delay in milliseconds, or the lower bound of a random delay")
	fl.StringVar(&f.max, "max", "", "upper bound of a random delay")
	fl.BoolVar(&f.random, "random", false, "wait a random time between --min and --max")
	fl.StringVar(&f.key, "key", "", `key name such as "A", "Return" or "LeftShift"`)
	fl.StringVar(&f.button, "button", "", "mouse button: left, right, middle, x1 or x2")
	fl.StringVar(&f.x, "x", "", "X coordinate")
	fl.StringVar(&f.y, "y", "", "Y coordinate")
	fl.StringVar(&f.line, "line", "", "goto target step number")
	fl.StringVar(&f.comment, "comment", "", "comment shown next to the step")
}

// apply overlays the flags the user set onto form.
func (f *stepFlags) apply(cmd *cobra.Command, form *codec.Form) error {
	fl := cmd.Flags()
	if fl.Changed("kind") {
		k, err := step.ParseKind(f.kind)
		if err != nil {
			return err
		}
		form.Kind = k
	}
	if fl.Changed("release") {
		form.Kind = releaseKind(form.Kind, f.release)
	}

	set := func(name string, dst *string, v string) {
		if fl.Changed(name) {
			*dst = v
		}
	}
	set("min", &form.MinDelay, f.min)
	set("max", &form.MaxDelay, f.max)
	set("key", &form.KeyName, f.key)
	set("button", &form.Button, f.button)
	set("x", &form.X, f.x)
	set("y", &form.Y, f.y)
	set("line", &form.Line, f.line)
	set("comment", &form.Comment, f.comment)
	if fl.Changed("random") {
		form.Random = f.random
	}
	return nil
}

// releaseKind switches press kinds to their release counterpart and back.
func releaseKind(k step.Kind, release bool) step.Kind {
	switch {
	case k.IsKey() && release:
		return step.KindKeyRelease
	case k.IsKey():
		return step.KindKeyPress
	case k.IsButton() && release:
		return step.KindMouseRelease
	case k.IsButton():
		return step.KindMouseClick
	default:
		return k
	}
}

func (r *runner) addCommand() *cobra.Command {
	var (
		fields stepFlags
		edit   editFlags
		after  int
	)

	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Insert a step",
		Example: `  macrokit add login.amc --kind key --key Return
  macrokit add login.amc --after 3 --kind delay --min 200 --max 400 --random
  macrokit add login.amc --kind click --button left --x 640 --y 360`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("kind") {
				return errors.New("--kind is required")
			}
			form := codec.Form{}
			if err := fields.apply(cmd, &form); err != nil {
				return err
			}
			s, err := codec.Build(form)
			if err != nil {
				return err
			}

			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				var pos int
				switch {
				case after < 0:
					pos = doc.Steps.Insert(doc.Steps.Len(), s)
				case after > doc.Steps.Len():
					return "", fmt.Errorf("%w: --after %d (macro has %d steps)", step.ErrIndexOutOfRange, after, doc.Steps.Len())
				default:
					pos = doc.Steps.Insert(after-1, s)
				}
				return fmt.Sprintf("added %d. %s", pos+1, s.Description), nil
			})
		},
	}

	fields.register(cmd)
	edit.register(cmd)
	cmd.Flags().IntVar(&after, "after", -1, "insert after this step number, 0 for the front (default end)")
	return cmd
}

func (r *runner) editCommand() *cobra.Command {
	var (
		fields stepFlags
		edit   editFlags
	)

	cmd := &cobra.Command{
		Use:   "edit FILE STEP",
		Short: "Change the fields of a step",
		Long: `Edit decodes the step's description into its fields, overlays the fields
given as flags, and rebuilds the step. Fields that are not given keep their
current value.`,
		Example: `  macrokit edit login.amc 4 --min 150
  macrokit edit login.amc 7 --x 10 --y 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				i, err := parseSeq(args[1], doc.Steps)
				if err != nil {
					return "", err
				}
				old, _ := doc.Steps.At(i)
				if old.Kind == step.KindOther {
					return "", fmt.Errorf("step %d (%s) cannot be edited", old.Seq, old.Description)
				}

				form, err := codec.Decode(old)
				if err != nil {
					// Blank fields must come from flags; Build reports any still missing.
					r.app.Logger().Warn("%v", err)
				}
				if err := fields.apply(cmd, &form); err != nil {
					return "", err
				}
				s, err := codec.Build(form)
				if err != nil {
					return "", err
				}
				if err := doc.Steps.Replace(i, s); err != nil {
					return "", err
				}
				return fmt.Sprintf("%d. %s -> %s", i+1, old.Description, s.Description), nil
			})
		},
	}

	fields.register(cmd)
	edit.register(cmd)
	return cmd
}

func (r *runner) deleteCommand() *cobra.Command {
	var (
		sel  selectFlags
		edit editFlags
	)

	cmd := &cobra.Command{
		Use:   "delete FILE",
		Short: "Delete the selected steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sel.empty() {
				return ErrNoSelection
			}
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				idx, err := sel.resolve(doc.Steps)
				if err != nil {
					return "", err
				}
				n := doc.Steps.Delete(idx...)
				return fmt.Sprintf("deleted %s", plural(n, "step")), nil
			})
		},
	}

	sel.register(cmd)
	edit.register(cmd)
	return cmd
}

func (r *runner) moveCommand() *cobra.Command {
	var (
		edit editFlags
		up   bool
		down bool
	)

	cmd := &cobra.Command{
		Use:   "move FILE STEP",
		Short: "Move a step up or down by one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if up == down {
				return errors.New("give exactly one of --up or --down")
			}
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				i, err := parseSeq(args[1], doc.Steps)
				if err != nil {
					return "", err
				}
				to := i + 1
				if up {
					to = i - 1
					err = doc.Steps.MoveUp(i)
				} else {
					err = doc.Steps.MoveDown(i)
				}
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("moved step %d to %d", i+1, to+1), nil
			})
		},
	}

	edit.register(cmd)
	cmd.Flags().BoolVar(&up, "up", false, "move toward the start")
	cmd.Flags().BoolVar(&down, "down", false, "move toward the end")
	return cmd
}

func (r *runner) commentCommand() *cobra.Command {
	var edit editFlags

	cmd := &cobra.Command{
		Use:   "comment FILE STEP [TEXT...]",
		Short: "Set or clear the comment of a step",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[2:], " ")
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				i, err := parseSeq(args[1], doc.Steps)
				if err != nil {
					return "", err
				}
				if err := doc.Steps.SetComment(i, text); err != nil {
					return "", err
				}
				s, _ := doc.Steps.At(i)
				return s.String(), nil
			})
		},
	}

	edit.register(cmd)
	return cmd
}

func (r *runner) copyCommand() *cobra.Command {
	var (
		sel   selectFlags
		edit  editFlags
		after int
		cut   bool
	)

	cmd := &cobra.Command{
		Use:   "copy FILE",
		Short: "Duplicate the selected steps elsewhere in the macro",
		Long: `Copy pastes the selected steps after the step numbered --after. With --cut
the originals are removed first and --after counts steps that remain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sel.empty() {
				return ErrNoSelection
			}
			return r.rewrite(cmd, args[0], edit.output, func(doc *app.Document) (string, error) {
				idx, err := sel.resolve(doc.Steps)
				if err != nil {
					return "", err
				}

				var clip []step.Step
				if cut {
					clip = doc.Steps.Cut(idx...)
				} else {
					clip = doc.Steps.Copy(idx...)
				}

				if after < 0 || after > doc.Steps.Len() {
					after = doc.Steps.Len()
				}
				pos := doc.Steps.Paste(after-1, clip)
				return fmt.Sprintf("pasted %s at %d", plural(len(clip), "step"), pos+1), nil
			})
		},
	}

	sel.register(cmd)
	edit.register(cmd)
	cmd.Flags().IntVar(&after, "after", -1, "paste after this step number, 0 for the front (default end)")
	cmd.Flags().BoolVar(&cut, "cut", false, "remove the selected steps before pasting")
	return cmd
}
