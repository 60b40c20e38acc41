// Package cli implements the macrokit commands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/macrokit/internal/app"
	"github.com/dshills/macrokit/internal/macro/step"
	"github.com/dshills/macrokit/internal/macro/transform"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// ErrNoSelection indicates a destructive command run without a selection.
var ErrNoSelection = errors.New("nothing selected, use --select or --match")

// runner carries the state shared by every command of one invocation.
type runner struct {
	info       BuildInfo
	configPath string
	logLevel   string

	app *app.Application

	// Hooks for the terminal recorder. Tests replace them.
	isTerminal func() bool
	openScreen func() (tcell.Screen, error)
}

// NewRootCommand builds the macrokit command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	r := &runner{
		info:       info,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		openScreen: openTerminalScreen,
	}
	return r.rootCommand()
}

func (r *runner) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "macrokit",
		Short: "Record, consolidate, edit and replay input macros",
		Long: `macrokit turns raw keyboard and mouse event streams into compact macro
timelines of readable steps, lets you edit them, and replays them.

Macros are read from .amc macro files, .jsonl raw event logs, and .json or
.yaml step documents. The extension picks the format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(app.Options{
				ConfigPath: r.configPath,
				LogLevel:   r.logLevel,
				LogOutput:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			r.app = application
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&r.configPath, "config", "c", "", "config file (default is $MACROKIT_CONFIG or the user config dir)")
	root.PersistentFlags().StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		r.consolidateCommand(),
		r.showCommand(),
		r.exportCommand(),
		r.addCommand(),
		r.editCommand(),
		r.deleteCommand(),
		r.moveCommand(),
		r.commentCommand(),
		r.copyCommand(),
		r.offsetDelaysCommand(),
		r.offsetCoordsCommand(),
		r.removeDelaysCommand(),
		r.scriptCommand(),
		r.recordCommand(),
		r.watchCommand(),
		r.playCommand(),
		r.configCommand(),
		r.versionCommand(),
	)
	return root
}

func openTerminalScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// editFlags are shared by commands that rewrite a macro.
type editFlags struct {
	output string
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the result here instead of back to the input file")
}

// selectFlags pick the steps a command works on.
type selectFlags struct {
	selection string
	pattern   string
}

func (f *selectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.selection, "select", "s", "", `step numbers such as "1-3,7" (default all)`)
	cmd.Flags().StringVarP(&f.pattern, "match", "m", "", `wildcard over descriptions such as "Press *"`)
}

func (f *selectFlags) empty() bool {
	return strings.TrimSpace(f.selection) == "" && f.pattern == ""
}

// resolve returns the selected indices of l. A pattern narrows the
// numbered selection to the steps whose description matches.
func (f *selectFlags) resolve(l *step.List) ([]int, error) {
	idx, err := step.ParseSelection(f.selection, l.Len())
	if err != nil {
		return nil, err
	}
	if f.pattern == "" {
		return idx, nil
	}
	return intersect(idx, transform.SelectMatching(l.Steps(), f.pattern)), nil
}

// parseSeq turns a 1-based step number argument into an index.
func parseSeq(arg string, l *step.List) (int, error) {
	seq, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || seq < 1 || seq > l.Len() {
		return 0, fmt.Errorf("%w: step %q (macro has %d steps)", step.ErrIndexOutOfRange, arg, l.Len())
	}
	return seq - 1, nil
}

// rewrite opens path, applies fn to the document and saves it to output,
// or back to path.
func (r *runner) rewrite(cmd *cobra.Command, path, output string, fn func(*app.Document) (string, error)) error {
	doc, err := r.app.Open(path)
	if err != nil {
		return err
	}
	if doc.Err != nil {
		return doc.Err
	}
	summary, err := fn(doc)
	if err != nil {
		return err
	}
	if err := r.app.Save(doc, output); err != nil {
		return err
	}
	if summary != "" {
		fmt.Fprintln(cmd.OutOrStdout(), summary)
	}
	return nil
}

func plural(n int, word string) string {
	switch {
	case n == 1:
		return fmt.Sprintf("%d %s", n, word)
	case strings.HasSuffix(word, "s"):
		return fmt.Sprintf("%d %ses", n, word)
	default:
		return fmt.Sprintf("%d %ss", n, word)
	}
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
