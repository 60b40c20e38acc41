package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dshills/macrokit/internal/macro/step"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	seqStyle     = cellStyle.Align(lipgloss.Right).Foreground(lipgloss.Color("8"))
	delayStyle   = cellStyle.Foreground(lipgloss.Color("8"))
	gotoStyle    = cellStyle.Foreground(lipgloss.Color("5"))
	commentStyle = cellStyle.Italic(true).Foreground(lipgloss.Color("6"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderSteps writes the steps at the given indices, or all of them when
// indices is nil. Terminals get a table; anything else gets one step per
// line so the output stays easy to grep and diff.
func renderSteps(w io.Writer, steps []step.Step, indices []int, asTable bool) {
	if indices == nil {
		indices = make([]int, len(steps))
		for i := range indices {
			indices[i] = i
		}
	}

	if !asTable {
		for _, i := range indices {
			fmt.Fprintln(w, steps[i].String())
		}
		return
	}

	kinds := make([]step.Kind, 0, len(indices))
	rows := make([][]string, 0, len(indices))
	for _, i := range indices {
		s := steps[i]
		kinds = append(kinds, s.Kind)
		rows = append(rows, []string{strconv.Itoa(s.Seq), s.Kind.String(), s.Description, s.Comment})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Kind", "Step", "Comment").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return seqStyle
			case col == 3:
				return commentStyle
			}
			switch kinds[row] {
			case step.KindDelay:
				return delayStyle
			case step.KindGoto:
				return gotoStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, t.Render())
}
