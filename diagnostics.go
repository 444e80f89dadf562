package predicate

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Dump renders the evaluation state of every node as a table, one row
// per node in index order, for diagnostics. The graph supplies node
// labels; a nil graph still renders the state columns.
func (g *GraphEvalState) Dump(graph *Graph) string {
	tw := table.NewWriter()
	tw.SetTitle("\nPREDICATE EVALUATION STATE\n")
	tw.AppendHeader(table.Row{"\nNode", "\nExpression", "\nMode", "\nFinished", "\nPhase", "Final\nIndex", "\nValue"})

	finished := 0
	for i := range g.states {
		s := &g.states[i]
		if s.IsFinished() {
			finished++
		}

		label := ""
		if graph != nil {
			if n := graph.Node(i); n != nil {
				label = n.Label()
			}
		}

		final := "?"
		if fi, err := g.FinalIndex(i); err == nil {
			final = fmt.Sprintf("%d", fi)
		}

		tw.AppendRow(table.Row{
			i,
			label,
			modeString(s),
			yesNo(s.IsFinished()),
			s.Phase(),
			final,
			s.Value(),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, WidthMax: 40},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, WidthMax: 40},
	})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)

	return tw.Render() + "\n" +
		fmt.Sprintf("%s finished of %s\n",
			english.Plural(finished, "node", ""),
			english.Plural(len(g.states), "node", ""))
}

// modeString names the active result mode of a node's state.
func modeString(s *NodeEvalState) string {
	switch {
	case s.IsForwarding():
		return fmt.Sprintf("forward → %d", s.ForwardedTo().Index())
	case s.IsAliased():
		return "alias"
	case s.local:
		return "local list"
	default:
		return "unset"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
