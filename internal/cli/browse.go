package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/pkg/lineage"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(14)
)

// browseCommand creates the browse command, an interactive node explorer.
func (c *CLI) browseCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "browse <entity-id>",
		Short: "Explore a lineage graph interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cfg)
			if err != nil {
				return err
			}
			defer runner.Close()

			q := cfg.LineageOptions()
			q.Refresh = refresh

			spinner := newSpinnerWithContext(ctx, "Fetching lineage for "+args[0]+"...")
			spinner.Start()
			g, err := runner.GetLineage(ctx, args[0], q)
			spinner.Stop()
			if err != nil {
				return err
			}
			if g.NodeCount() == 0 {
				printWarning("No lineage for %s", args[0])
				return nil
			}

			_, err = tea.NewProgram(newNodeListModel(g), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the freshness window and refetch")
	cmd.Flags().String("direction", "", "traversal direction: upstream, downstream, both (default)")
	cmd.Flags().Int("depth", 0, "traversal depth (default 3)")

	cmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return c.completeEntityIDs(cmd, args, toComplete)
	}
	registerLineageFlagCompletions(cmd)
	return cmd
}

// =============================================================================
// NodeListModel - Interactive node explorer
// =============================================================================

// NodeListModel is the bubbletea model for browsing a lineage graph: a
// scrolling node table with a detail pane for the selected node.
type NodeListModel struct {
	Graph    *lineage.Graph
	Cursor   int
	Height   int
	Offset   int
	Detailed bool
}

func newNodeListModel(g *lineage.Graph) NodeListModel {
	return NodeListModel{Graph: g, Height: 15}
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Detailed {
				m.Detailed = false
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Graph.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Detailed = !m.Detailed
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m NodeListModel) View() string {
	var b strings.Builder

	t := m.Graph.Traversal
	b.WriteString(StyleTitle.Render("Lineage of " + rootLabel(t)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s, depth %d", t.Direction, t.Depth)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if m.Detailed {
		b.WriteString(m.detailView(m.Graph.Nodes[m.Cursor]))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Graph.Nodes))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Graph.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		up, down := edgeCounts(m.Graph, n.ID)
		rows = append(rows, []string{cursor, n.Label, n.Kind, fmt.Sprint(up), fmt.Sprint(down)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	roots := rootSet(t)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Entity", "Kind", "In", "Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Graph.Nodes) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorDim)
			}
			if roots[m.Graph.Nodes[idx].ID] && col == 1 {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d edges", m.Cursor+1, len(m.Graph.Nodes), m.Graph.EdgeCount())))
	return b.String()
}

func (m NodeListModel) detailView(n lineage.Node) string {
	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(detailKeyStyle.Render(k) + " " + StyleValue.Render(v) + "\n")
	}

	line("id", n.ID)
	line("label", n.Label)
	line("kind", n.Kind)
	pos := fmt.Sprintf("%.0f, %.0f", n.Position.X, n.Position.Y)
	if n.AutoPlaced {
		pos += listDimStyle.Render(" (auto)")
	}
	line("position", pos)

	if len(n.Columns) > 0 {
		b.WriteString("\n" + StyleTitle.Render("Columns") + "\n")
		for _, c := range n.Columns {
			typ := c.DataType
			if c.Classification != "" {
				typ += " [" + c.Classification + "]"
			}
			line(c.Name, typ)
		}
	}

	if len(n.Metadata) > 0 {
		b.WriteString("\n" + StyleTitle.Render("Metadata") + "\n")
		for _, k := range slices.Sorted(maps.Keys(n.Metadata)) {
			line(k, fmt.Sprint(n.Metadata[k]))
		}
	}

	edges := m.Graph.EdgesTouching(n.ID)
	if len(edges) > 0 {
		b.WriteString("\n" + StyleTitle.Render("Relationships") + "\n")
		for _, e := range edges {
			arrow := StyleHighlight.Render(e.SourceID) + " → " + e.TargetID
			if e.SourceID == n.ID {
				arrow = e.SourceID + " → " + StyleHighlight.Render(e.TargetID)
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Style.StrokeColor))
			b.WriteString("  " + arrow + "  " + style.Render(e.Label) + "\n")
			if e.ColumnMapping != nil {
				b.WriteString(listDimStyle.Render(fmt.Sprintf("    %s → %s",
					strings.Join(e.ColumnMapping.SourceColumns, ", "),
					strings.Join(e.ColumnMapping.TargetColumns, ", "))) + "\n")
			}
		}
	}

	b.WriteString("\n" + listDimStyle.Render("esc back"))
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// edgeCounts returns the number of incoming and outgoing edges of id.
func edgeCounts(g *lineage.Graph, id string) (in, out int) {
	for _, e := range g.Edges {
		if e.TargetID == id {
			in++
		}
		if e.SourceID == id {
			out++
		}
	}
	return in, out
}

func rootSet(t lineage.Traversal) map[string]bool {
	roots := map[string]bool{t.RootEntityID: true}
	for _, id := range t.RootEntityIDs {
		roots[id] = true
	}
	return roots
}

func rootLabel(t lineage.Traversal) string {
	if len(t.RootEntityIDs) > 0 {
		return strings.Join(t.RootEntityIDs, ", ")
	}
	return t.RootEntityID
}
