package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	ltree "github.com/charmbracelet/lipgloss/tree"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/tree"
)

// TreeFormatter renders nodes as the resolved forest of each display and
// displays as a table.
type TreeFormatter struct {
	opts FormatterOptions

	rootStyle   lipgloss.Style
	nameStyle   lipgloss.Style
	dimStyle    lipgloss.Style
	orphanStyle lipgloss.Style
}

// NewTreeFormatter creates a new tree formatter.
func NewTreeFormatter(opts FormatterOptions) *TreeFormatter {
	f := &TreeFormatter{
		opts:        opts,
		rootStyle:   lipgloss.NewStyle(),
		nameStyle:   lipgloss.NewStyle(),
		dimStyle:    lipgloss.NewStyle(),
		orphanStyle: lipgloss.NewStyle(),
	}
	if opts.Color {
		f.rootStyle = f.rootStyle.Bold(true).Foreground(lipgloss.Color("12"))
		f.nameStyle = f.nameStyle.Bold(true)
		f.dimStyle = f.dimStyle.Foreground(lipgloss.Color("8"))
		f.orphanStyle = f.orphanStyle.Foreground(lipgloss.Color("9"))
	}
	return f
}

// Nodes writes one tree per display. Nodes whose parent is missing are
// listed under an orphans branch.
func (f *TreeFormatter) Nodes(w io.Writer, nodes []model.Node) error {
	byDisplay := make(map[model.DisplayID][]model.Node)
	var order []model.DisplayID
	for _, n := range nodes {
		if _, ok := byDisplay[n.Display]; !ok {
			order = append(order, n.Display)
		}
		byDisplay[n.Display] = append(byDisplay[n.Display], n)
	}

	for _, id := range order {
		forest := tree.Resolve(byDisplay[id])
		root := ltree.Root(f.rootStyle.Render("display " + id.String())).
			Enumerator(ltree.RoundedEnumerator).
			EnumeratorStyle(f.dimStyle)

		for _, r := range forest.Roots {
			root.Child(f.branch(forest, r))
		}
		if orphans := forest.Orphans(); len(orphans) > 0 {
			branch := ltree.Root(f.orphanStyle.Render("orphans"))
			for i := range orphans {
				branch.Child(f.label(&orphans[i]) + f.dimStyle.Render(" → "+orphans[i].Parent))
			}
			root.Child(branch)
		}

		if _, err := fmt.Fprintln(w, root.String()); err != nil {
			return err
		}
	}
	return nil
}

func (f *TreeFormatter) branch(forest *tree.Forest, i int) any {
	entry := forest.Entries[i]
	label := f.label(forest.Node(i))
	if len(entry.Children) == 0 {
		return label
	}
	t := ltree.Root(label)
	for _, c := range entry.Children {
		t.Child(f.branch(forest, c))
	}
	return t
}

func (f *TreeFormatter) label(n *model.Node) string {
	var sb strings.Builder
	sb.WriteString(f.nameStyle.Render(n.Name))
	sb.WriteString(f.dimStyle.Render(" [" + string(n.Kind) + "]"))
	if n.Style.NotchAlign != "" {
		sb.WriteString(f.dimStyle.Render(" notch=" + string(n.Style.NotchAlign)))
	}
	text := strings.TrimSpace(n.Icon + " " + oneLine(n.Label))
	if text != "" {
		sb.WriteString(" " + strconv.Quote(text))
	}
	return sb.String()
}

// Displays writes a bordered table of displays.
func (f *TreeFormatter) Displays(w io.Writer, displays []daemon.DisplayReport) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(f.dimStyle).
		Headers("ID", "NAME", "SIZE", "NOTCH", "FLAGS", "NODES", "WINDOWS")
	for _, d := range displays {
		t.Row(
			d.ID.String(),
			d.Name,
			displaySize(d),
			notchString(d.Notch),
			displayFlags(d),
			strconv.Itoa(d.Nodes),
			windowList(d.Windows),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Status writes the status with styled labels.
func (f *TreeFormatter) Status(w io.Writer, st daemon.Status) error {
	for _, kv := range statusFields(st, f.opts.now()) {
		if _, err := fmt.Fprintf(w, "%s %s\n", f.dimStyle.Render(fmt.Sprintf("%-10s", kv[0]+":")), kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func windowList(windows []daemon.WindowReport) string {
	if len(windows) == 0 {
		return "-"
	}
	parts := make([]string, len(windows))
	for i, win := range windows {
		parts[i] = win.Alignment
		if win.Hidden {
			parts[i] += "(hidden)"
		}
	}
	return strings.Join(parts, ",")
}
