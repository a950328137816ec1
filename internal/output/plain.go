package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
)

// PlainFormatter writes one tab-separated record per line.
type PlainFormatter struct {
	opts FormatterOptions
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{opts: opts}
}

// Nodes writes name, type, display, parent, position and label per node.
func (f *PlainFormatter) Nodes(w io.Writer, nodes []model.Node) error {
	for _, n := range nodes {
		parent := n.Parent
		if parent == "" {
			parent = "-"
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%s\n",
			n.Name, n.Kind, n.Display, parent, n.Position, oneLine(n.Label))
		if err != nil {
			return err
		}
	}
	return nil
}

// Displays writes id, name, size, notch, flags and node count per display.
func (f *PlainFormatter) Displays(w io.Writer, displays []daemon.DisplayReport) error {
	for _, d := range displays {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n",
			d.ID, d.Name, displaySize(d), notchString(d.Notch), displayFlags(d), d.Nodes)
		if err != nil {
			return err
		}
	}
	return nil
}

// Status writes the daemon status as key: value lines.
func (f *PlainFormatter) Status(w io.Writer, st daemon.Status) error {
	for _, kv := range statusFields(st, f.opts.now()) {
		if _, err := fmt.Fprintf(w, "%-10s %s\n", kv[0]+":", kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// statusFields returns the labelled status values in display order.
func statusFields(st daemon.Status, now time.Time) [][2]string {
	lastPass := "never"
	if !st.LastPass.IsZero() {
		lastPass = humanize.RelTime(st.LastPass, now, "ago", "from now")
		if st.LastPassID != "" {
			lastPass += " (" + st.LastPassID + ")"
		}
	}
	started := "-"
	if !st.StartedAt.IsZero() {
		started = humanize.RelTime(st.StartedAt, now, "ago", "from now")
	}
	return [][2]string{
		{"version", st.Version},
		{"started", started},
		{"nodes", humanize.Comma(int64(st.Nodes))},
		{"displays", strconv.Itoa(st.Displays)},
		{"windows", strconv.Itoa(st.Windows)},
		{"passes", humanize.Comma(int64(st.Passes))},
		{"last pass", lastPass},
		{"pending", strconv.FormatBool(st.Pending)},
	}
}

func displaySize(d daemon.DisplayReport) string {
	if !d.Attached {
		return "-"
	}
	return fmt.Sprintf("%gx%g", d.Width, d.Height)
}

func notchString(r *layout.Rect) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%gx%g+%g", r.Width, r.Height, r.X)
}

func displayFlags(d daemon.DisplayReport) string {
	var flags []string
	if d.Main {
		flags = append(flags, "main")
	}
	if !d.Attached {
		flags = append(flags, "detached")
	}
	if d.Fullscreen {
		flags = append(flags, "fullscreen")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
