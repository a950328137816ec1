// Package tui provides the BubbleTea-based live view of a running notchbard.
package tui

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/core"
	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/output"
	"github.com/jmylchreest/notchbar/internal/tree"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeDisplays
	ModeHelp
)

// Source supplies the daemon state shown by the TUI.
type Source interface {
	Query(name string, display *model.DisplayID) ([]model.Node, error)
	Displays() ([]daemon.DisplayReport, error)
	Status() (daemon.Status, error)
}

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg      *config.Config
	source   Source
	changes  <-chan struct{}
	interval time.Duration

	// Current mode
	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	help        help.Model

	// State
	nodes       []model.Node
	displays    []daemon.DisplayReport
	status      daemon.Status
	selected    *model.Node
	searchQuery string
	lastUpdate  time.Time
	width       int
	height      int
	ready       bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool
}

// nodeItem wraps a node for the list component.
type nodeItem struct {
	node   model.Node
	depth  int
	orphan bool
}

func (i nodeItem) Title() string {
	return strings.Repeat("  ", i.depth) + i.node.Name
}

func (i nodeItem) Description() string {
	parts := []string{string(i.node.Kind), "display " + i.node.Display.String()}
	if i.orphan {
		parts = append(parts, "orphan of "+i.node.Parent)
	}
	if text := strings.TrimSpace(i.node.Icon + " " + i.node.Label); text != "" {
		parts = append(parts, strings.ReplaceAll(text, "\n", " "))
	}
	return strings.Repeat("  ", i.depth) + strings.Join(parts, " · ")
}

func (i nodeItem) FilterValue() string {
	return i.node.Name + " " + i.node.Label
}

// nodeDelegate renders orphaned nodes dimmed.
type nodeDelegate struct {
	list.DefaultDelegate
}

func newNodeDelegate() nodeDelegate {
	return nodeDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

// Render renders a list item, dimming nodes that are not part of any tree.
func (d nodeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ni, ok := item.(nodeItem)
	if !ok || !ni.orphan || index == m.Index() {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle := d.Styles.NormalTitle.Inherit(dim)
	descStyle := d.Styles.NormalDesc.Inherit(dim)
	fmt.Fprint(w, titleStyle.Render(ni.Title()))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(ni.Description()))
}

// New creates a new TUI model.
func New(cfg *config.Config, source Source, changes <-chan struct{}) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, newNodeDelegate(), 0, 0)
	l.Title = "notchbar"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "name, label or filter (type=row,display=1)"
	searchInput.CharLimit = 200

	return Model{
		cfg:         cfg,
		source:      source,
		changes:     changes,
		interval:    cfg.Watch.Interval.Duration(),
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetch,
		m.watchForChanges,
		m.tick(),
	)
}

type snapshotMsg struct {
	nodes    []model.Node
	displays []daemon.DisplayReport
	status   daemon.Status
	err      error
	at       time.Time
}

type changeMsg struct{}

type tickMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	what string
	err  error
}

// fetch reads the full daemon state.
func (m Model) fetch() tea.Msg {
	if m.source == nil {
		return snapshotMsg{err: fmt.Errorf("not connected to notchbard")}
	}
	nodes, err := m.source.Query("", nil)
	if err != nil {
		return snapshotMsg{err: err}
	}
	displays, err := m.source.Displays()
	if err != nil {
		return snapshotMsg{err: err}
	}
	status, err := m.source.Status()
	if err != nil {
		return snapshotMsg{err: err}
	}
	return snapshotMsg{nodes: nodes, displays: displays, status: status, at: time.Now()}
}

// watchForChanges waits for a daemon change signal.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return changeMsg{}
}

// tick schedules the next poll.
func (m Model) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.YPosition = 2
		m.refreshViewport()
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Refresh failed: " + msg.err.Error(), isErr: true}
			}
		}
		m.applySnapshot(msg)
		return m, nil

	case changeMsg:
		return m, tea.Batch(m.fetch, m.watchForChanges)

	case tickMsg:
		return m, tea.Batch(m.fetch, m.tick())

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: "Copy failed: " + msg.err.Error(), isErr: true}
			}
		}
		return m, func() tea.Msg {
			return statusMsg{text: "Copied " + msg.what + " to clipboard"}
		}
	}

	// Update child components
	switch m.mode {
	case ModeList:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	case ModeDetail, ModeDisplays:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	case ModeSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// applySnapshot replaces the displayed state.
func (m *Model) applySnapshot(msg snapshotMsg) {
	m.nodes = msg.nodes
	m.displays = msg.displays
	m.status = msg.status
	m.lastUpdate = msg.at
	m.list.SetItems(buildItems(m.nodes, m.searchQuery))

	if m.selected != nil {
		if n := core.LookupByName(m.nodes, m.selected.Name); n != nil {
			selected := *n
			m.selected = &selected
		}
	}
	m.refreshViewport()
}

// refreshViewport re-renders the viewport for the current mode.
func (m *Model) refreshViewport() {
	switch m.mode {
	case ModeDetail:
		if m.selected != nil {
			m.viewport.SetContent(m.renderDetail(*m.selected))
		}
	case ModeDisplays:
		m.viewport.SetContent(m.renderDisplays())
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The search input receives every key, including q and ?.
	if m.mode == ModeSearch {
		return m.handleSearchKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	// Mode-specific keys
	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeDisplays:
		return m.handleDisplaysKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		if item, ok := m.list.SelectedItem().(nodeItem); ok {
			selected := item.node
			m.selected = &selected
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(selected))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Displays):
		m.mode = ModeDisplays
		m.viewport.SetContent(m.renderDisplays())
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Back):
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.list.SetItems(buildItems(m.nodes, ""))
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch

	case key.Matches(msg, m.keys.Copy):
		if item, ok := m.list.SelectedItem().(nodeItem); ok {
			return m, m.copyYAML(item.node.Name, item.node)
		}
		return m, nil

	case key.Matches(msg, m.keys.CopyAllJSON):
		return m, m.copyJSON(m.visibleNodes())

	case key.Matches(msg, m.keys.CopyAllYAML):
		return m, m.copyYAML("all nodes", m.visibleNodes())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = ModeList
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		if m.selected != nil {
			return m, m.copyYAML(m.selected.Name, *m.selected)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleDisplaysKey handles keys in the displays view.
func (m Model) handleDisplaysKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Displays):
		m.mode = ModeList
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetch
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleSearchKey handles keys in search mode. The list is filtered as the
// query is typed.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.mode = ModeList
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchQuery = ""
		m.list.SetItems(buildItems(m.nodes, ""))
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.list.SetItems(buildItems(m.nodes, m.searchQuery))
	return m, cmd
}

// visibleNodes returns the nodes of the current list items.
func (m Model) visibleNodes() []model.Node {
	items := m.list.Items()
	nodes := make([]model.Node, 0, len(items))
	for _, it := range items {
		if ni, ok := it.(nodeItem); ok {
			nodes = append(nodes, ni.node)
		}
	}
	return nodes
}

func (m Model) copyYAML(what string, v any) tea.Cmd {
	return func() tea.Msg {
		text, err := nodesYAML(v)
		if err == nil {
			err = copyText(text)
		}
		return copyResultMsg{what: what, err: err}
	}
}

func (m Model) copyJSON(nodes []model.Node) tea.Cmd {
	return func() tea.Msg {
		text, err := nodesJSON(nodes)
		if err == nil {
			err = copyText(text)
		}
		return copyResultMsg{what: "all nodes", err: err}
	}
}

type nodeKey struct {
	display model.DisplayID
	name    string
}

// buildItems orders nodes as their display trees and keeps those matching
// query. A query that parses as a filter expression is applied as one,
// anything else is a plain text search.
func buildItems(nodes []model.Node, query string) []list.Item {
	visible := nodes
	if q := strings.TrimSpace(query); q != "" {
		if core.IsFilterExpression(q) {
			expr, _ := core.ParseFilter(q)
			visible = core.FilterWithExpr(nodes, expr)
		} else {
			visible = core.Search(nodes, q)
		}
	}
	keep := make(map[nodeKey]bool, len(visible))
	for _, n := range visible {
		keep[nodeKey{n.Display, n.Name}] = true
	}

	items := make([]list.Item, 0, len(visible))
	for _, d := range core.UniqueDisplays(nodes) {
		var onDisplay []model.Node
		for _, n := range nodes {
			if n.Display == d {
				onDisplay = append(onDisplay, n)
			}
		}

		forest := tree.Resolve(onDisplay)
		forest.Walk(func(i, depth int) bool {
			n := forest.Node(i)
			if keep[nodeKey{n.Display, n.Name}] {
				items = append(items, nodeItem{node: *n, depth: depth})
			}
			return true
		})
		for _, n := range forest.Orphans() {
			if keep[nodeKey{n.Display, n.Name}] {
				items = append(items, nodeItem{node: n, orphan: true})
			}
		}
	}
	return items
}

// renderDetail renders the detail view for a node.
func (m Model) renderDetail(n model.Node) string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(n.Name) + "\n\n")

	sb.WriteString(labelStyle.Render("Type: ") + string(n.Kind) + "\n")
	sb.WriteString(labelStyle.Render("Display: ") + n.Display.String() + "\n")
	if n.Parent != "" {
		sb.WriteString(labelStyle.Render("Parent: ") + n.Parent + "\n")
	}
	sb.WriteString(labelStyle.Render("Position: ") + fmt.Sprint(n.Position) + "\n")

	if children := core.Children(m.nodes, n.Name); len(children) > 0 {
		sb.WriteString("\n" + labelStyle.Render("Children:") + "\n")
		for _, c := range children {
			if c.Display == n.Display {
				sb.WriteString("  " + c.Name + "\n")
			}
		}
	}

	if text, err := nodesYAML(n); err == nil {
		sb.WriteString("\n" + labelStyle.Render("Properties:") + "\n")
		sb.WriteString(text)
	}

	return sb.String()
}

// renderDisplays renders the display table and daemon status.
func (m Model) renderDisplays() string {
	f := output.NewTreeFormatter(output.DefaultFormatterOptions())

	var buf bytes.Buffer
	_ = f.Displays(&buf, m.displays)
	buf.WriteString("\n")
	_ = f.Status(&buf, m.status)
	return buf.String()
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeList:
		return m.viewList()
	case ModeDetail:
		return m.viewDetail()
	case ModeSearch:
		return m.viewSearch()
	case ModeDisplays:
		return m.viewDisplays()
	case ModeHelp:
		return m.viewHelp()
	default:
		return ""
	}
}

func (m Model) viewList() string {
	s := m.list.View()
	return s + "\n" + m.footer("list")
}

func (m Model) viewDetail() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Node Detail")
	return header + "\n" + m.viewport.View() + "\n" + m.footer("detail")
}

func (m Model) viewDisplays() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	header := headerStyle.Render("Displays")
	return header + "\n" + m.viewport.View() + "\n" + m.footer("displays")
}

func (m Model) viewSearch() string {
	countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))
	searchBar := "Search: " + m.searchInput.View() + " " +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(countStr)

	return searchBar + "\n" + m.list.View() + "\n" + m.footer("search")
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	h := m.help
	h.ShowAll = true
	h.Width = m.width

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += h.View(m.keys) + "\n\n"
	s += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Search accepts plain text or filters such as type=row,display=1 or label~cpu.\nPress ? or esc to return")
	return s
}

// footer shows a pending status message, otherwise the keybind bar and
// the time of the last refresh.
func (m Model) footer(mode string) string {
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		return statusStyle.Render(m.statusMsg)
	}
	if !m.cfg.Watch.ShowHelp {
		return ""
	}

	updated := ""
	if !m.lastUpdate.IsZero() {
		updated = "updated " + humanize.Time(m.lastUpdate)
	}
	bar := buildKeybindBar(m.width-lipgloss.Width(updated)-2, mode)
	if updated == "" {
		return bar
	}
	return bar + "  " + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(updated)
}

// keybind is one entry of the status bar.
type keybind struct {
	key  string
	desc string
}

// keybindsFor returns the keybinds of a mode, most important first.
func keybindsFor(mode string) []keybind {
	switch mode {
	case "list":
		return []keybind{
			{"q", "quit"},
			{"enter", "view"},
			{"?", "help"},
			{"/", "search"},
			{"tab", "displays"},
			{"c", "copy"},
			{"C", "copy all"},
			{"r", "refresh"},
		}
	case "detail":
		return []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"c", "copy"},
			{"j/k", "scroll"},
		}
	case "displays":
		return []keybind{
			{"q", "quit"},
			{"esc", "back"},
			{"r", "refresh"},
			{"j/k", "scroll"},
		}
	case "search":
		return []keybind{
			{"enter", "apply"},
			{"esc", "clear"},
		}
	}
	return nil
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func buildKeybindBar(width int, mode string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	const separator = "  "
	result := ""
	for _, b := range keybindsFor(mode) {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(result) + lipgloss.Width(item)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config  *config.Config
	Source  Source
	Changes <-chan struct{} // Signalled when the daemon reports a change
}

// Run starts the TUI with the given options.
func Run(opts RunOptions) error {
	m := New(opts.Config, opts.Source, opts.Changes)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
