package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/model"
)

type fakeSource struct {
	nodes []model.Node
	err   error
}

func (f *fakeSource) Query(string, *model.DisplayID) ([]model.Node, error) {
	return f.nodes, f.err
}

func (f *fakeSource) Displays() ([]daemon.DisplayReport, error) {
	return []daemon.DisplayReport{{ID: 1, Name: "eDP-1", Main: true, Attached: true, Width: 1512, Height: 982}}, nil
}

func (f *fakeSource) Status() (daemon.Status, error) {
	return daemon.Status{Version: "1.0.0", Nodes: len(f.nodes)}, nil
}

func testNodes() []model.Node {
	status := model.NewNode("status", 1)
	status.Kind = model.KindRow

	clock := model.NewNode("clock", 1)
	clock.Parent = "status"
	clock.Label = "12:00"
	clock.Position = 2

	battery := model.NewNode("battery", 1)
	battery.Parent = "status"
	battery.Label = "80%"
	battery.Position = 1

	ghost := model.NewNode("ghost", 1)
	ghost.Parent = "missing"

	ext := model.NewNode("ext", 2)

	return []model.Node{clock, ext, ghost, status, battery}
}

func itemNames(t *testing.T, m Model) []string {
	t.Helper()
	var out []string
	for _, it := range m.list.Items() {
		ni, ok := it.(nodeItem)
		require.True(t, ok)
		out = append(out, ni.node.Name)
	}
	return out
}

func ready(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := New(nil, src, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)
	updated, _ = m.Update(m.fetch())
	return updated.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestBuildItemsTreeOrder(t *testing.T) {
	items := buildItems(testNodes(), "")
	require.Len(t, items, 5)

	var got []string
	for _, it := range items {
		ni := it.(nodeItem)
		got = append(got, ni.Title())
	}
	assert.Equal(t, []string{"status", "  battery", "  clock", "ghost", "ext"}, got)

	ghost := items[3].(nodeItem)
	assert.True(t, ghost.orphan)
	assert.Contains(t, ghost.Description(), "orphan of missing")
}

func TestBuildItemsQuery(t *testing.T) {
	tests := []struct {
		query    string
		expected []string
	}{
		{"", []string{"status", "battery", "clock", "ghost", "ext"}},
		{"bat", []string{"battery"}},
		{"12:00", []string{"clock"}},
		{"parent=status", []string{"battery", "clock"}},
		{"display=2", []string{"ext"}},
		{"root=true", []string{"status", "ext"}},
		{"nothing-matches", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, it := range buildItems(testNodes(), tt.query) {
				got = append(got, it.(nodeItem).node.Name)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestModelSnapshot(t *testing.T) {
	m := ready(t, &fakeSource{nodes: testNodes()})

	assert.Equal(t, []string{"status", "battery", "clock", "ghost", "ext"}, itemNames(t, m))
	assert.Equal(t, "1.0.0", m.status.Version)
	assert.False(t, m.lastUpdate.IsZero())
	assert.Contains(t, m.View(), "status")
}

func TestModelSnapshotError(t *testing.T) {
	m := ready(t, &fakeSource{nodes: testNodes()})

	updated, cmd := m.Update(snapshotMsg{err: errors.New("daemon gone")})
	m = updated.(Model)
	require.NotNil(t, cmd)

	// Keeps the previous state and reports the error.
	assert.Len(t, m.list.Items(), 5)
	msg := cmd()
	status, ok := msg.(statusMsg)
	require.True(t, ok)
	assert.True(t, status.isErr)
	assert.Contains(t, status.text, "daemon gone")
}

func TestModelDetail(t *testing.T) {
	m := ready(t, &fakeSource{nodes: testNodes()})

	m = press(m, "enter")
	assert.Equal(t, ModeDetail, m.mode)
	require.NotNil(t, m.selected)
	assert.Equal(t, "status", m.selected.Name)

	detail := m.renderDetail(*m.selected)
	assert.Contains(t, detail, "Children:")
	assert.Less(t, strings.Index(detail, "battery"), strings.Index(detail, "clock"))
	assert.Contains(t, detail, "type: row")

	m = press(m, "esc")
	assert.Equal(t, ModeList, m.mode)
	assert.Nil(t, m.selected)
}

func TestModelDisplays(t *testing.T) {
	m := ready(t, &fakeSource{nodes: testNodes()})

	m = press(m, "tab")
	assert.Equal(t, ModeDisplays, m.mode)
	out := m.renderDisplays()
	assert.Contains(t, out, "eDP-1")
	assert.Contains(t, out, "1.0.0")

	m = press(m, "tab")
	assert.Equal(t, ModeList, m.mode)
}

func TestModelSearch(t *testing.T) {
	m := ready(t, &fakeSource{nodes: testNodes()})

	m = press(m, "/")
	assert.Equal(t, ModeSearch, m.mode)

	m = press(m, "t", "y", "p", "e", "=", "r", "o", "w")
	assert.Equal(t, ModeSearch, m.mode)
	assert.Equal(t, "type=row", m.searchQuery)
	assert.Equal(t, []string{"status"}, itemNames(t, m))

	m = press(m, "enter")
	assert.Equal(t, ModeList, m.mode)
	assert.Equal(t, []string{"status"}, itemNames(t, m))

	// esc in list mode clears an applied query.
	m = press(m, "esc")
	assert.Len(t, m.list.Items(), 5)

	// q is typed into the query rather than quitting.
	m = press(m, "/", "q")
	assert.Equal(t, ModeSearch, m.mode)
	assert.Equal(t, "q", m.searchQuery)
	m = press(m, "esc")
	assert.Equal(t, ModeList, m.mode)
	assert.Empty(t, m.searchQuery)
}

func TestModelHelpAndQuit(t *testing.T) {
	m := ready(t, &fakeSource{nodes: testNodes()})

	m = press(m, "?")
	assert.Equal(t, ModeHelp, m.mode)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m = press(m, "?")
	assert.Equal(t, ModeList, m.mode)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelChangeTriggersFetch(t *testing.T) {
	changes := make(chan struct{}, 1)
	m := New(nil, &fakeSource{}, changes)

	changes <- struct{}{}
	assert.Equal(t, changeMsg{}, m.watchForChanges())

	close(changes)
	assert.Nil(t, m.watchForChanges())

	assert.Nil(t, New(nil, nil, nil).watchForChanges())
	msg := New(nil, nil, nil).fetch()
	assert.Error(t, msg.(snapshotMsg).err)
}

func TestBuildKeybindBar(t *testing.T) {
	full := buildKeybindBar(0, "list")
	assert.Contains(t, full, "refresh")

	narrow := buildKeybindBar(20, "list")
	assert.LessOrEqual(t, lipgloss.Width(narrow), 20)
	assert.Contains(t, narrow, "quit")
	assert.NotContains(t, narrow, "refresh")

	assert.Empty(t, buildKeybindBar(80, "unknown"))
}
