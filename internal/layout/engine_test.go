package layout

import (
	"testing"
	"unicode/utf8"

	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monoMeasurer gives every rune the same advance. Line height is 16.
type monoMeasurer struct {
	advance float64
}

func (m monoMeasurer) Measure(text string, _ FontSpec) float64 {
	return float64(utf8.RuneCountInString(text)) * m.advance
}

func (m monoMeasurer) LineHeight(FontSpec) float64 {
	return 16
}

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithImageMeasurer(ImageMeasurerFunc(func(string) (Size, bool) {
		return Size{Width: 20, Height: 10}, true
	}))}, opts...)
	return NewEngine(monoMeasurer{advance: 7}, opts...)
}

func newTestNode(name string, kind model.Kind, parent string, position int) model.Node {
	n := model.NewNode(name, 1)
	n.Kind = kind
	n.Parent = parent
	n.Position = position
	return n
}

func item(name, parent, label string, position int) model.Node {
	n := newTestNode(name, model.KindItem, parent, position)
	n.Label = label
	return n
}

func ptr(f float64) *float64 {
	return &f
}

func entryByName(t *testing.T, f *tree.Forest, name string) int {
	t.Helper()
	for i := range f.Entries {
		if f.Node(i).Name == name {
			return i
		}
	}
	t.Fatalf("entry %q not found", name)
	return -1
}

func TestMeasure_Item(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		node model.Node
		want Size
	}{
		{
			name: "label only",
			node: item("a", "", "hi", 0),
			want: Size{Width: 14, Height: 16},
		},
		{
			name: "icon and label with gap",
			node: func() model.Node {
				n := item("a", "", "hi", 0)
				n.Icon = "X"
				n.Style.Gap = 4
				return n
			}(),
			want: Size{Width: 7 + 4 + 14, Height: 16},
		},
		{
			name: "gap ignored for single part",
			node: func() model.Node {
				n := item("a", "", "", 0)
				n.Icon = "X"
				n.Style.Gap = 4
				return n
			}(),
			want: Size{Width: 7, Height: 16},
		},
		{
			name: "padding and margin",
			node: func() model.Node {
				n := item("a", "", "hi", 0)
				n.Style.Padding = model.Edges{Top: 1, Right: 2, Bottom: 3, Left: 4}
				n.Style.Margin = model.Edges{Left: 10, Right: 10, Top: 5}
				return n
			}(),
			want: Size{Width: 14 + 6 + 20, Height: 16 + 4 + 5},
		},
		{
			name: "explicit height taller than line",
			node: func() model.Node {
				n := item("a", "", "hi", 0)
				n.Style.Height = ptr(30)
				n.Style.Padding = model.Edges{Top: 2, Bottom: 2}
				return n
			}(),
			want: Size{Width: 14, Height: 34},
		},
		{
			name: "explicit width overrides border box",
			node: func() model.Node {
				n := item("a", "", "hi", 0)
				n.Style.Width = ptr(50)
				n.Style.Padding = model.Edges{Left: 8, Right: 8}
				return n
			}(),
			want: Size{Width: 50, Height: 16},
		},
		{
			name: "empty item is one line tall",
			node: item("a", "", "", 0),
			want: Size{Width: 0, Height: 16},
		},
		{
			name: "scaled image",
			node: func() model.Node {
				n := item("a", "", "", 0)
				n.Image = "/tmp/x.png"
				n.ImageScale = 2
				return n
			}(),
			want: Size{Width: 40, Height: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tree.Resolve([]model.Node{tt.node})
			assert.Equal(t, tt.want, e.Measure(f, f.Roots[0]))
		})
	}
}

func TestMeasure_Containers(t *testing.T) {
	e := newTestEngine()

	children := func(parent string) []model.Node {
		return []model.Node{
			item("c1", parent, "ab", 0),   // 14 x 16
			item("c2", parent, "abcd", 1), // 28 x 16
		}
	}

	tests := []struct {
		kind model.Kind
		want Size
	}{
		{model.KindRow, Size{Width: 14 + 5 + 28 + 2, Height: 16 + 2}},
		{model.KindColumn, Size{Width: 28 + 2, Height: 16 + 5 + 16 + 2}},
		{model.KindBox, Size{Width: 28 + 2, Height: 16 + 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			p := newTestNode("p", tt.kind, "", 0)
			p.Style.Gap = 5
			p.Style.Padding = model.Edges{Top: 1, Right: 1, Bottom: 1, Left: 1}
			f := tree.Resolve(append([]model.Node{p}, children("p")...))

			assert.Equal(t, tt.want, e.Measure(f, f.Roots[0]))
		})
	}
}

func TestMeasure_ExplicitContainerSize(t *testing.T) {
	e := newTestEngine()
	p := newTestNode("p", model.KindRow, "", 0)
	p.Style.Width = ptr(100)
	p.Style.Height = ptr(24)
	p.Style.Padding = model.Edges{Left: 10, Right: 10}
	p.Style.Margin = model.Edges{Left: 1, Right: 1, Top: 1, Bottom: 1}
	f := tree.Resolve([]model.Node{p, item("c", "p", "abc", 0)})

	assert.Equal(t, Size{Width: 102, Height: 26}, e.Measure(f, f.Roots[0]))
}

func TestMeasure_MonotonicInChildren(t *testing.T) {
	e := newTestEngine()
	nodes := []model.Node{newTestNode("r", model.KindRow, "", 0)}
	prev := e.Measure(tree.Resolve(nodes), 0)

	for i, label := range []string{"a", "bb", "", "cccc"} {
		nodes = append(nodes, item(string(rune('a'+i)), "r", label, i))
		f := tree.Resolve(nodes)
		s := e.Measure(f, f.Roots[0])
		assert.GreaterOrEqual(t, s.Width, prev.Width)
		assert.GreaterOrEqual(t, s.Height, prev.Height)
		prev = s
	}
}

func TestLayoutWindow_RowWithChild(t *testing.T) {
	e := newTestEngine()
	f := tree.Resolve([]model.Node{
		newTestNode("a", model.KindRow, "", 0),
		item("a.b", "a", "hi", 0),
	})

	l := e.LayoutWindow(f, f.Roots)

	assert.Equal(t, Size{Width: 14, Height: 16}, l.Size)
	require.Len(t, l.Frames, 2)
	assert.Equal(t, "a", l.Frames[0].Name)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 14, Height: 16}, l.Frames[0].Rect)
	assert.Equal(t, "a.b", l.Frames[1].Name)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 14, Height: 16}, l.Frames[1].Rect)
	require.NotNil(t, l.Frames[1].Content)
	assert.Equal(t, "hi", l.Frames[1].Content.Label)
	assert.Equal(t, 1, l.Frames[1].Depth)
}

func TestLayoutWindow_RootsSideBySideAndCentered(t *testing.T) {
	e := newTestEngine(WithWindowGap(3))
	tall := item("tall", "", "x", 0)
	tall.Style.Height = ptr(30)
	f := tree.Resolve([]model.Node{tall, item("short", "", "yy", 1)})

	l := e.LayoutWindow(f, f.Roots)

	assert.Equal(t, Size{Width: 7 + 3 + 14, Height: 30}, l.Size)
	short, ok := l.Frame("short")
	require.True(t, ok)
	assert.Equal(t, Rect{X: 10, Y: 7, Width: 14, Height: 16}, short.Rect)
}

func TestArrange_RowJustifyAndAlign(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		justify model.Alignment
		align   model.Alignment
		wantX   float64
		wantY   float64
	}{
		{model.AlignStart, model.AlignStart, 0, 40 - 16},
		{model.AlignCenter, model.AlignCenter, (100 - 14) / 2, (40 - 16) / 2},
		{model.AlignEnd, model.AlignEnd, 100 - 14, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.justify), func(t *testing.T) {
			r := newTestNode("r", model.KindRow, "", 0)
			r.Style.Width = ptr(100)
			r.Style.Height = ptr(40)
			r.Style.JustifyContent = tt.justify
			r.Style.AlignItems = tt.align
			f := tree.Resolve([]model.Node{r, item("c", "r", "hi", 0)})

			size, frames := e.Arrange(f, f.Roots[0], Point{}, 0)
			assert.Equal(t, Size{Width: 100, Height: 40}, size)
			require.Len(t, frames, 2)
			assert.Equal(t, tt.wantX, frames[1].Rect.X)
			assert.Equal(t, tt.wantY, frames[1].Rect.Y)
		})
	}
}

func TestArrange_ColumnJustifyAndAlign(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		justify model.Alignment
		align   model.Alignment
		wantX   float64
		wantAY  float64
		wantBY  float64
	}{
		{model.AlignStart, model.AlignStart, 0, 84, 64},
		{model.AlignCenter, model.AlignCenter, (60 - 14) / 2, 52, 32},
		{model.AlignEnd, model.AlignEnd, 60 - 14, 20, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.justify), func(t *testing.T) {
			c := newTestNode("col", model.KindColumn, "", 0)
			c.Style.Width = ptr(60)
			c.Style.Height = ptr(100)
			c.Style.Gap = 4
			c.Style.JustifyContent = tt.justify
			c.Style.AlignItems = tt.align
			f := tree.Resolve([]model.Node{c, item("a", "col", "hi", 0), item("b", "col", "ok", 1)})

			size, frames := e.Arrange(f, f.Roots[0], Point{}, 0)
			assert.Equal(t, Size{Width: 60, Height: 100}, size)
			require.Len(t, frames, 3)
			assert.Equal(t, "a", frames[1].Name)
			assert.Equal(t, Rect{X: tt.wantX, Y: tt.wantAY, Width: 14, Height: 16}, frames[1].Rect)
			assert.Equal(t, Rect{X: tt.wantX, Y: tt.wantBY, Width: 14, Height: 16}, frames[2].Rect)
		})
	}
}

func TestArrange_ColumnWalksTopDown(t *testing.T) {
	e := newTestEngine()
	c := newTestNode("col", model.KindColumn, "", 0)
	c.Style.Gap = 2
	c.Style.Padding = model.Edges{Top: 3, Left: 1}
	c.Style.AlignItems = model.AlignEnd
	f := tree.Resolve([]model.Node{
		c,
		item("first", "col", "abcd", 0),
		item("second", "col", "ab", 1),
	})

	size, frames := e.Arrange(f, f.Roots[0], Point{X: 10, Y: 5}, 0)
	assert.Equal(t, Size{Width: 29, Height: 37}, size)

	first := frames[1]
	second := frames[2]
	assert.Equal(t, "first", first.Name)
	// Content box spans y 5..39; first sits at the top.
	assert.Equal(t, Rect{X: 11, Y: 39 - 16, Width: 28, Height: 16}, first.Rect)
	assert.Equal(t, Rect{X: 11 + 14, Y: 39 - 16 - 2 - 16, Width: 14, Height: 16}, second.Rect)
	assert.Greater(t, first.Rect.Y, second.Rect.Y)
}

func TestArrange_BoxStacksAtTopLeft(t *testing.T) {
	e := newTestEngine()
	b := newTestNode("box", model.KindBox, "", 0)
	f := tree.Resolve([]model.Node{
		b,
		item("under", "box", "abcd", 0),
		item("over", "box", "a", 1),
	})

	_, frames := e.Arrange(f, f.Roots[0], Point{}, 0)
	require.Len(t, frames, 3)
	assert.Equal(t, "under", frames[1].Name)
	assert.Equal(t, "over", frames[2].Name)
	assert.Equal(t, frames[1].Rect.X, frames[2].Rect.X)
	assert.Equal(t, frames[1].Rect.Top(), frames[2].Rect.Top())
}

func TestArrange_ItemContentParts(t *testing.T) {
	e := newTestEngine()
	n := item("i", "", "hi", 0)
	n.Icon = "X"
	n.Image = "/img.png"
	n.Style.Gap = 2
	n.Style.Padding = model.Edges{Left: 5}
	f := tree.Resolve([]model.Node{n})

	_, frames := e.Arrange(f, f.Roots[0], Point{}, 0)
	c := frames[0].Content
	require.NotNil(t, c)
	assert.Equal(t, Rect{X: 5, Y: 3, Width: 20, Height: 10}, c.ImageRect)
	assert.Equal(t, Rect{X: 27, Y: 0, Width: 7, Height: 16}, c.IconRect)
	assert.Equal(t, Rect{X: 36, Y: 0, Width: 14, Height: 16}, c.LabelRect)
	assert.Equal(t, DefaultFontSize, c.Font.Size)
	assert.Equal(t, model.WeightMedium, c.Font.Weight)
}

func TestArrange_ImageTilesAcrossExplicitWidth(t *testing.T) {
	e := newTestEngine()
	n := item("i", "", "", 0)
	n.Image = "/img.png"
	n.Style.Width = ptr(80)
	f := tree.Resolve([]model.Node{n})

	_, frames := e.Arrange(f, f.Roots[0], Point{}, 0)
	assert.Equal(t, 80.0, frames[0].Content.TileWidth)
}

func TestArrange_Deterministic(t *testing.T) {
	e := newTestEngine()
	nodes := []model.Node{
		newTestNode("r", model.KindRow, "", 0),
		newTestNode("col", model.KindColumn, "r", 0),
		item("x", "col", "abc", 0),
		item("y", "col", "de", 1),
		item("z", "r", "fghij", 1),
	}

	first := e.LayoutWindow(tree.Resolve(nodes), tree.Resolve(nodes).Roots)
	second := e.LayoutWindow(tree.Resolve(nodes), tree.Resolve(nodes).Roots)
	assert.Equal(t, first, second)
}

func TestHitTest_TopmostWins(t *testing.T) {
	e := newTestEngine()
	under := item("under", "box", "abcd", 0)
	under.OnClick = "under"
	over := item("over", "box", "a", 1)
	f := tree.Resolve([]model.Node{newTestNode("box", model.KindBox, "", 0), under, over})
	l := e.LayoutWindow(f, f.Roots)

	hit, ok := l.HitTest(Point{X: 1, Y: 8})
	require.True(t, ok)
	assert.Equal(t, "over", hit.Name)

	hit, ok = l.HitTest(Point{X: 20, Y: 8})
	require.True(t, ok)
	assert.Equal(t, "under", hit.Name)

	hit, ok = l.HitTestFunc(Point{X: 1, Y: 8}, func(f *Frame) bool { return f.OnClick != "" })
	require.True(t, ok)
	assert.Equal(t, "under", hit.Name)

	_, ok = l.HitTest(Point{X: 100, Y: 8})
	assert.False(t, ok)
}

func TestResolveFont(t *testing.T) {
	n := model.NewNode("a", 1)
	f := ResolveFont(&n, FontSpec{})
	assert.Equal(t, FontSpec{Family: DefaultFontFamily, Size: 13, Weight: model.WeightMedium}, f)

	n.FontSize = 18
	n.FontWeight = "bold"
	n.FontFamily = "Go Mono"
	f = ResolveFont(&n, FontSpec{Family: "sans", Size: 12, Weight: model.WeightRegular})
	assert.Equal(t, FontSpec{Family: "Go Mono", Size: 18, Weight: model.WeightBold}, f)
}

func TestEntryByName(t *testing.T) {
	f := tree.Resolve([]model.Node{newTestNode("r", model.KindRow, "", 0), item("c", "r", "x", 0)})
	e := newTestEngine()
	c := entryByName(t, f, "c")
	assert.Equal(t, Size{Width: 7, Height: 16}, e.Measure(f, c))
}
