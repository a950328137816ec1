// Package layout implements the box-model layout engine: it measures a
// resolved forest bottom-up and arranges it top-down into positioned frames.
//
// Coordinates use a y-up convention with the origin at the bottom-left of
// the window. Layout never fails; unknown or missing values fall back to
// defaults.
package layout

import (
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/tree"
)

// Decoration is the box drawing request for a frame.
type Decoration struct {
	CornerRadius    float64
	BorderWidth     float64
	BorderColor     string
	Background      string
	HoverBackground string
	ShadowColor     string
	ShadowRadius    float64
}

// Content is the content drawing request for an item frame.
type Content struct {
	Font FontSpec

	Icon      string
	IconColor string
	IconRect  Rect

	Label      string
	LabelColor string
	LabelRect  Rect

	Image      string
	ImageScale float64
	ImageRect  Rect
	// TileWidth is the width the image is repeated across, or zero.
	TileWidth float64
}

// Frame is a positioned node.
type Frame struct {
	Name        string
	Kind        model.Kind
	Depth       int
	Rect        Rect
	ContentRect Rect
	Decoration  Decoration
	Content     *Content
	OnClick     string
}

// Layout is the arranged content of one window. Frames are in draw order:
// parents before children, siblings in ascending position.
type Layout struct {
	Size   Size
	Frames []Frame
}

// Frame returns the frame of the named node.
func (l *Layout) Frame(name string) (Frame, bool) {
	for _, f := range l.Frames {
		if f.Name == name {
			return f, true
		}
	}
	return Frame{}, false
}

// HitTest returns the top-most frame containing p.
func (l *Layout) HitTest(p Point) (Frame, bool) {
	return l.HitTestFunc(p, nil)
}

// HitTestFunc returns the top-most frame containing p for which match
// returns true. A nil match accepts every frame.
func (l *Layout) HitTestFunc(p Point, match func(f *Frame) bool) (Frame, bool) {
	for i := len(l.Frames) - 1; i >= 0; i-- {
		f := &l.Frames[i]
		if f.Rect.Contains(p) && (match == nil || match(f)) {
			return *f, true
		}
	}
	return Frame{}, false
}

// Engine lays out resolved forests.
type Engine struct {
	text   TextMeasurer
	images ImageMeasurer
	font   FontSpec
	gap    float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithImageMeasurer sets the image size source.
func WithImageMeasurer(m ImageMeasurer) Option {
	return func(e *Engine) { e.images = m }
}

// WithDefaultFont sets the font used when nodes leave font properties unset.
func WithDefaultFont(f FontSpec) Option {
	return func(e *Engine) { e.font = f }
}

// WithWindowGap sets the spacing between top-level nodes of a window.
func WithWindowGap(gap float64) Option {
	return func(e *Engine) { e.gap = gap }
}

// NewEngine creates a layout engine measuring text with text.
func NewEngine(text TextMeasurer, opts ...Option) *Engine {
	e := &Engine{
		text:   text,
		images: ImageMeasurerFunc(ImageFileSize),
		font: FontSpec{
			Family: DefaultFontFamily,
			Size:   DefaultFontSize,
			Weight: DefaultFontWeight,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Measure returns the outer size (margins included) of entry i.
func (e *Engine) Measure(f *tree.Forest, i int) Size {
	return e.newPass(f).measure(i)
}

// Arrange positions entry i inside a slot starting at origin. The entry is
// centered vertically when availableHeight exceeds its height. It returns
// the entry's outer size and the frames of the entry and its descendants.
func (e *Engine) Arrange(f *tree.Forest, i int, origin Point, availableHeight float64) (Size, []Frame) {
	p := e.newPass(f)
	size := p.place(i, origin, availableHeight)
	return size, p.frames
}

// LayoutWindow lays out the given top-level entries left to right as the
// content of one window. The window is as tall as its tallest entry.
func (e *Engine) LayoutWindow(f *tree.Forest, roots []int) *Layout {
	p := e.newPass(f)

	var size Size
	for k, r := range roots {
		s := p.measure(r)
		if k > 0 {
			size.Width += e.gap
		}
		size.Width += s.Width
		size.Height = max(size.Height, s.Height)
	}

	x := 0.0
	for _, r := range roots {
		s := p.place(r, Point{X: x}, size.Height)
		x += s.Width + e.gap
	}
	return &Layout{Size: size, Frames: p.frames}
}

// pass caches measurements for one forest.
type pass struct {
	e        *Engine
	f        *tree.Forest
	sizes    []Size
	measured []bool
	frames   []Frame
}

func (e *Engine) newPass(f *tree.Forest) *pass {
	return &pass{
		e:        e,
		f:        f,
		sizes:    make([]Size, f.Len()),
		measured: make([]bool, f.Len()),
	}
}

func (p *pass) place(i int, origin Point, availableHeight float64) Size {
	s := p.measure(i)
	y := origin.Y
	if availableHeight > s.Height {
		y += (availableHeight - s.Height) / 2
	}
	p.arrange(i, Rect{X: origin.X, Y: y, Width: s.Width, Height: s.Height}, 0)
	return s
}

// measure returns the outer size of entry i.
func (p *pass) measure(i int) Size {
	if p.measured[i] {
		return p.sizes[i]
	}
	n := p.f.Node(i)
	entry := p.f.Entries[i]

	var border Size
	if entry.Kind == model.KindItem {
		border = p.measureItem(n)
	} else {
		border = p.measureContainer(entry, n)
	}

	outer := border.Outset(n.Style.Margin)
	outer.Width = max(outer.Width, 0)
	outer.Height = max(outer.Height, 0)

	p.sizes[i] = outer
	p.measured[i] = true
	return outer
}

func (p *pass) measureContainer(entry tree.Entry, n *model.Node) Size {
	var inner Size
	gap := n.Style.Gap
	for k, c := range entry.Children {
		s := p.measure(c)
		switch entry.Kind {
		case model.KindRow:
			if k > 0 {
				inner.Width += gap
			}
			inner.Width += s.Width
			inner.Height = max(inner.Height, s.Height)
		case model.KindColumn:
			if k > 0 {
				inner.Height += gap
			}
			inner.Height += s.Height
			inner.Width = max(inner.Width, s.Width)
		default:
			inner.Width = max(inner.Width, s.Width)
			inner.Height = max(inner.Height, s.Height)
		}
	}

	border := inner.Outset(n.Style.Padding)
	if n.Style.Width != nil {
		border.Width = *n.Style.Width
	}
	if n.Style.Height != nil {
		border.Height = *n.Style.Height
	}
	return border
}

// itemPart is one horizontally laid out piece of item content.
type itemPart struct {
	width, height float64
}

func (p *pass) itemParts(n *model.Node, font FontSpec) (image, icon, label *itemPart, lineHeight float64) {
	lineHeight = p.e.text.LineHeight(font)
	if n.Image != "" {
		s := p.imageSize(n)
		image = &itemPart{width: s.Width, height: s.Height}
	}
	if n.Icon != "" {
		icon = &itemPart{width: p.e.text.Measure(n.Icon, font), height: lineHeight}
	}
	if n.Label != "" {
		label = &itemPart{width: p.e.text.Measure(n.Label, font), height: lineHeight}
	}
	return image, icon, label, lineHeight
}

func (p *pass) measureItem(n *model.Node) Size {
	font := ResolveFont(n, p.e.font)
	image, icon, label, lineHeight := p.itemParts(n, font)

	var width float64
	height := lineHeight
	count := 0
	for _, part := range []*itemPart{image, icon, label} {
		if part == nil {
			continue
		}
		if count > 0 {
			width += n.Style.Gap
		}
		width += part.width
		height = max(height, part.height)
		count++
	}
	if n.Style.Height != nil {
		height = max(height, *n.Style.Height)
	}

	border := Size{Width: width, Height: height}.Outset(n.Style.Padding)
	if n.Style.Width != nil {
		border.Width = *n.Style.Width
	}
	return border
}

func (p *pass) imageSize(n *model.Node) Size {
	if p.e.images == nil {
		return Size{}
	}
	s, ok := p.e.images.ImageSize(n.Image)
	if !ok {
		return Size{}
	}
	scale := n.ImageScale
	if scale <= 0 {
		scale = 1
	}
	return Size{Width: s.Width * scale, Height: s.Height * scale}
}

// arrange emits the frame of entry i occupying slot (its outer box) and
// positions its children.
func (p *pass) arrange(i int, slot Rect, depth int) {
	n := p.f.Node(i)
	entry := p.f.Entries[i]

	border := slot.Inset(n.Style.Margin)
	content := border.Inset(n.Style.Padding)

	fi := len(p.frames)
	p.frames = append(p.frames, Frame{
		Name:        n.Name,
		Kind:        entry.Kind,
		Depth:       depth,
		Rect:        border,
		ContentRect: content,
		OnClick:     n.OnClick,
		Decoration: Decoration{
			CornerRadius:    n.Style.CornerRadius,
			BorderWidth:     n.Style.BorderWidth,
			BorderColor:     n.Style.BorderColor,
			Background:      n.Style.Background,
			HoverBackground: n.Style.HoverBackground,
			ShadowColor:     n.Style.ShadowColor,
			ShadowRadius:    n.Style.ShadowRadius,
		},
	})

	switch entry.Kind {
	case model.KindItem:
		p.frames[fi].Content = p.placeContent(n, content)
	case model.KindRow:
		p.arrangeRow(entry, n, content, depth)
	case model.KindColumn:
		p.arrangeColumn(entry, n, content, depth)
	case model.KindBox:
		// Children share the top-left corner and stack in position order.
		for _, c := range entry.Children {
			s := p.measure(c)
			p.arrange(c, Rect{X: content.X, Y: content.Top() - s.Height, Width: s.Width, Height: s.Height}, depth+1)
		}
	}
}

func (p *pass) arrangeRow(entry tree.Entry, n *model.Node, content Rect, depth int) {
	gap := n.Style.Gap
	packed := 0.0
	for k, c := range entry.Children {
		if k > 0 {
			packed += gap
		}
		packed += p.measure(c).Width
	}

	x := content.X + alignOffset(n.Style.JustifyContent, content.Width-packed)
	for _, c := range entry.Children {
		s := p.measure(c)
		// The cross axis start is the top edge.
		var y float64
		switch n.Style.AlignItems {
		case model.AlignCenter:
			y = content.Y + (content.Height-s.Height)/2
		case model.AlignEnd:
			y = content.Y
		default:
			y = content.Top() - s.Height
		}
		p.arrange(c, Rect{X: x, Y: y, Width: s.Width, Height: s.Height}, depth+1)
		x += s.Width + gap
	}
}

func (p *pass) arrangeColumn(entry tree.Entry, n *model.Node, content Rect, depth int) {
	gap := n.Style.Gap
	packed := 0.0
	for k, c := range entry.Children {
		if k > 0 {
			packed += gap
		}
		packed += p.measure(c).Height
	}

	// Walk downward from the top edge.
	top := content.Top() - alignOffset(n.Style.JustifyContent, content.Height-packed)
	for _, c := range entry.Children {
		s := p.measure(c)
		top -= s.Height
		x := content.X + alignOffset(n.Style.AlignItems, content.Width-s.Width)
		p.arrange(c, Rect{X: x, Y: top, Width: s.Width, Height: s.Height}, depth+1)
		top -= gap
	}
}

func (p *pass) placeContent(n *model.Node, content Rect) *Content {
	font := ResolveFont(n, p.e.font)
	image, icon, label, _ := p.itemParts(n, font)

	c := &Content{
		Font:       font,
		Icon:       n.Icon,
		IconColor:  n.IconColor,
		Label:      n.Label,
		LabelColor: n.LabelColor,
		Image:      n.Image,
		ImageScale: n.ImageScale,
	}

	packed := 0.0
	count := 0
	for _, part := range []*itemPart{image, icon, label} {
		if part == nil {
			continue
		}
		if count > 0 {
			packed += n.Style.Gap
		}
		packed += part.width
		count++
	}

	x := content.X + alignOffset(n.Style.JustifyContent, content.Width-packed)
	place := func(part *itemPart) Rect {
		r := Rect{X: x, Y: content.Y + (content.Height-part.height)/2, Width: part.width, Height: part.height}
		x += part.width + n.Style.Gap
		return r
	}
	if image != nil {
		c.ImageRect = place(image)
		if n.Style.Width != nil && count == 1 {
			c.TileWidth = content.Width
		}
	}
	if icon != nil {
		c.IconRect = place(icon)
	}
	if label != nil {
		c.LabelRect = place(label)
	}
	return c
}

// alignOffset returns the leading offset that positions content within free
// space on one axis. Overflowing content is aligned to the start.
func alignOffset(a model.Alignment, free float64) float64 {
	if free <= 0 {
		return 0
	}
	switch a {
	case model.AlignCenter:
		return free / 2
	case model.AlignEnd:
		return free
	default:
		return 0
	}
}
