package display

import (
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gdkpixbuf/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"
	"github.com/diamondburned/gotk4/pkg/pangocairo"

	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
)

// defaultTextColor is used for labels and icons without a color.
var defaultTextColor = model.RGBA{R: 1, G: 1, B: 1, A: 1}

// maxShadowSteps caps the number of rings drawn for a shadow.
const maxShadowSteps = 8

// screenRect converts a y-up layout rect into y-down widget coordinates for
// a layout of the given height.
func screenRect(r layout.Rect, height float64) layout.Rect {
	return layout.Rect{X: r.X, Y: height - r.Top(), Width: r.Width, Height: r.Height}
}

// parseColor parses c, reporting false for empty or invalid colors.
func parseColor(c string) (model.RGBA, bool) {
	if c == "" {
		return model.RGBA{}, false
	}
	rgba, err := model.ParseColor(c)
	if err != nil {
		return model.RGBA{}, false
	}
	return rgba, true
}

// shadowRings returns the outset and alpha of each ring of a shadow with the
// given radius and base alpha, outermost first.
func shadowRings(radius, alpha float64) (outsets, alphas []float64) {
	if radius <= 0 || alpha <= 0 {
		return nil, nil
	}
	steps := min(int(math.Ceil(radius)), maxShadowSteps)
	for i := steps; i >= 1; i-- {
		outsets = append(outsets, radius*float64(i)/float64(steps))
		alphas = append(alphas, alpha/float64(steps+1))
	}
	return outsets, alphas
}

// fontDescription builds a pango font description for f.
func fontDescription(f layout.FontSpec) *pango.FontDescription {
	desc := pango.NewFontDescription()
	desc.SetFamily(f.Family)
	desc.SetAbsoluteSize(f.Size * float64(pango.SCALE))
	desc.SetWeight(pango.Weight(f.Weight))
	return desc
}

// renderer draws layouts with cairo. It is only used on the main loop.
type renderer struct {
	images *imageCache
}

// draw paints l into a widget of the given height. hovered names the frame
// whose hover background is shown.
func (r *renderer) draw(area *gtk.DrawingArea, cr *cairo.Context, l *layout.Layout, hovered string) {
	if l == nil {
		return
	}
	height := l.Size.Height
	for i := range l.Frames {
		f := &l.Frames[i]
		rect := screenRect(f.Rect, height)
		r.drawDecoration(cr, rect, f.Decoration, f.Name == hovered)
		if f.Content != nil {
			r.drawContent(area, cr, f, height)
		}
	}
}

func (r *renderer) drawDecoration(cr *cairo.Context, rect layout.Rect, d layout.Decoration, hovered bool) {
	if shadow, ok := parseColor(d.ShadowColor); ok {
		outsets, alphas := shadowRings(d.ShadowRadius, shadow.A)
		for i, o := range outsets {
			roundedRect(cr, layout.Rect{
				X:      rect.X - o,
				Y:      rect.Y - o,
				Width:  rect.Width + 2*o,
				Height: rect.Height + 2*o,
			}, d.CornerRadius+o)
			cr.SetSourceRGBA(shadow.R, shadow.G, shadow.B, alphas[i])
			cr.Fill()
		}
	}

	background := d.Background
	if hovered && d.HoverBackground != "" {
		background = d.HoverBackground
	}
	if bg, ok := parseColor(background); ok {
		roundedRect(cr, rect, d.CornerRadius)
		cr.SetSourceRGBA(bg.R, bg.G, bg.B, bg.A)
		cr.Fill()
	}

	if border, ok := parseColor(d.BorderColor); ok && d.BorderWidth > 0 {
		half := d.BorderWidth / 2
		roundedRect(cr, layout.Rect{
			X:      rect.X + half,
			Y:      rect.Y + half,
			Width:  rect.Width - d.BorderWidth,
			Height: rect.Height - d.BorderWidth,
		}, max(d.CornerRadius-half, 0))
		cr.SetSourceRGBA(border.R, border.G, border.B, border.A)
		cr.SetLineWidth(d.BorderWidth)
		cr.Stroke()
	}
}

func (r *renderer) drawContent(area *gtk.DrawingArea, cr *cairo.Context, f *layout.Frame, height float64) {
	c := f.Content
	if c.Image != "" {
		r.drawImage(cr, c, screenRect(f.ContentRect, height), screenRect(c.ImageRect, height))
	}
	if c.Icon != "" {
		drawText(area, cr, c.Icon, c.Font, c.IconColor, screenRect(c.IconRect, height))
	}
	if c.Label != "" {
		drawText(area, cr, c.Label, c.Font, c.LabelColor, screenRect(c.LabelRect, height))
	}
}

func (r *renderer) drawImage(cr *cairo.Context, c *layout.Content, content, rect layout.Rect) {
	pixbuf := r.images.get(c.Image)
	if pixbuf == nil || pixbuf.Width() == 0 || pixbuf.Height() == 0 {
		return
	}
	sx := rect.Width / float64(pixbuf.Width())
	sy := rect.Height / float64(pixbuf.Height())

	cr.Save()
	defer cr.Restore()

	x, end := rect.X, rect.Right()
	if c.TileWidth > 0 && rect.Width > 0 {
		x, end = content.X, content.X+c.TileWidth
		cr.Rectangle(content.X, rect.Y, c.TileWidth, rect.Height)
		cr.Clip()
	}
	for ; x < end; x += rect.Width {
		cr.Save()
		cr.Translate(x, rect.Y)
		cr.Scale(sx, sy)
		gdk.CairoSetSourcePixbuf(cr, pixbuf, 0, 0)
		cr.Rectangle(0, 0, float64(pixbuf.Width()), float64(pixbuf.Height()))
		cr.Fill()
		cr.Restore()
		if rect.Width <= 0 {
			break
		}
	}
}

func drawText(area *gtk.DrawingArea, cr *cairo.Context, text string, font layout.FontSpec, color string, rect layout.Rect) {
	rgba, ok := parseColor(color)
	if !ok {
		rgba = defaultTextColor
	}
	l := area.CreatePangoLayout(text)
	l.SetFontDescription(fontDescription(font))
	_, h := l.Size()

	cr.Save()
	defer cr.Restore()
	cr.SetSourceRGBA(rgba.R, rgba.G, rgba.B, rgba.A)
	cr.MoveTo(rect.X, rect.Y+(rect.Height-float64(h)/float64(pango.SCALE))/2)
	pangocairo.ShowLayout(cr, l)
}

// roundedRect adds a rounded rectangle path to cr.
func roundedRect(cr *cairo.Context, r layout.Rect, radius float64) {
	radius = min(radius, r.Width/2, r.Height/2)
	if radius <= 0 {
		cr.Rectangle(r.X, r.Y, r.Width, r.Height)
		return
	}
	cr.NewSubPath()
	cr.Arc(r.Right()-radius, r.Y+radius, radius, -math.Pi/2, 0)
	cr.Arc(r.Right()-radius, r.Y+r.Height-radius, radius, 0, math.Pi/2)
	cr.Arc(r.X+radius, r.Y+r.Height-radius, radius, math.Pi/2, math.Pi)
	cr.Arc(r.X+radius, r.Y+radius, radius, math.Pi, 3*math.Pi/2)
	cr.ClosePath()
}

// imageCache holds decoded images keyed by path. Entries are reloaded when
// the file's modification time changes.
type imageCache struct {
	logger  *slog.Logger
	entries map[string]imageEntry
}

type imageEntry struct {
	modTime time.Time
	pixbuf  *gdkpixbuf.Pixbuf
}

func newImageCache(logger *slog.Logger) *imageCache {
	return &imageCache{logger: logger, entries: make(map[string]imageEntry)}
}

func (c *imageCache) get(path string) *gdkpixbuf.Pixbuf {
	info, err := os.Stat(path)
	if err != nil {
		delete(c.entries, path)
		return nil
	}
	if e, ok := c.entries[path]; ok && e.modTime.Equal(info.ModTime()) {
		return e.pixbuf
	}
	pixbuf, err := gdkpixbuf.NewPixbufFromFile(path)
	if err != nil {
		c.logger.Warn("failed to load image", "path", path, "error", err)
		pixbuf = nil
	}
	c.entries[path] = imageEntry{modTime: info.ModTime(), pixbuf: pixbuf}
	return pixbuf
}
