package main

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/cbegin/scoresync/internal/geom"
)

var (
	// Chrome.
	bgColor     = color.RGBA{34, 38, 46, 255}
	panelColor  = color.RGBA{48, 54, 66, 255}
	wellColor   = color.RGBA{26, 29, 36, 255}
	edgeLight   = color.RGBA{84, 92, 108, 255}
	edgeDark    = color.RGBA{16, 18, 24, 255}
	accentColor = color.RGBA{70, 130, 220, 255}
	textColor   = color.RGBA{228, 231, 238, 255}
	mutedColor  = color.RGBA{140, 148, 164, 255}
	errorColor  = color.RGBA{240, 110, 110, 255}

	// Score page.
	pageColor    = color.RGBA{250, 248, 240, 255}
	staffColor   = color.RGBA{220, 216, 200, 255}
	barColor     = color.RGBA{120, 120, 120, 255}
	noteColor    = color.RGBA{30, 30, 30, 255}
	restColor    = color.RGBA{150, 150, 150, 255}
	gapColor     = color.RGBA{200, 170, 60, 255}
	activeColor  = color.RGBA{0, 140, 90, 255}
	cursorColor  = color.RGBA{200, 30, 30, 255}
	measureColor = color.RGBA{230, 240, 255, 255}
)

func fillRect(dst *ebiten.Image, r geom.Rect, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

func outlineRect(dst *ebiten.Image, r geom.Rect, c color.Color) {
	vector.StrokeRect(dst, float32(r.X)+0.5, float32(r.Y)+0.5, float32(r.W)-1, float32(r.H)-1, 1, c, false)
}

// edge frames r with lit top and left sides. Swapping the colours makes the
// area look pressed in.
func edge(dst *ebiten.Image, r geom.Rect, lit, shade color.Color) {
	fillRect(dst, geom.NewRect(r.X, r.Y, r.W, 1), lit)
	fillRect(dst, geom.NewRect(r.X, r.Y, 1, r.H), lit)
	fillRect(dst, geom.NewRect(r.X, r.Bottom()-1, r.W, 1), shade)
	fillRect(dst, geom.NewRect(r.Right()-1, r.Y, 1, r.H), shade)
}

func drawPanel(dst *ebiten.Image, r geom.Rect) {
	fillRect(dst, r, panelColor)
	edge(dst, r, edgeLight, edgeDark)
}

func drawWell(dst *ebiten.Image, r geom.Rect) {
	fillRect(dst, r, wellColor)
	edge(dst, r, edgeDark, edgeLight)
}

// toImageRect rounds r outwards to whole pixels for SubImage.
func toImageRect(r geom.Rect) image.Rectangle {
	return image.Rect(int(r.Left()), int(r.Top()), int(r.Right()+0.999), int(r.Bottom()+0.999))
}

type button struct {
	rect  geom.Rect
	label string
	on    bool
}

func (g *game) drawButton(dst *ebiten.Image, b button) {
	if b.on {
		fillRect(dst, b.rect, accentColor)
		edge(dst, b.rect, edgeDark, edgeLight)
	} else {
		drawPanel(dst, b.rect)
	}
	w := float64(len([]rune(b.label)) * charW)
	g.text.draw(dst, b.label, b.rect.X+(b.rect.W-w)/2, b.rect.Y+(b.rect.H-lineH)/2, textColor)
}

// slider maps a horizontal track onto [min, max].
type slider struct {
	rect     geom.Rect
	min, max float64
}

const sliderLabelW = 9 * charW

func (s slider) track() geom.Rect {
	return geom.NewRect(s.rect.X+sliderLabelW, s.rect.Y+s.rect.H/2-3, max(s.rect.W-sliderLabelW-12, 1), 6)
}

func (s slider) valueAt(x float64) float64 {
	t := s.track()
	f := min(max((x-t.X)/t.W, 0), 1)
	return s.min + f*(s.max-s.min)
}

func (g *game) drawSlider(dst *ebiten.Image, s slider, v float64, caption string) {
	drawPanel(dst, s.rect)
	g.text.draw(dst, caption, s.rect.X+8, s.rect.Y+(s.rect.H-lineH)/2, textColor)

	t := s.track()
	drawWell(dst, t)
	f := min(max((v-s.min)/(s.max-s.min), 0), 1)
	fillRect(dst, geom.NewRect(t.X, t.Y, t.W*f, t.H), accentColor)
	knob := geom.NewRect(t.X+t.W*f-4, t.Y-6, 8, t.H+12)
	drawPanel(dst, knob)
}

// labels renders text with the debug font, caching one image per string.
type labels struct {
	cache map[string]*ebiten.Image
}

const maxCachedLabels = 2048

func (l *labels) draw(dst *ebiten.Image, s string, x, y float64, c color.Color) {
	if s == "" {
		return
	}
	img, ok := l.cache[s]
	if !ok {
		img = ebiten.NewImage(max(1, len([]rune(s))*charW/textScale), lineH/textScale)
		ebitenutil.DebugPrintAt(img, s, 0, 0)
		if len(l.cache) >= maxCachedLabels {
			clear(l.cache)
		}
		l.cache[s] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(textScale, textScale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	dst.DrawImage(img, op)
}

// fit cuts s to the number of characters that fit in width.
func fit(s string, width float64) string {
	n := int(width / charW)
	r := []rune(s)
	switch {
	case len(r) <= n:
		return s
	case n <= 3:
		return string(r[:max(n, 0)])
	default:
		return string(r[:n-3]) + "..."
	}
}
