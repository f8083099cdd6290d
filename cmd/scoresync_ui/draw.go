package main

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/score"
)

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	l := g.layout()

	g.drawScore(screen, l.score)
	g.drawParts(screen, l)
	g.drawInfo(screen, l.info)

	playing := g.player != nil && g.player.Playing()
	looping := g.player != nil && g.player.Loop()
	playLabel := "Play"
	if playing {
		playLabel = "Pause"
	}
	g.drawButton(screen, button{rect: l.play, label: playLabel, on: playing})
	g.drawButton(screen, button{rect: l.loop, label: "Loop", on: looping})
	speed := g.cfg.Player.Speed
	if g.player != nil {
		speed = g.player.Speed()
	}
	g.drawSlider(screen, l.speed, speed, fmt.Sprintf("x%.2f", speed))

	drawWell(screen, l.status)
	c := textColor
	if g.statusErr {
		c = errorColor
	}
	g.text.draw(screen, fit(g.status, l.status.W-16), l.status.X+8, l.status.Y+(l.status.H-lineH)/2, c)
}

// drawScore renders the page through the viewport, clipped to r.
func (g *game) drawScore(screen *ebiten.Image, r geom.Rect) {
	fillRect(screen, r, pageColor)
	edge(screen, r, edgeDark, edgeLight)
	if g.pb == nil {
		return
	}
	page, ok := screen.SubImage(toImageRect(r.Inset(1))).(*ebiten.Image)
	if !ok {
		return
	}
	origin := geom.Point{X: r.X + scorePad, Y: r.Y + scorePad}
	place := func(b geom.Rect) geom.Rect {
		p := g.view.ToScreen(b.Origin())
		return b.Translate(p.X-b.X+origin.X, p.Y-b.Y+origin.Y)
	}

	doc := g.pb.Document()
	state := g.pb.Cursor().State()
	active := make(map[score.Element]bool)
	if state.Frame != nil {
		for _, el := range state.Frame.Active {
			active[el] = true
		}
		if m := state.Frame.Measure; m != nil {
			fillRect(page, place(m.Bounds), measureColor)
		}
	}

	for _, sys := range doc.Systems {
		for i, pr := range sys.Parts {
			c := staffColor
			if i == g.pb.Part() {
				c = barColor
			}
			outlineRect(page, place(pr), c)
		}
	}
	for _, m := range doc.Measures {
		b := place(m.Bounds)
		fillRect(page, geom.NewRect(b.X, b.Y, 1, b.H), barColor)
		for _, f := range m.Fragments {
			if f.IsGap() {
				outlineRect(page, place(f.Gap.Bounds), gapColor)
				if active[f.Gap] {
					fillRect(page, place(f.Gap.Bounds).Inset(2), gapColor)
				}
				continue
			}
			for _, e := range f.Entries {
				switch {
				case active[e]:
					fillRect(page, place(e.Bounds), activeColor)
				case e.Kind == score.EntryNote:
					fillRect(page, place(e.Bounds), noteColor)
				default:
					outlineRect(page, place(e.Bounds), restColor)
				}
			}
		}
	}

	if g.pb.Cursor().Len() > 0 {
		cr := place(state.Rect)
		cr.W = max(cr.W, 2)
		fillRect(page, cr, cursorColor)
	}
}

// drawParts lists the parts; the followed one is highlighted.
func (g *game) drawParts(screen *ebiten.Image, l uiLayout) {
	drawWell(screen, l.parts)
	g.text.draw(screen, "Parts", l.parts.X+8, l.parts.Y+8, mutedColor)
	if g.pb == nil {
		return
	}
	for i, p := range g.pb.Document().Parts {
		row := l.partRow(i)
		if row.Bottom() > l.parts.Bottom() {
			break
		}
		if i == g.pb.Part() {
			fillRect(screen, row, accentColor)
		}
		name := p.ID
		if p.Name != "" {
			name += " " + p.Name
		}
		g.text.draw(screen, fit(name, row.W-8), row.X+4, row.Y, textColor)
	}
}

// drawInfo shows where the cursor is and what is sounding.
func (g *game) drawInfo(screen *ebiten.Image, r geom.Rect) {
	drawPanel(screen, r)
	lines := []string{"No score"}
	if g.pb != nil {
		c := g.pb.Cursor()
		st := c.State()
		lines = []string{
			g.source,
			fmt.Sprintf("%.2fs / %.2fs", g.player.Position().Sec(), g.pb.Duration().Sec()),
			fmt.Sprintf("frame %d/%d", st.Index+1, c.Len()),
			fmt.Sprintf("alpha %.3f", st.Alpha),
		}
		if st.Frame != nil {
			if st.Frame.Measure != nil {
				lines = append(lines, fmt.Sprintf("measure %d", st.Frame.Measure.Index+1))
			}
			ids := make([]string, 0, len(st.Frame.Active))
			for _, el := range st.Frame.Active {
				ids = append(ids, el.ElementID())
			}
			lines = append(lines, "active "+strings.Join(ids, " "))
		}
		if g.player.Suspended() {
			lines = append(lines, "(following paused)")
		}
	}
	y := r.Y + 8
	for _, line := range lines {
		if y+lineH > r.Bottom() {
			break
		}
		g.text.draw(screen, fit(line, r.W-16), r.X+8, y, textColor)
		y += lineH
	}
}
