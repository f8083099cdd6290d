package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"path"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/cbegin/scoresync"
	"github.com/cbegin/scoresync/internal/cli"
	"github.com/cbegin/scoresync/internal/config"
	"github.com/cbegin/scoresync/internal/cursor"
	"github.com/cbegin/scoresync/internal/geom"
	"github.com/cbegin/scoresync/internal/notation"
	"github.com/cbegin/scoresync/internal/score"
	"github.com/cbegin/scoresync/internal/timing"
	"github.com/cbegin/scoresync/internal/viewport"
)

const (
	windowW    = 1100
	windowH    = 720
	minWindowW = 860
	minWindowH = 560

	textScale = 2
	charW     = 7 * textScale
	lineH     = 14 * textScale

	margin    = 16
	sidebarW  = 260
	controlsH = 40
	statusH   = 36
	scorePad  = 20
	wheelStep = 40.0
	speedStep = 0.25
	minSpeed  = 0.25
	maxSpeed  = 2.0

	// clickSlop is how far the pointer may travel before a press becomes a drag.
	clickSlop = 4.0
)

var errNoScoreFile = errors.New("no .score or .txt file dropped")

// loader produces the document currently on screen. R re-runs it.
type loader func() (*score.Document, error)

type game struct {
	cfg      *config.Config
	logger   *slog.Logger
	encoding notation.Encoding
	behavior cursor.Behavior
	parser   *notation.Parser

	pb     *scoresync.Playback
	player *scoresync.Player
	events <-chan scoresync.PlaybackEvent
	view   *viewport.Viewport

	source string
	reload loader

	pressed    bool
	dragging   bool
	speedDrag  bool
	press      geom.Point
	last       geom.Point
	status     string
	statusErr  bool
	text       labels
	screenSize geom.Point
}

func newGame(cfg *config.Config, logger *slog.Logger, enc notation.Encoding, initialPath string) *game {
	g := &game{
		cfg:        cfg,
		logger:     logger,
		encoding:   enc,
		behavior:   cursor.ParseBehavior(cfg.Scroll.Behavior),
		parser:     notation.NewParser(cli.LayoutFor(cfg)),
		view:       viewport.New(windowW, windowH),
		status:     "Drop a .score file onto the window.",
		text:       labels{cache: make(map[string]*ebiten.Image)},
		screenSize: geom.Point{X: windowW, Y: windowH},
	}
	if initialPath != "" {
		g.load(filepath.Base(initialPath), func() (*score.Document, error) {
			return cli.LoadDocument(cfg, "", initialPath, string(enc))
		})
	}
	return g
}

type uiLayout struct {
	parts  geom.Rect
	info   geom.Rect
	score  geom.Rect
	play   geom.Rect
	loop   geom.Rect
	speed  slider
	status geom.Rect
}

func (g *game) layout() uiLayout {
	w, h := g.screenSize.X, g.screenSize.Y
	statusY := h - margin - statusH
	controlsY := statusY - 8 - controlsH
	bodyH := controlsY - 12 - margin
	partsH := math.Round(bodyH * 0.45)

	return uiLayout{
		parts:  geom.NewRect(margin, margin, sidebarW, partsH),
		info:   geom.NewRect(margin, margin+partsH+8, sidebarW, bodyH-partsH-8),
		score:  geom.NewRect(margin+sidebarW+12, margin, w-2*margin-sidebarW-12, bodyH),
		play:   geom.NewRect(margin, controlsY, 120, controlsH),
		loop:   geom.NewRect(margin+128, controlsY, 120, controlsH),
		status: geom.NewRect(margin, statusY, w-2*margin, statusH),
		speed: slider{
			rect: geom.NewRect(margin+256, controlsY, math.Min(380, w-2*margin-256), controlsH),
			min:  minSpeed,
			max:  maxSpeed,
		},
	}
}

// partRow returns the row rectangle of part i in the sidebar.
func (l uiLayout) partRow(i int) geom.Rect {
	return geom.NewRect(l.parts.X+6, l.parts.Y+14+lineH+float64(i)*lineH, l.parts.W-12, lineH)
}

func (g *game) Update() error {
	l := g.layout()
	g.view.SetClientSize(l.score.W-2*scorePad, l.score.H-2*scorePad)

	g.handleDrop()
	g.handleKeys()
	g.handleMouse(l)

	if g.player != nil {
		g.player.Tick()
		g.pollEvents()
		c := g.pb.Cursor()
		if g.player.Playing() && !g.dragging && !c.IsFullyVisible() {
			c.ScrollIntoView(g.behavior)
		}
	}
	g.view.Step()
	return nil
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	w, h := max(outsideW, minWindowW), max(outsideH, minWindowH)
	g.screenSize = geom.Point{X: float64(w), Y: float64(h)}
	return w, h
}

func (g *game) Close() {
	if g.player != nil {
		g.player.Stop()
	}
}

func (g *game) pollEvents() {
	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				return
			}
			switch ev.Kind {
			case scoresync.EventPlaybackEnded:
				g.setStatus("Playback ended")
			case scoresync.EventLoopCompleted:
				g.setStatus("Looping")
			case scoresync.EventReloaded:
				g.setStatus(fmt.Sprintf("Reloaded %s (generation %d)", g.source, ev.Generation))
			}
		default:
			return
		}
	}
}

// handleDrop loads the first score file dropped onto the window.
func (g *game) handleDrop() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	var found string
	_ = fs.WalkDir(files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isScoreFile(p) {
			return nil
		}
		found = p
		return fs.SkipAll
	})
	if found == "" {
		g.setError(errNoScoreFile.Error())
		return
	}
	f, err := files.Open(found)
	if err != nil {
		g.setError(err.Error())
		return
	}
	src, err := notation.Decode(f, g.encoding)
	_ = f.Close()
	if err != nil {
		g.setError(err.Error())
		return
	}
	g.load(path.Base(found), func() (*score.Document, error) {
		return g.parser.Parse(src)
	})
}

func isScoreFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".score", ".txt":
		return true
	}
	return false
}

// load installs the document from fn. The first document builds the
// playback and player; later ones reload it.
func (g *game) load(name string, fn loader) {
	if fn == nil {
		return
	}
	doc, err := fn()
	if err != nil {
		g.setError(err.Error())
		return
	}
	if g.pb == nil {
		opts := append(cli.PlaybackOptions(g.cfg, g.logger, 0),
			scoresync.WithScrollContainer(g.view, cli.ScrollerOptions(g.cfg)...))
		pb, err := scoresync.New(doc, opts...)
		if err != nil {
			g.setError(err.Error())
			return
		}
		pl, err := scoresync.NewPlayer(pb, scoresync.WithSpeed(g.cfg.Player.Speed), scoresync.WithLoop(g.cfg.Player.Loop))
		if err != nil {
			g.setError(err.Error())
			return
		}
		g.pb, g.player, g.events = pb, pl, pl.Watch()
		g.setStatus("Loaded " + name)
	} else if err := g.pb.Reload(doc); err != nil {
		g.setError(err.Error())
		return
	}
	g.source, g.reload = name, fn
	g.view.SetContentSize(pageSize(doc))
}

// pageSize is the extent of all systems plus the page margin.
func pageSize(doc *score.Document) (float64, float64) {
	var page geom.Rect
	for _, sys := range doc.Systems {
		page = page.Union(sys.Bounds)
	}
	return page.Right() + scorePad, page.Bottom() + scorePad
}

func (g *game) handleKeys() {
	if g.player == nil {
		return
	}
	c := g.pb.Cursor()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		g.player.Next()
		c.ScrollIntoView(cursor.BehaviorInstant)
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		g.player.Previous()
		c.ScrollIntoView(cursor.BehaviorInstant)
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		g.player.Snap(timing.Zero())
		c.ScrollIntoView(cursor.BehaviorInstant)
	case inpututil.IsKeyJustPressed(ebiten.KeyDigit0):
		g.player.Snap(g.player.Position())
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.followPart((g.pb.Part() + 1) % len(g.pb.Document().Parts))
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.player.SetLoop(!g.player.Loop())
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.player.SetSpeed(min(g.player.Speed()+speedStep, maxSpeed))
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.player.SetSpeed(max(g.player.Speed()-speedStep, minSpeed))
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.load(g.source, g.reload)
	}
}

func (g *game) handleMouse(l uiLayout) {
	x, y := ebiten.CursorPosition()
	p := geom.Point{X: float64(x), Y: float64(y)}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.press, g.last = p, p
		switch {
		case l.play.Has(p):
			g.togglePlay()
		case l.loop.Has(p):
			if g.player != nil {
				g.player.SetLoop(!g.player.Loop())
			}
		case l.speed.rect.Has(p):
			g.speedDrag = true
		case l.parts.Has(p):
			g.clickPart(l, p)
		case l.score.Has(p):
			g.pressed = true
		}
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if g.speedDrag && g.player != nil {
			g.player.SetSpeed(l.speed.valueAt(p.X))
		}
		if g.pressed && !g.dragging && math.Hypot(p.X-g.press.X, p.Y-g.press.Y) > clickSlop {
			g.dragging = true
			if g.player != nil {
				g.player.Suspend()
			}
		}
		if g.dragging {
			g.view.ScrollBy(g.last.X-p.X, g.last.Y-p.Y)
		}
		g.last = p
	}

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		switch {
		case g.dragging:
			if g.player != nil {
				g.player.Resume()
			}
		case g.pressed:
			g.snapTo(g.pageAt(l, p))
		}
		g.pressed, g.dragging, g.speedDrag = false, false, false
	}

	if _, dy := ebiten.Wheel(); dy != 0 && l.score.Has(p) {
		off := g.view.ScrollOffset()
		g.view.ScrollTo(off.X, off.Y-dy*wheelStep, cursor.BehaviorSmooth)
	}
}

// pageAt converts a window point inside the score panel to page coordinates.
func (g *game) pageAt(l uiLayout, p geom.Point) geom.Point {
	off := g.view.ScrollOffset()
	return geom.Point{X: p.X - l.score.X - scorePad + off.X, Y: p.Y - l.score.Y - scorePad + off.Y}
}

// snapTo moves the cursor to the frame drawn under p. When repeats draw the
// same spot more than once, the first pass at or after the cursor wins.
func (g *game) snapTo(p geom.Point) {
	if g.pb == nil {
		return
	}
	frames := g.pb.Frames(g.pb.Part())
	current := g.pb.Cursor().State().Index
	hit := -1
	for i, f := range frames {
		if !f.XRange.Has(p.X) || !f.YRange.Has(p.Y) {
			continue
		}
		if hit < 0 || (hit < current && i >= current) {
			hit = i
		}
	}
	if hit < 0 {
		return
	}
	g.player.Snap(frames[hit].TRange.Start)
	g.setStatus(fmt.Sprintf("Snapped to %s", frames[hit].TRange.Start))
}

func (g *game) clickPart(l uiLayout, p geom.Point) {
	if g.pb == nil {
		return
	}
	for i := range g.pb.Document().Parts {
		if l.partRow(i).Has(p) {
			g.followPart(i)
			return
		}
	}
}

func (g *game) followPart(i int) {
	if i == g.pb.Part() {
		return
	}
	if err := g.pb.SelectPart(i); err != nil {
		g.setError(err.Error())
		return
	}
	g.player.Tick()
	g.setStatus("Following " + g.pb.Document().Parts[i].ID)
}

func (g *game) togglePlay() {
	switch {
	case g.player == nil:
		g.setError("No score loaded")
	case g.player.Playing():
		g.player.Pause()
	default:
		g.player.Play()
	}
}

func (g *game) setError(msg string) {
	g.logger.Warn(msg, "category", "viewer")
	g.status, g.statusErr = msg, true
}

func (g *game) setStatus(msg string) {
	g.status, g.statusErr = msg, false
}
