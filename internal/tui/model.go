// Package tui is a terminal front end that plays a score and shows where the
// cursor is.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cbegin/scoresync"
)

const (
	defaultFPS      = 30
	defaultBarWidth = 40
	minSpeed        = 0.25
	maxSpeed        = 4
	speedStep       = 0.25
)

type Option func(*Model)

// WithFPS sets how often the player is ticked.
func WithFPS(fps int) Option {
	return func(m *Model) {
		if fps > 0 {
			m.interval = time.Second / time.Duration(fps)
		}
	}
}

// Model is the playback TUI model.
type Model struct {
	// Dependencies
	pb     *scoresync.Playback
	player *scoresync.Player
	events <-chan scoresync.PlaybackEvent

	// Components
	keys   KeyMap
	styles Styles
	help   help.Model

	// State
	status   string
	err      error
	interval time.Duration
	loops    int
	width    int
	quitting bool
}

// New creates a model driving player. The model takes over the player's
// Watch channel.
func New(pb *scoresync.Playback, player *scoresync.Player, opts ...Option) *Model {
	m := &Model{
		pb:       pb,
		player:   player,
		events:   player.Watch(),
		keys:     DefaultKeyMap(),
		styles:   DefaultStyles(),
		help:     help.New(),
		interval: time.Second / defaultFPS,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return MsgTick{Time: t}
	})
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case MsgTick:
		m.player.Tick()
		m.drainEvents()
		return m, m.tick()

	case MsgStatus:
		m.status = msg.Text
		m.err = msg.Err
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.player.Pause()
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		if m.player.Playing() {
			m.player.Pause()
		} else {
			m.player.Play()
		}

	case key.Matches(msg, m.keys.Stop):
		m.player.Stop()
		m.drainEvents()

	case key.Matches(msg, m.keys.Next):
		m.player.Next()

	case key.Matches(msg, m.keys.Previous):
		m.player.Previous()

	case key.Matches(msg, m.keys.Snap):
		m.player.Snap(m.player.Position())

	case key.Matches(msg, m.keys.Loop):
		m.player.SetLoop(!m.player.Loop())
		m.status = "loop " + onOff(m.player.Loop())

	case key.Matches(msg, m.keys.Faster):
		m.player.SetSpeed(math.Min(m.player.Speed()+speedStep, maxSpeed))

	case key.Matches(msg, m.keys.Slower):
		m.player.SetSpeed(math.Max(m.player.Speed()-speedStep, minSpeed))

	case key.Matches(msg, m.keys.NextPart):
		m.shiftPart(1)

	case key.Matches(msg, m.keys.PrevPart):
		m.shiftPart(-1)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) shiftPart(delta int) {
	n := len(m.pb.Document().Parts)
	if n < 2 {
		return
	}
	part := ((m.pb.Part()+delta)%n + n) % n
	if err := m.pb.SelectPart(part); err != nil {
		m.err = err
		return
	}
	m.player.Tick()
	m.drainEvents()
	m.status = "following " + m.pb.Document().Parts[part].ID
}

func (m *Model) drainEvents() {
	for {
		select {
		case ev := <-m.events:
			m.handleEvent(ev)
		default:
			return
		}
	}
}

func (m *Model) handleEvent(ev scoresync.PlaybackEvent) {
	switch ev.Kind {
	case scoresync.EventLoopCompleted:
		m.loops++
		m.status = fmt.Sprintf("loop %d completed", m.loops)
	case scoresync.EventPlaybackEnded:
		m.status = "playback ended"
	case scoresync.EventReloaded:
		m.status = fmt.Sprintf("reloaded (generation %d)", ev.Generation)
	}
}

// View renders the model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	doc := m.pb.Document()
	state := m.pb.Cursor().State()
	pos := m.player.Position()
	dur := m.pb.Duration()

	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = "scoresync"
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	part := doc.Parts[m.pb.Part()]
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%s %s (%d/%d)", part.ID, part.Name, m.pb.Part()+1, len(doc.Parts))))
	b.WriteString("\n")

	if m.player.Playing() {
		b.WriteString(m.styles.Playing.Render("▶ playing"))
	} else {
		b.WriteString(m.styles.Paused.Render("⏸ paused"))
	}
	b.WriteString("  ")
	b.WriteString(m.styles.Value.Render(fmt.Sprintf("%.2fs / %.2fs", pos.Sec(), dur.Sec())))
	b.WriteString("\n")

	frac := 0.0
	if dur.Ms() > 0 {
		frac = pos.Ms() / dur.Ms()
	}
	b.WriteString(m.progressBar(frac))
	b.WriteString("\n\n")

	m.row(&b, "frame", fmt.Sprintf("%d/%d  alpha %.3f", state.Index+1, m.pb.Cursor().Len(), state.Alpha))
	if state.Frame != nil && state.Frame.Measure != nil {
		m.row(&b, "measure", fmt.Sprint(state.Frame.Measure.Index+1))
	}
	m.row(&b, "speed", fmt.Sprintf("%.2fx", m.player.Speed()))
	m.row(&b, "loop", onOff(m.player.Loop()))
	if state.Frame != nil {
		ids := make([]string, 0, len(state.Frame.Active))
		for _, el := range state.Frame.Active {
			ids = append(ids, el.ElementID())
		}
		b.WriteString(m.styles.Label.Render("active"))
		b.WriteString(m.styles.Active.Render(strings.Join(ids, " ")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) row(b *strings.Builder, label, value string) {
	b.WriteString(m.styles.Label.Render(label))
	b.WriteString(m.styles.Value.Render(value))
	b.WriteString("\n")
}

func (m *Model) progressBar(frac float64) string {
	width := defaultBarWidth
	if m.width > 0 {
		width = min(defaultBarWidth, max(m.width-4, 10))
	}
	full := int(math.Round(min(max(frac, 0), 1) * float64(width)))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.BarFull.Render(strings.Repeat("█", full)),
		m.styles.BarEmpty.Render(strings.Repeat("░", width-full)),
	)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
