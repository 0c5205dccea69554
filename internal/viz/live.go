package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spikeviz/internal/engine"
	"github.com/san-kum/spikeviz/internal/playback"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	panelWidth      = 50
	historyCapacity = 240
	seekStep        = 1.0
)

type TickMsg time.Time

// Model is the live player: it steps the engine once per tick and draws the
// particles with a stats panel beside them.
type Model struct {
	eng      *engine.Engine
	title    string
	interval time.Duration

	width, height int
	canvas        *Canvas
	camera        *Camera
	box           *Wireframe

	history []float64
	last    engine.Frame

	showNodes bool
	showBox   bool
	showHelp  bool
}

// NewModel wraps eng. frameDt is the wall-clock time between ticks.
func NewModel(eng *engine.Engine, title string, frameDt float64) Model {
	interval := time.Duration(frameDt * float64(time.Second))
	if interval <= 0 {
		interval = time.Second / 60
	}
	m := Model{
		eng:       eng,
		title:     title,
		interval:  interval,
		width:     defaultWidth,
		height:    defaultHeight,
		canvas:    NewCanvas(defaultWidth, defaultHeight),
		camera:    NewCamera(),
		history:   make([]float64, 0, historyCapacity),
		showNodes: true,
		showBox:   true,
	}
	lo, hi := eng.Dataset().Bounds()
	m.box = BoxWireframe(FromMat32(lo), FromMat32(hi))
	m.fit()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width-panelWidth, msg.Height-2)
	case TickMsg:
		m.step()
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.eng.Pause()
	case "p":
		m.eng.Play()
	case "s":
		m.eng.Stop()
		m.history = m.history[:0]
	case "l":
		m.eng.SetLoop(!m.eng.Player().Loop())
	case "[":
		m.eng.GoTo(m.eng.Player().CurrentTime() - seekStep)
	case "]":
		m.eng.GoTo(m.eng.Player().CurrentTime() + seekStep)
	case "r":
		m.eng.Restart()
		m.history = m.history[:0]
	case "t":
		NextTheme()
	case "n":
		m.showNodes = !m.showNodes
	case "b":
		m.showBox = !m.showBox
	case "?":
		m.showHelp = !m.showHelp
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "z":
		m.camera.RotateZ(0.1)
	case "Z":
		m.camera.RotateZ(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	}
	m.draw()
	return m, nil
}

func (m *Model) step() {
	f := m.eng.Step()
	m.last = f
	if !f.Advanced {
		return
	}
	m.history = append(m.history, float64(f.Spikes))
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) resize(w, h int) {
	m.width, m.height = max(w, 20), max(h, 8)
	m.canvas = NewCanvas(m.width, m.height)
	m.fit()
}

func (m *Model) fit() {
	lo, hi := m.eng.Dataset().Bounds()
	m.camera.Fit(FromMat32(lo), FromMat32(hi), m.width*2, m.height*4)
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.showBox {
		Render3D(m.canvas, m.box, m.camera)
	}
	DrawParticles(m.canvas, m.camera, m.eng.System(), m.showNodes)
}

func stateLabel(s playback.State) string {
	switch s {
	case playback.Playing:
		return accentStyle().Render("▶ PLAYING")
	case playback.Finished:
		return warnStyle().Render("■ FINISHED")
	case playback.Paused:
		return valueStyle().Render("❚❚ PAUSED")
	default:
		return valueStyle().Render("■ STOPPED")
	}
}

func (m Model) row(label, value string) string {
	return labelStyle().Render(label) + valueStyle().Render(value) + "\n"
}

func (m Model) View() string {
	player := m.eng.Player()
	f := m.last

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(stateLabel(player.State()))
	if player.Loop() {
		s.WriteString(" " + accentStyle().Render("↻"))
	}
	s.WriteString("\n\n")

	s.WriteString(ProgressBar(player.Progress(), 30) + "\n")
	s.WriteString(m.row("Time", fmt.Sprintf("%.3f / %.3fs", player.CurrentTime(), player.EndTime())))
	s.WriteString(m.row("Step", fmt.Sprintf("%gs", m.eng.DeltaTime())))
	s.WriteString(m.row("Spikes", fmt.Sprintf("%d", f.Spikes)))
	s.WriteString(m.row("Particles", fmt.Sprintf("%d / %d", f.Alive, f.Total)))
	s.WriteString(m.row("Newborn", fmt.Sprintf("%d", f.Newborn)))
	if n := m.eng.UnknownSpikes(); n > 0 {
		s.WriteString(labelStyle().Render("Unknown") + warnStyle().Render(fmt.Sprintf("%d", n)) + "\n")
	}
	s.WriteString(m.row("Neurons", fmt.Sprintf("%d", m.eng.Dataset().NumNeurons())))
	s.WriteString(m.row("Theme", CurrentTheme.Name))

	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(5), asciigraph.Width(32), asciigraph.Caption("spikes / frame"))
		s.WriteString(graphStyle().Render(chart) + "\n")
	} else {
		s.WriteString("\n" + Sparkline(nil, 32) + "\n")
	}

	s.WriteString(helpStyle().Render("SP:Pause P:Play S:Stop L:Loop\n[ ]:Seek R:Restart T:Theme\n?:Help Q:Quit"))

	view := lipgloss.JoinHorizontal(lipgloss.Top,
		m.canvas.Render(string(CurrentTheme.Muted)),
		panelStyle().Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n" + view
	}
	return view
}

const helpOverlay = `
 Space   pause / resume         R      restart from start
 P       play                   T      next theme
 S       stop and rewind        N      toggle neuron dots
 L       toggle loop            B      toggle bounding box
 [ ]     seek one second        x y z  rotate (shift reverses)
 + -     zoom                   Q      quit
`
