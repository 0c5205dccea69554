package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/spikeviz/internal/dataset"
	"github.com/san-kum/spikeviz/internal/engine"
)

// BuildFunc turns a loaded dataset into a ready engine.
type BuildFunc func(ds *dataset.Dataset) (*engine.Engine, error)

type loadTickMsg time.Time

// LoadModel shows loader progress and hands over to the live player once
// the dataset is published. Quitting while loading cancels the load.
type LoadModel struct {
	name    string
	loader  *dataset.Loader
	build   BuildFunc
	frameDt float64
	frame   int
	err     error
}

func NewLoadModel(name string, loader *dataset.Loader, build BuildFunc, frameDt float64) LoadModel {
	return LoadModel{name: name, loader: loader, build: build, frameDt: frameDt}
}

func loadTick() tea.Cmd {
	return tea.Tick(time.Second/15, func(t time.Time) tea.Msg { return loadTickMsg(t) })
}

func (m LoadModel) Init() tea.Cmd { return loadTick() }

func (m LoadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.loader.Cancel()
			return m, tea.Quit
		}
		if m.err != nil {
			return m, tea.Quit
		}
	case loadTickMsg:
		if m.err != nil {
			return m, nil
		}
		m.frame++
		select {
		case <-m.loader.Done():
		default:
			return m, loadTick()
		}

		ds, err := m.loader.Wait()
		if err != nil {
			m.err = err
			return m, nil
		}
		eng, err := m.build(ds)
		if err != nil {
			m.err = err
			return m, nil
		}
		live := NewModel(eng, ds.Name, m.frameDt)
		return live, live.Init()
	}
	return m, nil
}

// Err reports why loading failed, if it did.
func (m LoadModel) Err() error { return m.err }

func (m LoadModel) View() string {
	var s strings.Builder
	s.WriteString("\n  " + headerStyle().Render(strings.ToUpper(m.name)) + "\n")
	if m.err != nil {
		s.WriteString("  " + warnStyle().Render("load failed: "+m.err.Error()) + "\n\n")
		s.WriteString("  " + helpStyle().Render("press any key to exit") + "\n")
		return s.String()
	}
	s.WriteString(fmt.Sprintf("  %s loading  %s\n",
		accentStyle().Render(Spinner(m.frame)),
		valueStyle().Render(fmt.Sprintf("%d records", m.loader.Progress()))))
	s.WriteString("  " + helpStyle().Render("q: cancel") + "\n")
	return s.String()
}

// Run starts a full-screen program with m as the first screen.
func Run(m tea.Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if lm, ok := final.(LoadModel); ok && lm.err != nil {
		return lm.err
	}
	return nil
}
