package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spikeviz/internal/config"
)

// Launcher builds the first screen for a chosen configuration, usually a
// LoadModel.
type Launcher func(cfg *config.Config) (tea.Model, error)

var presetInfo = map[string]string{
	"small":  "64 neurons, looping",
	"dense":  "4096 neurons, fast step",
	"rhythm": "4 Hz population bursts",
	"static": "still particles, direct policy",
}

// menu lets the user pick a synthetic preset before playback starts.
type menu struct {
	source  string
	presets []string
	cursor  int
	launch  Launcher
	err     error
}

func NewPresetMenu(source string, launch Launcher) tea.Model {
	return menu{
		source:  source,
		presets: config.ListPresets(source),
		launch:  launch,
	}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.presets) == 0 {
			return m, nil
		}
		cfg := config.GetPreset(m.source, m.presets[m.cursor])
		next, err := m.launch(cfg)
		if err != nil {
			m.err = err
			return m, nil
		}
		return next, next.Init()
	}
	return m, nil
}

func (m menu) View() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle().Render("SPIKEVIZ") + "\n")
	b.WriteString("    " + helpStyle().Render(m.source+" presets") + "\n\n")

	selected := lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true)
	for i, name := range m.presets {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				accentStyle().Render("▸"),
				selected.Render(fmt.Sprintf("%-10s", name)),
				accentStyle().Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n",
				labelStyle().Render(fmt.Sprintf("%-10s", name)),
				helpStyle().UnsetMarginTop().Render(desc)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + warnStyle().Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + helpStyle().Render("j/k navigate  enter play  q quit") + "\n")
	return b.String()
}
