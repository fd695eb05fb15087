// Package prompt implements the interactive selector used when a repository
// declares multiple labeled dev invocations. It satisfies command.Selector so
// non-interactive callers and tests can swap in a deterministic function.
package prompt

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/crewhq/crew/pkg/workspace"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var defaultPickerKeyMap = pickerKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

type pickerModel struct {
	repo    string
	choices []workspace.Alternative
	keys    pickerKeyMap
	cursor  int
	chosen  int
	aborted bool
}

func newPickerModel(repo string, choices []workspace.Alternative) *pickerModel {
	return &pickerModel{
		repo:    repo,
		choices: choices,
		keys:    defaultPickerKeyMap,
		chosen:  -1,
	}
}

func (m *pickerModel) Init() tea.Cmd { return nil }

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Select):
		m.chosen = m.cursor
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Quit):
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *pickerModel) View() string {
	s := titleStyle.Render(fmt.Sprintf("Select a dev command for %s", m.repo)) + "\n\n"
	for i, choice := range m.choices {
		line := choice.Label
		if choice.Kind != "" {
			line += mutedStyle.Render(" ("+choice.Kind+")")
		}
		line += mutedStyle.Render("  " + choice.Command)
		if i == m.cursor {
			s += selectedStyle.Render("> "+line) + "\n"
		} else {
			s += "  " + line + "\n"
		}
	}
	s += "\n" + mutedStyle.Render("enter: select • q: cancel") + "\n"
	return s
}

// TUISelector runs a terminal picker for each selection request.
type TUISelector struct{}

// Select blocks until the user picks an alternative or cancels.
func (TUISelector) Select(repo string, choices []workspace.Alternative) (int, error) {
	model := newPickerModel(repo, choices)
	program := tea.NewProgram(model)
	final, err := program.Run()
	if err != nil {
		return 0, fmt.Errorf("running selector: %w", err)
	}
	picked := final.(*pickerModel)
	if picked.aborted || picked.chosen < 0 {
		return 0, fmt.Errorf("selection canceled")
	}
	return picked.chosen, nil
}
