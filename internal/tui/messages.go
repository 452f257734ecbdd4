package tui

import tea "github.com/charmbracelet/bubbletea"

// RedrawMsg asks the program to render again. The content region sends it
// when a module invalidates.
type RedrawMsg struct{}

type StatusMsg struct {
	Text  string
	IsErr bool
}

func StatusCmd(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		if err == nil {
			return StatusMsg{}
		}
		return StatusMsg{Text: err.Error(), IsErr: true}
	}
}
