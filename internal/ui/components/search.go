package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SearchInput is a single-line text input. The cursor counts runes.
type SearchInput struct {
	Placeholder string
	Focused     bool
	Width       int
	Prompt      string
	Style       lipgloss.Style
	FocusStyle  lipgloss.Style

	value  []rune
	cursor int
}

// NewSearchInput creates a new search input
func NewSearchInput(width int) SearchInput {
	return SearchInput{
		Placeholder: "Filter tracks...",
		Width:       width,
		Prompt:      "> ",
		Style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		FocusStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1),
	}
}

// Focus sets focus on the input
func (s *SearchInput) Focus() {
	s.Focused = true
}

// Blur removes focus from the input
func (s *SearchInput) Blur() {
	s.Focused = false
}

// Value returns the current text
func (s SearchInput) Value() string {
	return string(s.value)
}

// SetValue sets the input value and moves the cursor to its end
func (s *SearchInput) SetValue(value string) {
	s.value = []rune(value)
	s.cursor = len(s.value)
}

// Clear clears the input
func (s *SearchInput) Clear() {
	s.value = nil
	s.cursor = 0
}

// Update handles editing keys
func (s SearchInput) Update(msg tea.Msg) (SearchInput, tea.Cmd) {
	if !s.Focused {
		return s, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyBackspace:
			if s.cursor > 0 {
				s.value = append(s.value[:s.cursor-1:s.cursor-1], s.value[s.cursor:]...)
				s.cursor--
			}
		case tea.KeyDelete:
			if s.cursor < len(s.value) {
				s.value = append(s.value[:s.cursor:s.cursor], s.value[s.cursor+1:]...)
			}
		case tea.KeyLeft:
			if s.cursor > 0 {
				s.cursor--
			}
		case tea.KeyRight:
			if s.cursor < len(s.value) {
				s.cursor++
			}
		case tea.KeyHome, tea.KeyCtrlA:
			s.cursor = 0
		case tea.KeyEnd, tea.KeyCtrlE:
			s.cursor = len(s.value)
		case tea.KeyCtrlU:
			s.value = append([]rune(nil), s.value[s.cursor:]...)
			s.cursor = 0
		case tea.KeySpace:
			s.insert([]rune{' '})
		case tea.KeyRunes:
			s.insert(msg.Runes)
		}
	}

	return s, nil
}

func (s *SearchInput) insert(r []rune) {
	next := make([]rune, 0, len(s.value)+len(r))
	next = append(next, s.value[:s.cursor]...)
	next = append(next, r...)
	next = append(next, s.value[s.cursor:]...)
	s.value = next
	s.cursor += len(r)
}

// View renders the search input
func (s SearchInput) View() string {
	var content string

	switch {
	case len(s.value) == 0 && !s.Focused:
		content = s.Prompt + lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(s.Placeholder)
	case s.Focused:
		cursor := lipgloss.NewStyle().Background(lipgloss.Color("212")).Render(" ")
		content = s.Prompt + string(s.value[:s.cursor]) + cursor + string(s.value[s.cursor:])
	default:
		content = s.Prompt + string(s.value)
	}

	if s.Focused {
		return s.FocusStyle.Width(s.Width).Render(content)
	}
	return s.Style.Width(s.Width).Render(content)
}
