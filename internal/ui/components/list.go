package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/musicvfs/internal/jumptrack"
)

// EntryList is a scrollable list of filtered playlist entries
type EntryList struct {
	Items         []jumptrack.Entry
	Selected      int
	Height        int
	Width         int
	Offset        int
	Title         string
	Marked        func(jumptrack.Entry) bool
	SelectedStyle lipgloss.Style
	NormalStyle   lipgloss.Style
	MarkStyle     lipgloss.Style
	TitleStyle    lipgloss.Style
}

// NewEntryList creates a new entry list
func NewEntryList(height, width int) EntryList {
	return EntryList{
		Items:  make([]jumptrack.Entry, 0),
		Height: height,
		Width:  width,
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
		NormalStyle: lipgloss.NewStyle().
			Padding(0, 1),
		MarkStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
	}
}

// SetItems replaces the list items and selects the first one
func (l *EntryList) SetItems(items []jumptrack.Entry) {
	l.Items = items
	l.Selected = 0
	l.Offset = 0
}

// Update handles paging keys
func (l EntryList) Update(msg tea.Msg) (EntryList, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyPgUp:
			l.PageUp()
		case tea.KeyPgDown:
			l.PageDown()
		}
	}
	return l, nil
}

// MoveUp moves selection up
func (l *EntryList) MoveUp() {
	if l.Selected > 0 {
		l.Selected--
		l.ensureVisible()
	}
}

// MoveDown moves selection down
func (l *EntryList) MoveDown() {
	if l.Selected < len(l.Items)-1 {
		l.Selected++
		l.ensureVisible()
	}
}

// PageUp moves selection up by a page
func (l *EntryList) PageUp() {
	l.Selected -= l.visibleHeight()
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

// PageDown moves selection down by a page
func (l *EntryList) PageDown() {
	l.Selected += l.visibleHeight()
	if l.Selected >= len(l.Items) {
		l.Selected = len(l.Items) - 1
	}
	if l.Selected < 0 {
		l.Selected = 0
	}
	l.ensureVisible()
}

func (l *EntryList) visibleHeight() int {
	h := l.Height - 2 // title and counter
	if h < 1 {
		h = 1
	}
	return h
}

// ensureVisible scrolls so the selected item is on screen
func (l *EntryList) ensureVisible() {
	visible := l.visibleHeight()
	if l.Selected < l.Offset {
		l.Offset = l.Selected
	} else if l.Selected >= l.Offset+visible {
		l.Offset = l.Selected - visible + 1
	}
}

// SelectedItem returns the selected entry
func (l *EntryList) SelectedItem() (jumptrack.Entry, bool) {
	if l.Selected >= 0 && l.Selected < len(l.Items) {
		return l.Items[l.Selected], true
	}
	return jumptrack.Entry{}, false
}

// View renders the entry list
func (l EntryList) View() string {
	var sb strings.Builder

	if l.Title != "" {
		sb.WriteString(l.TitleStyle.Render(l.Title))
		sb.WriteString("\n")
	}

	if len(l.Items) == 0 {
		sb.WriteString(l.NormalStyle.Render("No matching tracks"))
		return sb.String()
	}

	visible := l.visibleHeight()
	end := l.Offset + visible
	if end > len(l.Items) {
		end = len(l.Items)
	}

	for i := l.Offset; i < end; i++ {
		entry := l.Items[i]
		mark := " "
		if l.Marked != nil && l.Marked(entry) {
			mark = l.MarkStyle.Render("Q")
		}
		line := fmt.Sprintf("%4d %s", entry.Position, truncate(entry.Description, l.Width-10))

		if i == l.Selected {
			sb.WriteString(mark + l.SelectedStyle.Render(line))
		} else {
			sb.WriteString(mark + l.NormalStyle.Render(line))
		}
		if i < end-1 {
			sb.WriteString("\n")
		}
	}

	if len(l.Items) > visible {
		sb.WriteString("\n")
		sb.WriteString(l.NormalStyle.Render(fmt.Sprintf("  [%d/%d]", l.Selected+1, len(l.Items))))
	}

	return sb.String()
}

// truncate shortens s to at most maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen < 4 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
