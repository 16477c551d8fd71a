// Package ui implements the terminal jump-to-track session.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jscyril/musicvfs/api"
	"github.com/jscyril/musicvfs/internal/config"
	"github.com/jscyril/musicvfs/internal/jumptrack"
	"github.com/jscyril/musicvfs/internal/playlist"
	"github.com/jscyril/musicvfs/internal/ui/components"
	"github.com/jscyril/musicvfs/pkg/events"
)

// Result is the outcome of a session
type Result struct {
	Jumped    bool
	Cancelled bool
	Position  int // 1-based position of the last jump
	Track     *api.Track
}

// Session is a jump-to-track session over a queue. The caller owns it;
// nothing about it is global, so several sessions may exist at once.
type Session struct {
	queue       *playlist.Queue
	keys        config.KeyMap
	bus         *events.EventBus
	closeOnJump bool

	width  int
	height int

	input  components.SearchInput
	list   components.EntryList
	filter *jumptrack.Filter
	status string
	result Result
	done   bool

	headerStyle lipgloss.Style
	statusStyle lipgloss.Style
	helpStyle   lipgloss.Style
}

// NewSession creates a session listing every track of q. bus may be nil.
func NewSession(q *playlist.Queue, cfg config.JumpConfig, keys config.KeyMap, bus *events.EventBus) *Session {
	s := &Session{
		queue:       q,
		keys:        keys,
		bus:         bus,
		closeOnJump: cfg.CloseOnJump,
		input:       components.NewSearchInput(cfg.Width - 4),
		list:        components.NewEntryList(cfg.Height-8, cfg.Width),
		filter:      jumptrack.Compile(""),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
		statusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
	s.width, s.height = cfg.Width, cfg.Height
	s.input.Focus()
	s.list.Marked = func(e jumptrack.Entry) bool {
		return s.queue.IsQueued(e.Index())
	}
	s.refilter()
	return s
}

// Init implements tea.Model
func (s *Session) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *Session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *Session) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch {
	case key == s.keys.Cancel, msg.Type == tea.KeyCtrlC:
		s.result.Cancelled = true
		s.done = true
		s.publish(api.SessionEvent{Type: api.EventCancelled})
		return tea.Quit
	case key == s.keys.Jump:
		return s.jump()
	case key == s.keys.Queue:
		s.toggleQueued()
	case key == s.keys.CloseOnJump:
		s.closeOnJump = !s.closeOnJump
		s.publish(api.SessionEvent{Type: api.EventCloseOnJumpToggled, CloseOnJump: s.closeOnJump})
	case key == s.keys.Refresh:
		s.refilter()
		s.status = fmt.Sprintf("%d tracks", s.queue.Len())
	case key == s.keys.Up:
		s.list.MoveUp()
	case key == s.keys.Down:
		s.list.MoveDown()
	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		s.list, _ = s.list.Update(msg)
	default:
		before := s.input.Value()
		s.input, _ = s.input.Update(msg)
		if s.input.Value() != before {
			s.filter = jumptrack.Compile(s.input.Value())
			s.refilter()
		}
	}
	return nil
}

// refilter rebuilds the list from the queue and selects the first row
func (s *Session) refilter() {
	s.list.SetItems(s.filter.Apply(s.queue.GetAll()))
}

func (s *Session) jump() tea.Cmd {
	entry, ok := s.list.SelectedItem()
	if !ok {
		return nil
	}
	if err := s.queue.JumpTo(entry.Index()); err != nil {
		s.status = err.Error()
		return nil
	}

	track := s.queue.Current()
	s.result = Result{Jumped: true, Position: entry.Position, Track: track}
	s.publish(api.SessionEvent{Type: api.EventJumped, Position: entry.Position, Track: track})

	if s.closeOnJump {
		s.done = true
		return tea.Quit
	}
	s.status = fmt.Sprintf("Jumped to %d. %s", entry.Position, entry.Description)
	return nil
}

func (s *Session) toggleQueued() {
	entry, ok := s.list.SelectedItem()
	if !ok {
		return
	}
	queued, err := s.queue.ToggleQueued(entry.Index())
	if err != nil {
		s.status = err.Error()
		return
	}

	if queued {
		s.status = "Queued " + entry.Description
	} else {
		s.status = "Unqueued " + entry.Description
	}
	s.publish(api.SessionEvent{
		Type:     api.EventQueueToggled,
		Position: entry.Position,
		Track:    s.queue.GetAll()[entry.Index()],
		Queued:   queued,
	})
}

func (s *Session) publish(ev api.SessionEvent) {
	if s.bus == nil {
		return
	}
	ev.CloseOnJump = s.closeOnJump
	ev.Time = time.Now()
	s.bus.Publish(ev)
}

func (s *Session) resize(width, height int) {
	s.width, s.height = width, height
	s.input.Width = width - 4
	s.list.Width = width
	s.list.Height = height - 8
}

// View implements tea.Model
func (s *Session) View() string {
	if s.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(s.headerStyle.Render("Jump to Track"))
	sb.WriteString("\n")
	sb.WriteString(s.input.View())
	sb.WriteString("\n")
	sb.WriteString(s.list.View())
	sb.WriteString("\n\n")
	if s.status != "" {
		sb.WriteString(s.statusStyle.Render(s.status))
		sb.WriteString("\n")
	}
	sb.WriteString(s.helpStyle.Render(s.help()))
	return sb.String()
}

func (s *Session) help() string {
	queueLabel := "queue"
	if entry, ok := s.list.SelectedItem(); ok && s.queue.IsQueued(entry.Index()) {
		queueLabel = "unqueue"
	}
	closeMark := " "
	if s.closeOnJump {
		closeMark = "x"
	}
	return fmt.Sprintf("%s jump | %s %s | %s [%s] close on jump | %s refresh | %s cancel",
		s.keys.Jump, s.keys.Queue, queueLabel, s.keys.CloseOnJump, closeMark, s.keys.Refresh, s.keys.Cancel)
}

// Result returns the outcome so far
func (s *Session) Result() Result {
	return s.result
}

// CloseOnJump reports whether a jump ends the session
func (s *Session) CloseOnJump() bool {
	return s.closeOnJump
}

// Query returns the current filter text
func (s *Session) Query() string {
	return s.filter.Query()
}

// Entries returns the rows currently listed
func (s *Session) Entries() []jumptrack.Entry {
	return append([]jumptrack.Entry(nil), s.list.Items...)
}

// Run drives s on the terminal until it finishes or ctx is cancelled
func Run(ctx context.Context, s *Session) (Result, error) {
	p := tea.NewProgram(s, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return s.Result(), fmt.Errorf("run jump session: %w", err)
	}
	return s.Result(), nil
}
