package api

import "time"

type Track struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Artist     string        `json:"artist"`
	Album      string        `json:"album"`
	Duration   time.Duration `json:"duration"`
	FilePath   string        `json:"file_path"`
	Genre      string        `json:"genre"`
	Year       int           `json:"year"`
	TrackNum   int           `json:"track_number"`
	Format     string        `json:"format,omitempty"`
	SampleRate int           `json:"sample_rate,omitempty"`
	Channels   int           `json:"channels,omitempty"`
	CoverArt   []byte        `json:"-"`
	CreatedAt  time.Time     `json:"created_at"`
}

type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	URI         string    `json:"uri"`
	Tracks      []Track   `json:"tracks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RepeatMode controls how a queue advances past its ends.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatAll
	RepeatOne
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "none"
	}
}

// EventType identifies what happened in a jump-to-track session
type EventType int

const (
	EventJumped EventType = iota
	EventQueueToggled
	EventCloseOnJumpToggled
	EventCancelled
)

func (t EventType) String() string {
	switch t {
	case EventJumped:
		return "jumped"
	case EventQueueToggled:
		return "queue_toggled"
	case EventCloseOnJumpToggled:
		return "close_on_jump_toggled"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// SessionEvent is published by the jump-to-track session
type SessionEvent struct {
	Type        EventType
	Position    int // 1-based playlist position, 0 when not applicable
	Track       *Track
	Queued      bool
	CloseOnJump bool
	Time        time.Time
}
