// Package jumptrack filters a playlist down to the tracks matching a
// free-text query, as used by the jump-to-track session.
package jumptrack

import (
	"regexp"
	"strings"

	"github.com/jscyril/musicvfs/api"
	"github.com/rs/zerolog/log"
)

// Entry is one row of a filtered result.
type Entry struct {
	Position    int // 1-based position in the source playlist
	Description string
}

// Index returns the 0-based playlist index of the entry.
func (e Entry) Index() int {
	return e.Position - 1
}

// Describe returns the text a track is listed and matched under: its
// title, or the last path element of its location when untitled.
func Describe(t *api.Track) string {
	if t.Title != "" {
		return t.Title
	}
	if i := strings.LastIndexByte(t.FilePath, '/'); i >= 0 {
		return t.FilePath[i+1:]
	}
	return t.FilePath
}

// Filter holds the compiled words of a query.
type Filter struct {
	query string
	words []*regexp.Regexp
}

// Compile splits query on single spaces and compiles each word as a
// case-insensitive regular expression. Words that are not valid
// expressions are dropped. A filter with no words matches everything.
func Compile(query string) *Filter {
	f := &Filter{query: query}
	if query == "" {
		return f
	}
	for _, word := range strings.Split(query, " ") {
		re, err := regexp.Compile("(?i)" + word)
		if err != nil {
			log.Debug().Err(err).Str("word", word).Msg("ignoring filter word")
			continue
		}
		f.words = append(f.words, re)
	}
	return f
}

// Query returns the text the filter was compiled from.
func (f *Filter) Query() string {
	return f.query
}

// Match reports whether every word matches s.
func (f *Filter) Match(s string) bool {
	for _, re := range f.words {
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}

// Apply returns the matching tracks in playlist order.
func (f *Filter) Apply(tracks []*api.Track) []Entry {
	entries := make([]Entry, 0, len(tracks))
	for i, t := range tracks {
		desc := Describe(t)
		if f.Match(desc) {
			entries = append(entries, Entry{Position: i + 1, Description: desc})
		}
	}
	return entries
}
