// Package session holds the reviewable state of one translation run: for
// every chunk its source, the engine's original translation and the user's
// edited text, plus a Viewing/Editing mode.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/glossmd/internal/apperr"
	"codeberg.org/snonux/glossmd/internal/engine"
)

// Mode is the review state of a single chunk.
type Mode int

const (
	Viewing Mode = iota
	Editing
)

func (m Mode) String() string {
	switch m {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

var (
	// ErrInvalidTransition is returned for an operation the chunk's mode does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrChunkIndex is returned for an index outside the session.
	ErrChunkIndex = errors.New("chunk index out of range")
)

// ChunkState is the per-chunk review record.
type ChunkState struct {
	Source   string
	Original string
	Edited   string
	Mode     Mode

	draft string
}

// Draft returns the in-progress edit. It is empty unless Mode is Editing.
func (c ChunkState) Draft() string {
	return c.draft
}

// Modified reports whether the accepted text differs from the engine output.
func (c ChunkState) Modified() bool {
	return c.Edited != c.Original
}

// Session is owned by a single goroutine.
type Session struct {
	chunks []ChunkState
}

// New creates a session from engine results.
func New(results []engine.Result) *Session {
	s := &Session{}
	s.Reset(results)
	return s
}

// FromTexts opens a session over an already translated document. The shorter
// list is padded with empty strings.
func FromTexts(sources, translations []string) *Session {
	n := max(len(sources), len(translations))
	chunks := make([]ChunkState, n)
	for i := range chunks {
		if i < len(sources) {
			chunks[i].Source = sources[i]
		}
		if i < len(translations) {
			chunks[i].Original = translations[i]
			chunks[i].Edited = translations[i]
		}
	}
	return &Session{chunks: chunks}
}

// Reset discards every chunk state and starts over from a new run's results.
func (s *Session) Reset(results []engine.Result) {
	chunks := make([]ChunkState, len(results))
	for i, r := range results {
		chunks[i] = ChunkState{
			Source:   r.Source,
			Original: r.Text,
			Edited:   r.Text,
		}
	}
	s.chunks = chunks
}

// Len returns the number of chunks.
func (s *Session) Len() int {
	return len(s.chunks)
}

// Chunk returns a copy of the state of chunk i.
func (s *Session) Chunk(i int) (ChunkState, error) {
	if err := s.check(i); err != nil {
		return ChunkState{}, err
	}
	return s.chunks[i], nil
}

// Edit moves chunk i from Viewing to Editing, seeding the draft with the
// accepted text.
func (s *Session) Edit(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	c := &s.chunks[i]
	if c.Mode != Viewing {
		return fmt.Errorf("edit chunk %d while %s: %w", i+1, c.Mode, ErrInvalidTransition)
	}
	c.Mode = Editing
	c.draft = c.Edited
	return nil
}

// SetDraft replaces the draft of a chunk being edited.
func (s *Session) SetDraft(i int, text string) error {
	if err := s.check(i); err != nil {
		return err
	}
	c := &s.chunks[i]
	if c.Mode != Editing {
		return fmt.Errorf("set draft of chunk %d while %s: %w", i+1, c.Mode, ErrInvalidTransition)
	}
	c.draft = text
	return nil
}

// Done accepts the draft of chunk i and returns it to Viewing.
func (s *Session) Done(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	c := &s.chunks[i]
	if c.Mode != Editing {
		return fmt.Errorf("finish chunk %d while %s: %w", i+1, c.Mode, ErrInvalidTransition)
	}
	c.Edited = c.draft
	c.draft = ""
	c.Mode = Viewing
	return nil
}

// Editing returns the indices of chunks with an open draft.
func (s *Session) Editing() []int {
	var open []int
	for i, c := range s.chunks {
		if c.Mode == Editing {
			open = append(open, i)
		}
	}
	return open
}

// Content joins the accepted text of every chunk with newlines. Open drafts
// are not included.
func (s *Session) Content() string {
	texts := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		texts[i] = c.Edited
	}
	return strings.Join(texts, "\n")
}

// Save writes Content to path, creating parent directories and overwriting
// an existing file. The session is unchanged, so a failed save can be retried.
func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &apperr.IOError{Op: "create directory for", Path: path, Err: err}
	}
	if err := os.WriteFile(path, []byte(s.Content()), 0644); err != nil {
		return &apperr.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (s *Session) check(i int) error {
	if i < 0 || i >= len(s.chunks) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrChunkIndex, i+1, len(s.chunks))
	}
	return nil
}
