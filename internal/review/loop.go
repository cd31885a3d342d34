package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/glossmd/internal/highlight"
	"codeberg.org/snonux/glossmd/internal/session"
)

const helpText = `Commands:
  list              list chunks
  show <n>          show source and translation of chunk n
  edit <n>          open chunk n in the editor (again to revise the draft)
  done <n>          accept the draft of chunk n
  preview           print the document as it would be saved
  save [path]       write the document
  quit              leave (twice to discard unsaved changes)
  help              show this help`

// Config configures a review Loop.
type Config struct {
	In  io.Reader
	Out io.Writer
	// Editor defaults to ExternalEditor.
	Editor Editor
	// OutputPath is used by "save" without an argument and when input ends
	// with unsaved changes.
	OutputPath string
	// Unsaved marks a session that was never written, such as a fresh
	// translation.
	Unsaved bool
	// SourceTerms are highlighted on the source side, TargetTerms on the
	// translation side.
	SourceTerms []string
	TargetTerms []string
	// Marker defaults to highlight.ANSIMarker.
	Marker highlight.Marker
	Logger *zap.Logger
}

// Loop drives a session from text commands.
type Loop struct {
	session *session.Session
	config  Config

	source *highlight.Highlighter
	target *highlight.Highlighter

	dirty       bool
	quitPending bool
}

// New creates a review loop over s.
func New(s *session.Session, config Config) *Loop {
	if config.Editor == nil {
		config.Editor = ExternalEditor()
	}
	if config.Marker == nil {
		config.Marker = highlight.ANSIMarker
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Loop{
		session: s,
		config:  config,
		source:  highlight.New(config.SourceTerms, config.Marker),
		target:  highlight.New(config.TargetTerms, config.Marker),
		dirty:   config.Unsaved,
	}
}

// Run reads commands until quit, end of input or context cancellation.
// Save failures are reported and the loop continues so the user can retry.
// Unsaved changes are written to OutputPath when input ends.
func (l *Loop) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(l.config.In)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	l.printf("%d chunks loaded. Type 'help' for commands.\n", l.session.Len())
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.printf("review> ")
		if !scanner.Scan() {
			l.printf("\n")
			if err := scanner.Err(); err != nil {
				return err
			}
			return l.endOfInput()
		}

		quit, err := l.execute(strings.TrimSpace(scanner.Text()))
		if err != nil {
			l.printf("Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Dirty reports whether accepted edits have not been saved.
func (l *Loop) Dirty() bool {
	return l.dirty
}

func (l *Loop) execute(line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	if cmd != "quit" && cmd != "q" {
		l.quitPending = false
	}

	switch cmd {
	case "help", "h", "?":
		l.printf("%s\n", helpText)
	case "list", "l", "ls":
		l.list()
	case "show", "s":
		i, err := l.index(arg)
		if err != nil {
			return false, err
		}
		return false, l.show(i)
	case "edit", "e":
		i, err := l.index(arg)
		if err != nil {
			return false, err
		}
		return false, l.edit(i)
	case "done", "d":
		i, err := l.index(arg)
		if err != nil {
			return false, err
		}
		if err := l.session.Done(i); err != nil {
			return false, err
		}
		l.dirty = true
		l.printf("Chunk %d accepted.\n", i+1)
	case "preview", "p":
		l.printf("%s\n", l.session.Content())
	case "save", "w":
		return false, l.save(arg)
	case "quit", "q":
		return l.quit(), nil
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return false, nil
}

func (l *Loop) list() {
	for i := 0; i < l.session.Len(); i++ {
		c, _ := l.session.Chunk(i)
		flag := " "
		switch {
		case c.Mode == session.Editing:
			flag = "E"
		case c.Modified():
			flag = "*"
		}
		l.printf("%3d %s %s\n", i+1, flag, title(c.Source))
	}
}

func (l *Loop) show(i int) error {
	c, err := l.session.Chunk(i)
	if err != nil {
		return err
	}
	l.printf("--- source %d ---\n%s\n", i+1, l.source.Apply(c.Source))
	l.printf("--- translation %d (%s) ---\n%s\n", i+1, c.Mode, l.target.Apply(c.Edited))
	if c.Mode == session.Editing {
		l.printf("--- draft %d ---\n%s\n", i+1, l.target.Apply(c.Draft()))
	}
	return nil
}

func (l *Loop) edit(i int) error {
	c, err := l.session.Chunk(i)
	if err != nil {
		return err
	}
	if c.Mode == session.Viewing {
		if err := l.session.Edit(i); err != nil {
			return err
		}
		c, _ = l.session.Chunk(i)
	}

	text, err := l.config.Editor(c.Draft())
	if err != nil {
		return err
	}
	if err := l.session.SetDraft(i, strings.TrimSuffix(text, "\n")); err != nil {
		return err
	}
	l.printf("Draft of chunk %d updated; 'done %d' to accept.\n", i+1, i+1)
	return nil
}

func (l *Loop) save(path string) error {
	if path == "" {
		path = l.config.OutputPath
	}
	if path == "" {
		return errors.New("no output path; use 'save <path>'")
	}
	if open := l.session.Editing(); len(open) > 0 {
		l.printf("Note: %d chunk(s) still being edited; their drafts are not saved.\n", len(open))
	}
	if err := l.session.Save(path); err != nil {
		l.config.Logger.Error("save failed", zap.String("path", path), zap.Error(err))
		return err
	}
	l.dirty = false
	l.printf("Saved to %s\n", path)
	return nil
}

func (l *Loop) quit() bool {
	if (l.dirty || len(l.session.Editing()) > 0) && !l.quitPending {
		l.quitPending = true
		l.printf("Unsaved changes. Type 'quit' again to discard them.\n")
		return false
	}
	return true
}

func (l *Loop) endOfInput() error {
	if !l.dirty || l.config.OutputPath == "" {
		return nil
	}
	l.printf("End of input, saving unsaved changes.\n")
	return l.save("")
}

func (l *Loop) index(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("expected a chunk number, got %q", arg)
	}
	if n < 1 || n > l.session.Len() {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", session.ErrChunkIndex, n, l.session.Len())
	}
	return n - 1, nil
}

func (l *Loop) printf(format string, args ...any) {
	fmt.Fprintf(l.config.Out, format, args...)
}

// title is the first non-blank line of a chunk, shortened for listings.
func title(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r := []rune(line); len(r) > 60 {
			return string(r[:57]) + "..."
		}
		return line
	}
	return "(blank)"
}
