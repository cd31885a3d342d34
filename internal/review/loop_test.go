package review

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/glossmd/internal/highlight"
	"codeberg.org/snonux/glossmd/internal/session"
	"codeberg.org/snonux/glossmd/internal/testutil"
)

func runLoop(t *testing.T, s *session.Session, input string, config Config) (*Loop, string) {
	t.Helper()

	var out bytes.Buffer
	config.In = strings.NewReader(input)
	config.Out = &out
	if config.Marker == nil {
		config.Marker = highlight.MarkdownMarker
	}

	loop := New(s, config)
	require.NoError(t, loop.Run(context.Background()))
	return loop, out.String()
}

func newSession() *session.Session {
	return session.FromTexts(
		[]string{"# Intro\nThe model is AI", "# Usage\nRun `model` now"},
		[]string{"# 소개\n모델은 인공지능", "# 사용법\n`model` 실행"},
	)
}

func TestLoop_EditDoneSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "doc_ko.md")
	var edited []string
	editor := func(initial string) (string, error) {
		edited = append(edited, initial)
		return "# 사용법\n지금 `model` 실행\n", nil
	}

	s := newSession()
	loop, out := runLoop(t, s, "edit 2\ndone 2\nsave\nquit\n", Config{
		Editor:     editor,
		OutputPath: path,
	})

	assert.Equal(t, []string{"# 사용법\n`model` 실행"}, edited)
	assert.Contains(t, out, "Chunk 2 accepted.")
	assert.Contains(t, out, "Saved to "+path)
	assert.False(t, loop.Dirty())
	testutil.AssertFileContent(t, path, []byte("# 소개\n모델은 인공지능\n# 사용법\n지금 `model` 실행"))
}

func TestLoop_ShowHighlightsBothSides(t *testing.T) {
	_, out := runLoop(t, newSession(), "show 2\nshow 1\n", Config{
		SourceTerms: []string{"model", "AI"},
		TargetTerms: []string{"인공지능", "모델"},
	})

	assert.Contains(t, out, "Run `model` now", "code spans stay untouched")
	assert.Contains(t, out, "The **model** is **AI**")
	assert.Contains(t, out, "**모델**은 **인공지능**")
}

func TestLoop_List(t *testing.T) {
	s := newSession()
	require.NoError(t, s.Edit(0))

	_, out := runLoop(t, s, "list\n", Config{})

	assert.Contains(t, out, "  1 E # Intro")
	assert.Contains(t, out, "  2   # Usage")
}

func TestLoop_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown command", "frobnicate\n", `unknown command "frobnicate"`},
		{"bad number", "show two\n", `expected a chunk number, got "two"`},
		{"out of range", "edit 9\n", "chunk index out of range"},
		{"done without edit", "done 1\n", "invalid state transition"},
		{"save without path", "save\n", "no output path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := runLoop(t, newSession(), tt.input, Config{})
			assert.Contains(t, out, "Error: ")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestLoop_SaveFailureCanBeRetried(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	testutil.CreateTestFile(t, blocker, []byte("x"))
	good := filepath.Join(dir, "good.md")

	_, out := runLoop(t, newSession(), "save "+filepath.Join(blocker, "a.md")+"\nsave "+good+"\n", Config{})

	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "Saved to "+good)
	testutil.AssertFileExists(t, good)
}

func TestLoop_EditorFailureKeepsEditing(t *testing.T) {
	s := newSession()
	_, out := runLoop(t, s, "edit 1\n", Config{
		Editor: func(string) (string, error) { return "", errors.New("editor crashed") },
	})

	assert.Contains(t, out, "editor crashed")
	c, err := s.Chunk(0)
	require.NoError(t, err)
	assert.Equal(t, session.Editing, c.Mode)
	assert.Equal(t, "# 소개\n모델은 인공지능", c.Edited)
}

func TestLoop_QuitWithUnsavedChanges(t *testing.T) {
	editor := func(string) (string, error) { return "changed", nil }

	loop, out := runLoop(t, newSession(), "edit 1\ndone 1\nquit\nquit\nlist\n", Config{Editor: editor})

	assert.Contains(t, out, "Unsaved changes.")
	assert.True(t, loop.Dirty())
	assert.NotContains(t, out, "  1 * # Intro", "loop must stop at the second quit")
}

func TestLoop_EndOfInputSavesUnsavedSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc_ko.md")

	loop, out := runLoop(t, newSession(), "list\n", Config{OutputPath: path, Unsaved: true})

	assert.Contains(t, out, "End of input, saving unsaved changes.")
	assert.False(t, loop.Dirty())
	testutil.AssertFileContent(t, path, []byte("# 소개\n모델은 인공지능\n# 사용법\n`model` 실행"))
}

func TestLoop_EndOfInputWithoutChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc_ko.md")

	_, out := runLoop(t, newSession(), "list\n", Config{OutputPath: path})

	assert.NotContains(t, out, "End of input")
	testutil.AssertFileNotExists(t, path)
}

func TestLoop_UnsavedSessionWarnsOnQuit(t *testing.T) {
	loop, out := runLoop(t, newSession(), "quit\nquit\n", Config{Unsaved: true})

	assert.Contains(t, out, "Unsaved changes.")
	assert.True(t, loop.Dirty())
}

func TestLoop_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	loop := New(newSession(), Config{In: strings.NewReader("list\n"), Out: &out})
	assert.ErrorIs(t, loop.Run(ctx), context.Canceled)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "# Intro", title("\n  # Intro\nbody"))
	assert.Equal(t, "(blank)", title(" \n"))
	assert.Equal(t, strings.Repeat("a", 57)+"...", title(strings.Repeat("a", 80)))
}
