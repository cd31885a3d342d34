package review

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Editor receives the current text of a chunk and returns the edited text.
type Editor func(initial string) (string, error)

// ExternalEditor opens the text in the editor named by $VISUAL or $EDITOR,
// falling back to vi.
func ExternalEditor() Editor {
	return func(initial string) (string, error) {
		editor := os.Getenv("VISUAL")
		if editor == "" {
			editor = os.Getenv("EDITOR")
		}
		if editor == "" {
			editor = "vi"
		}

		dir, err := os.MkdirTemp("", "glossmd-edit-*")
		if err != nil {
			return "", fmt.Errorf("failed to create temp dir: %w", err)
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "chunk.md")
		if err := os.WriteFile(path, []byte(initial), 0600); err != nil {
			return "", fmt.Errorf("failed to write temp file: %w", err)
		}

		// $EDITOR may carry arguments, e.g. "code --wait"
		fields := strings.Fields(editor)
		cmd := exec.Command(fields[0], append(fields[1:], path)...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("editor %s failed: %w", fields[0], err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read edited file: %w", err)
		}
		return string(data), nil
	}
}
