package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/glossmd/internal/apperr"
)

// Job is one document to translate in batch mode.
type Job struct {
	Source string
	Output string
	// Line is the 1-based line of the job in its file.
	Line int
}

// ReadJobFile reads translation jobs from a file.
// Supported line formats:
//   - "docs/intro.md = out/intro_ko.md"  translate source into output
//   - "# comment"                         ignored
//   - blank lines                         ignored
//
// Relative paths are resolved against the directory of the job file.
func ReadJobFile(filename string) ([]Job, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &apperr.NotFoundError{Path: filename}
		}
		return nil, &apperr.IOError{Op: "read batch file", Path: filename, Err: err}
	}

	base := filepath.Dir(filename)
	var jobs []Job
	seen := make(map[string]int)

	for n, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		source, output, ok := strings.Cut(line, "=")
		source = strings.TrimSpace(source)
		output = strings.TrimSpace(output)
		if !ok || source == "" || output == "" {
			return nil, &apperr.ParseError{
				Path:   filename,
				Detail: fmt.Sprintf("line %d: expected \"source = output\", got %q", n+1, line),
			}
		}

		job := Job{
			Source: resolve(base, source),
			Output: resolve(base, output),
			Line:   n + 1,
		}
		if prev, dup := seen[job.Output]; dup {
			return nil, &apperr.ParseError{
				Path:   filename,
				Detail: fmt.Sprintf("line %d: output %s already written by line %d", n+1, output, prev),
			}
		}
		seen[job.Output] = job.Line
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Split(s, "\n")
}
