package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Project is a temporary working directory with the files a translation run needs.
type Project struct {
	Dir      string
	Source   string
	Prompt   string
	Glossary string
	Output   string
}

// DefaultPrompt is a minimal template whose rendering is just the source text.
const DefaultPrompt = "{source}"

// DefaultGlossary is a small glossary with a single and a multi target entry.
const DefaultGlossary = `[
  {"source": "AI", "target": "인공지능"},
  {"source": "model", "target": ["모델", "모형"]}
]`

// CreateTestProject lays out source, prompt and glossary files in a temp dir.
// Empty prompt or glossary arguments use the defaults above.
func CreateTestProject(t *testing.T, source, prompt, glossary string) Project {
	t.Helper()

	if prompt == "" {
		prompt = DefaultPrompt
	}
	if glossary == "" {
		glossary = DefaultGlossary
	}

	dir := t.TempDir()
	p := Project{
		Dir:      dir,
		Source:   filepath.Join(dir, "source_docs", "doc.md"),
		Prompt:   filepath.Join(dir, "prompts", "nmt.yaml"),
		Glossary: filepath.Join(dir, "glossary", "glossary.json"),
		Output:   filepath.Join(dir, "output", "nested", "doc_ko.md"),
	}

	CreateTestFile(t, p.Source, []byte(source))
	CreateTestFile(t, p.Prompt, []byte(prompt))
	CreateTestFile(t, p.Glossary, []byte(glossary))

	return p
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}
