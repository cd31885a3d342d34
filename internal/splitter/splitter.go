// Package splitter partitions a markdown document into heading-delimited
// chunks. Lines inside fenced code blocks never start a chunk, so shell
// comments and similar `#` lines in code stay with their section.
//
// The split is lossless: Join(Split(doc)) == doc for every input.
package splitter

import "strings"

const (
	headingPrefix = "#"
	fenceMarker   = "```"
)

// Chunk is one translation unit. It owns a copy of its text.
type Chunk struct {
	Index int
	Text  string
}

// Heading returns the first line of the chunk when it is a heading.
func (c Chunk) Heading() string {
	first, _, _ := strings.Cut(c.Text, "\n")
	if strings.HasPrefix(first, headingPrefix) {
		return strings.TrimRight(first, "\r")
	}
	return ""
}

// Split scans text line by line. A fence line (trimmed content starting with
// three backticks) toggles the in-code state; an unclosed fence keeps that
// state until the end of the document.
func Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	var chunks []Chunk
	var current []string
	inCode := false

	flush := func() {
		chunks = append(chunks, Chunk{Index: len(chunks), Text: strings.Join(current, "\n")})
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), fenceMarker) {
			inCode = !inCode
		}
		if strings.HasPrefix(line, headingPrefix) && !inCode && len(current) > 0 {
			flush()
		}
		current = append(current, line)
	}
	flush()

	return chunks
}

// Join concatenates chunk texts with the newline Split removed.
func Join(chunks []Chunk) string {
	return strings.Join(Texts(chunks), "\n")
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
