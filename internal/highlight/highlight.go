// Package highlight marks glossary terms in a text span while leaving fenced
// code blocks and inline code spans untouched.
package highlight

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Marker decorates one matched term.
type Marker func(term string) string

// HTMLMarker renders the term as a bold blue span, suitable for markdown
// viewers that allow inline HTML.
func HTMLMarker(term string) string {
	return `<span style="color: blue; font-weight: bold;">` + term + `</span>`
}

// ANSIMarker renders the term bold blue on a terminal.
func ANSIMarker(term string) string {
	return "\x1b[1;34m" + term + "\x1b[0m"
}

// MarkdownMarker renders the term in markdown bold.
func MarkdownMarker(term string) string {
	return "**" + term + "**"
}

// MarkerByName maps a configuration value to a Marker. Unknown names fall
// back to ANSIMarker.
func MarkerByName(name string) Marker {
	switch strings.ToLower(name) {
	case "html":
		return HTMLMarker
	case "markdown", "md":
		return MarkdownMarker
	case "none":
		return func(term string) string { return term }
	default:
		return ANSIMarker
	}
}

// Highlighter holds a compiled term pattern.
type Highlighter struct {
	pattern *regexp.Regexp
	mark    Marker
}

// New compiles a highlighter for terms. Longer terms take precedence over
// their substrings; matching is case-insensitive.
func New(terms []string, mark Marker) *Highlighter {
	if mark == nil {
		mark = HTMLMarker
	}
	h := &Highlighter{mark: mark}

	cleaned := uniqueTerms(terms)
	if len(cleaned) == 0 {
		return h
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		return utf8.RuneCountInString(cleaned[i]) > utf8.RuneCountInString(cleaned[j])
	})

	alternatives := make([]string, len(cleaned))
	for i, term := range cleaned {
		alternatives[i] = regexp.QuoteMeta(term)
	}
	h.pattern = regexp.MustCompile("(?is)(```.*?```|`.*?`|" + strings.Join(alternatives, "|") + ")")
	return h
}

// Apply returns text with every term occurrence outside code marked.
func (h *Highlighter) Apply(text string) string {
	if h.pattern == nil {
		return text
	}
	return h.pattern.ReplaceAllStringFunc(text, func(match string) string {
		if strings.HasPrefix(match, "`") {
			return match
		}
		return h.mark(match)
	})
}

// Highlight is a one-shot helper using HTMLMarker.
func Highlight(text string, terms []string) string {
	if len(terms) == 0 {
		return text
	}
	return New(terms, HTMLMarker).Apply(text)
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	var out []string
	for _, term := range terms {
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}
