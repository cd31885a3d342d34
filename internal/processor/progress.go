package processor

import (
	"fmt"
	"io"

	"codeberg.org/snonux/glossmd/internal/engine"
	"codeberg.org/snonux/glossmd/internal/splitter"
)

// cursor trails live streamed output.
const cursor = "▌"

// progress prints per-chunk status lines and, in live mode, the streamed
// text of the current chunk.
type progress struct {
	out   io.Writer
	total int
	live  bool
	shown int
}

func newProgress(out io.Writer, total int, live bool) *progress {
	return &progress{out: out, total: total, live: live}
}

func (p *progress) observer() engine.Observer {
	return engine.Observer{
		OnStart:   p.start,
		OnPartial: p.partial,
		OnResult:  p.result,
	}
}

func (p *progress) start(c splitter.Chunk) {
	fmt.Fprintf(p.out, "Translating %d/%d: %s\n", c.Index+1, p.total, chunkLabel(c))
	p.shown = 0
}

func (p *progress) partial(_ splitter.Chunk, text string) {
	if !p.live || len(text) < p.shown {
		return
	}
	if p.shown > 0 {
		// step back over the cursor
		fmt.Fprint(p.out, "\b")
	}
	fmt.Fprint(p.out, text[p.shown:]+cursor)
	p.shown = len(text)
}

func (p *progress) result(r engine.Result) {
	if p.live && p.shown > 0 {
		fmt.Fprint(p.out, "\b \b\n")
	}
	p.shown = 0

	switch {
	case r.Err != nil:
		fmt.Fprintf(p.out, "  ✗ %v\n", r.Err)
	case r.Cached:
		fmt.Fprintf(p.out, "  ✓ from translation memory\n")
	default:
		fmt.Fprintf(p.out, "  ✓ done\n")
	}
}
