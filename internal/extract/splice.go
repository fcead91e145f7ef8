package extract

import (
	"sort"
	"strings"
)

// edit replaces src[start:end] with text. Insertions have start == end.
type edit struct {
	start, end uint32
	text       string
	seq        int
	consumed   bool
}

// editor collects replacements keyed by source position and splices them
// into a new text. The parse tree is never mutated.
type editor struct {
	src   []byte
	edits []*edit
}

func newEditor(src []byte) *editor {
	return &editor{src: src}
}

func (e *editor) replace(start, end uint32, text string) {
	e.edits = append(e.edits, &edit{start: start, end: end, text: text, seq: len(e.edits)})
}

func (e *editor) insert(at uint32, text string) {
	e.replace(at, at, text)
}

func (e *editor) pending(start, end uint32, inner bool) []*edit {
	var out []*edit
	for _, ed := range e.edits {
		if ed.consumed || ed.start < start || ed.end > end {
			continue
		}
		if inner && ed.start == ed.end && (ed.start == start || ed.start == end) {
			continue
		}
		out = append(out, ed)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].start != out[j].start {
			return out[i].start < out[j].start
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// slice returns src[start:end] with the edits inside it applied and marks
// those edits consumed, so text copied into a replacement carries the
// rewrites of nested elements.
func (e *editor) slice(start, end uint32) string {
	var b strings.Builder
	pos := start
	for _, ed := range e.pending(start, end, true) {
		if ed.start < pos {
			continue
		}
		b.Write(e.src[pos:ed.start])
		b.WriteString(ed.text)
		pos = ed.end
		ed.consumed = true
	}
	b.Write(e.src[pos:end])
	return b.String()
}

// chunk is a piece of the output. Verbatim chunks copy src[origStart:...];
// replacement chunks map back to the start of the text they replaced.
type chunk struct {
	text      string
	origStart uint32
	verbatim  bool
}

func (e *editor) chunks() []chunk {
	var out []chunk
	pos := uint32(0)
	for _, ed := range e.pending(0, uint32(len(e.src)), false) {
		if ed.start < pos {
			// overlaps an earlier replacement
			continue
		}
		if ed.start > pos {
			out = append(out, chunk{text: string(e.src[pos:ed.start]), origStart: pos, verbatim: true})
		}
		if ed.text != "" {
			out = append(out, chunk{text: ed.text, origStart: ed.start})
		}
		pos = ed.end
	}
	if int(pos) < len(e.src) {
		out = append(out, chunk{text: string(e.src[pos:]), origStart: pos, verbatim: true})
	}
	return out
}

func (e *editor) changed() bool {
	for _, ed := range e.edits {
		if !ed.consumed {
			return true
		}
	}
	return false
}

func joinChunks(chunks []chunk) string {
	var b strings.Builder
	for _, c := range chunks {
		b.WriteString(c.text)
	}
	return b.String()
}
