package extract

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode/utf8"
)

const base64VLQ = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

type sourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// mappingWriter encodes version 3 mappings. Columns count UTF-16 units.
type mappingWriter struct {
	b           strings.Builder
	lineHasSeg  bool
	prevGenCol  int
	prevSrcLine int
	prevSrcCol  int
}

func (w *mappingWriter) segment(genCol, srcLine, srcCol int) {
	if w.lineHasSeg {
		w.b.WriteByte(',')
	}
	writeVLQ(&w.b, genCol-w.prevGenCol)
	writeVLQ(&w.b, 0)
	writeVLQ(&w.b, srcLine-w.prevSrcLine)
	writeVLQ(&w.b, srcCol-w.prevSrcCol)
	w.prevGenCol = genCol
	w.prevSrcLine = srcLine
	w.prevSrcCol = srcCol
	w.lineHasSeg = true
}

func (w *mappingWriter) newline() {
	w.b.WriteByte(';')
	w.prevGenCol = 0
	w.lineHasSeg = false
}

func writeVLQ(b *strings.Builder, n int) {
	v := n << 1
	if n < 0 {
		v = (-n << 1) | 1
	}
	for {
		digit := v & 31
		v >>= 5
		if v > 0 {
			digit |= 32
		}
		b.WriteByte(base64VLQ[digit])
		if v == 0 {
			return
		}
	}
}

// lineIndex converts byte offsets of the original source into line and
// UTF-16 column pairs.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{src: src, starts: starts}
}

func (li lineIndex) position(off int) (int, int) {
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > off }) - 1
	return line, utf16Len(li.src[li.starts[line]:off])
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}

// buildSourceMap maps every output line start and every chunk boundary
// back to the original source.
func buildSourceMap(chunks []chunk, src []byte, fileName, outName string) (string, error) {
	li := newLineIndex(src)
	w := &mappingWriter{}
	genCol := 0

	for _, c := range chunks {
		srcLine, srcCol := li.position(int(c.origStart))
		w.segment(genCol, srcLine, srcCol)
		off := int(c.origStart)
		for i := 0; i < len(c.text); {
			r, size := utf8.DecodeRuneInString(c.text[i:])
			i += size
			off += size
			if r == '\n' {
				w.newline()
				genCol = 0
				if i < len(c.text) {
					if c.verbatim {
						srcLine, srcCol = li.position(off)
					}
					w.segment(0, srcLine, srcCol)
				}
				continue
			}
			if r >= 0x10000 {
				genCol += 2
			} else {
				genCol++
			}
		}
	}

	out, err := json.Marshal(sourceMap{
		Version:        3,
		File:           outName,
		Sources:        []string{fileName},
		SourcesContent: []string{string(src)},
		Names:          []string{},
		Mappings:       w.b.String(),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
