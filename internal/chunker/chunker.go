// Package chunker splits documents into overlapping fixed-size segments
// suitable for embedding and similarity retrieval.
package chunker

import (
	"strings"
	"unicode"

	"github.com/tuitshoxrux/copilot/models"
)

// Default splitting parameters.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunker splits a document's text into chunks of at most Size characters,
// with consecutive chunks from the same document sharing exactly Overlap
// characters. Splitting is deterministic and never fails: an empty document
// yields zero chunks, a document shorter than Size yields exactly one.
type Chunker struct {
	size     int
	overlap  int
	lookback int
}

// New creates a chunker. Non-positive size or overlap fall back to the
// defaults; overlap is clamped below size so every window advances.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		overlap = size / 2
	}
	lookback := size / 4
	if lookback < 1 {
		lookback = 1
	}
	return &Chunker{size: size, overlap: overlap, lookback: lookback}
}

// Split cuts the document text into ordered chunks. Each window prefers to
// end at the latest paragraph or sentence boundary within the look-back
// region; otherwise it is cut at exactly the window size. The next window
// starts Overlap characters before the previous window's end, so
// concatenating all chunks and dropping the first Overlap characters of
// every chunk but the first reproduces the document text exactly.
func (c *Chunker) Split(doc models.Document) []models.Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}

	text := []rune(doc.Text)
	if len(text) <= c.size {
		return []models.Chunk{{Text: doc.Text, Ordinal: 0, Metadata: doc.Metadata}}
	}

	var chunks []models.Chunk
	start := 0
	for {
		end := start + c.size
		last := end >= len(text)
		if last {
			end = len(text)
		} else {
			// A boundary cut is only taken when it still advances the
			// cursor past start+overlap; otherwise the windows would
			// stop making progress.
			if cut := c.boundaryCut(text, start, end); cut > start+c.overlap {
				end = cut
			}
		}

		chunks = append(chunks, models.Chunk{
			Text:     string(text[start:end]),
			Ordinal:  len(chunks),
			Metadata: doc.Metadata,
		})
		if end >= len(text) {
			return chunks
		}
		start = end - c.overlap
	}
}

// boundaryCut finds the latest paragraph break or sentence end inside the
// look-back region of the window [start, end). It returns the absolute cut
// position, or 0 when no boundary was found.
func (c *Chunker) boundaryCut(text []rune, start, end int) int {
	min := end - c.lookback
	if min < start+1 {
		min = start + 1
	}

	// Paragraph break: cut right after a blank line.
	for cut := end; cut >= min; cut-- {
		if cut >= 2 && text[cut-1] == '\n' && text[cut-2] == '\n' {
			return cut
		}
	}
	// Sentence end: cut after terminal punctuation followed by whitespace.
	for cut := end; cut >= min; cut-- {
		if isSentenceEnd(text[cut-1]) && cut < len(text) && unicode.IsSpace(text[cut]) {
			return cut
		}
	}
	return 0
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
