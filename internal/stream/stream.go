// Package stream implements the chat response wire format: a sequence of
// newline-terminated frames multiplexing one metadata frame (the citation
// sources) and any number of text-delta frames over a single byte stream.
//
// Frame layout:
//
//	d:{"sources":[{"content":"...","metadata":{...}}]}\n
//	0:"a text delta with \"quotes\" escaped"\n
//
// The metadata frame is always first and appears exactly once. Inside a
// delta frame only the double-quote character is escaped (as \"); no other
// character is, so a delta containing a raw newline is not representable.
// Stream closure is the sole end-of-response signal.
package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tuitshoxrux/copilot/models"
)

// Source is one citation entry in the metadata frame.
type Source struct {
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata"`
}

type sourcesPayload struct {
	Sources []Source `json:"sources"`
}

// Encoder serializes frames onto a byte stream. When the underlying writer
// implements http.Flusher every frame is flushed as soon as it is written,
// so clients can render partial output.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher
}

// NewEncoder wraps a writer for frame output.
func NewEncoder(w io.Writer) *Encoder {
	flusher, _ := w.(http.Flusher)
	return &Encoder{w: w, flusher: flusher}
}

// WriteSources writes the single metadata frame. It must be called before
// any delta frame.
func (e *Encoder) WriteSources(matches []models.Match) error {
	payload := sourcesPayload{Sources: make([]Source, len(matches))}
	for i, m := range matches {
		meta := m.Metadata
		if meta == nil {
			meta = map[string]interface{}{}
		}
		payload.Sources[i] = Source{Content: m.Content, Metadata: meta}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sources frame: %w", err)
	}
	if _, err := fmt.Fprintf(e.w, "d:%s\n", data); err != nil {
		return err
	}
	e.flush()
	return nil
}

// WriteDelta writes one text-delta frame, escaping literal double quotes.
func (e *Encoder) WriteDelta(delta string) error {
	escaped := strings.ReplaceAll(delta, `"`, `\"`)
	if _, err := fmt.Fprintf(e.w, "0:\"%s\"\n", escaped); err != nil {
		return err
	}
	e.flush()
	return nil
}

func (e *Encoder) flush() {
	if e.flusher != nil {
		e.flusher.Flush()
	}
}

// Response is the demultiplexed form of an encoded stream.
type Response struct {
	Sources []Source
	Deltas  []string
}

// Text concatenates the deltas into the full generated answer.
func (r *Response) Text() string {
	return strings.Join(r.Deltas, "")
}

// Decode reads frames until EOF and demultiplexes them back into the source
// list and the ordered delta sequence.
func Decode(r io.Reader) (*Response, error) {
	out := &Response{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	seenSources := false

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "d:"):
			if seenSources {
				return nil, fmt.Errorf("duplicate sources frame")
			}
			var payload sourcesPayload
			if err := json.Unmarshal([]byte(line[2:]), &payload); err != nil {
				return nil, fmt.Errorf("decode sources frame: %w", err)
			}
			out.Sources = payload.Sources
			seenSources = true
		case strings.HasPrefix(line, "0:"):
			if !seenSources {
				return nil, fmt.Errorf("delta frame before sources frame")
			}
			body := line[2:]
			if len(body) < 2 || !strings.HasPrefix(body, `"`) || !strings.HasSuffix(body, `"`) {
				return nil, fmt.Errorf("malformed delta frame: %s", line)
			}
			out.Deltas = append(out.Deltas, strings.ReplaceAll(body[1:len(body)-1], `\"`, `"`))
		case line == "":
			// tolerated trailing blank line
		default:
			return nil, fmt.Errorf("unknown frame tag: %s", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
