package models

// Document is a unit of source content loaded during ingestion. It is never
// persisted itself; only its chunks are.
type Document struct {
	// ID identifies the document by its origin, e.g. the file path
	// relative to the ingestion root.
	ID string

	// Text is the full raw text of the document.
	Text string

	// Metadata carries origin information (e.g. "source") that is
	// inherited by every chunk produced from this document.
	Metadata map[string]interface{}
}

// Chunk is a contiguous slice of a document's text, sized for embedding and
// retrieval. Every chunk except possibly the last one of a document is at
// most the configured chunk size; consecutive chunks from the same document
// overlap by the configured overlap amount.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Ordinal is the position of the chunk within its document, starting at 0.
	Ordinal int

	// Metadata is inherited from the source document.
	Metadata map[string]interface{}
}
