package models

// StoredRecord is the persisted union of a chunk, its embedding and its
// metadata, addressed by a store-assigned identifier. Records are written
// once during ingestion and only read afterwards.
type StoredRecord struct {
	ID        int64
	Content   string
	Metadata  map[string]interface{}
	Embedding []float32
}

// Match is one similarity-search result: a stored record plus its cosine
// similarity score in [0,1], higher meaning more similar. Matches are
// transient, produced per query.
type Match struct {
	ID       int64
	Content  string
	Metadata map[string]interface{}
	Score    float64
}
