// Package models holds the types shared across the indexing pipeline and
// the retrieval path: the Chunk entity, collection metadata, and the
// process-lifetime pipeline statistics.
package models

// Chunk is the smallest retrievable unit produced by the chunker.
//
// ID is derived from (Path, byte-range, Revision) so that identical
// content at an identical position under the same revision collides
// deliberately: re-chunking an unchanged file produces the same IDs.
type Chunk struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	Symbol    string `json:"symbol,omitempty"`
	Revision  string `json:"revision"`
	ByteSize  int    `json:"byte_size"`
	Code      string `json:"code"`
	Summary   string `json:"summary,omitempty"`
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`

	// Embedding is populated only in-flight during the pipeline. It is
	// never part of a persisted payload or a retrieval response.
	Embedding []float32 `json:"-"`
}

// Payload is what gets attached to a vector-index point alongside its
// embedding. Branch defaults to the chunk's Revision unless the caller
// supplies an explicit branch label at upsert time.
type Payload struct {
	Path     string `json:"path"`
	Lang     string `json:"lang"`
	Rev      string `json:"rev"`
	Size     int    `json:"size"`
	Code     string `json:"code"`
	Branch   string `json:"branch"`
	Symbol   string `json:"symbol,omitempty"`
	Summary  string `json:"summary,omitempty"`
	ChunkID  string `json:"chunk_id"`
}

// CollectionMeta describes a named vector space: its dimension and
// distance metric. Name already carries the namespace prefix, if any.
type CollectionMeta struct {
	Name            string
	VectorDimension int
	DistanceMetric  string
}

const DistanceCosine = "cosine"

// PipelineStats are monotonic, process-lifetime counters.
type PipelineStats struct {
	FilesProcessed      uint64 `json:"files_processed"`
	ChunksCreated       uint64 `json:"chunks_created"`
	EmbeddingsGenerated uint64 `json:"embeddings_generated"`
	BytesProcessed      uint64 `json:"bytes_processed"`
	ErrorsEncountered   uint64 `json:"errors_encountered"`
}
