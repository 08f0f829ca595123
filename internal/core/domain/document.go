package domain

import "time"

// Document is one uploaded file instance. It is created when ingestion
// succeeds and is immutable afterwards.
type Document struct {
	// ID is generated at upload time.
	ID string `json:"documentId"`

	OriginalName string    `json:"originalName"`
	MediaType    string    `json:"fileType"`
	ByteSize     int64     `json:"fileSize"`
	UploadedAt   time.Time `json:"uploadedAt"`

	// OwnerID is the tenant that uploaded the document.
	OwnerID string `json:"ownerId"`

	// IsAdmin marks documents in the shared admin pool.
	IsAdmin bool `json:"isAdminDocument"`

	// FolderID is an opaque tag; it is not validated against the folder store.
	FolderID string `json:"folderId,omitempty"`

	Title          string `json:"title"`
	Category       string `json:"category"`
	CollectionName string `json:"collectionName"`
	ChunkCount     int    `json:"chunkCount"`
}

// Chunk is a contiguous word window of a document's extracted text.
type Chunk struct {
	ID string `json:"chunkId"`

	// Index is the 0-based position among emitted chunks.
	Index int `json:"chunkIndex"`

	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`

	// StartWordOffset and EndWordOffset delimit the window in the
	// document's word sequence; EndWordOffset is exclusive.
	StartWordOffset int `json:"startWordOffset"`
	EndWordOffset   int `json:"endWordOffset"`
}

// IngestRequest carries one uploaded file into the ingestion pipeline.
type IngestRequest struct {
	Content   []byte
	MediaType string
	Filename  string
	OwnerID   string
	IsAdmin   bool
	FolderID  string
}

// IngestResult reports what ingestion stored.
type IngestResult struct {
	DocumentID      string   `json:"documentId"`
	ChunksStored    int      `json:"chunksStored"`
	Filename        string   `json:"filename"`
	CollectionName  string   `json:"collectionName"`
	IsAdminDocument bool     `json:"isAdminDocument"`
	FailedIndexes   []string `json:"failedIndexes,omitempty"`
}
