package domain

import "time"

// VectorPoint is the unit stored in a collection. ID is distinct from the
// chunk ID so repeated uploads of identical text never collide; writing a
// point with an existing ID overwrites it.
type VectorPoint struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// Payload is the structured data stored alongside each vector.
type Payload struct {
	DocumentID string        `json:"documentId"`
	ChunkID    string        `json:"chunkId"`
	Content    string        `json:"content"`
	Metadata   ChunkMetadata `json:"metadata"`
	Document   DocumentInfo  `json:"document"`
}

// ChunkMetadata describes the chunk within its document.
type ChunkMetadata struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	ChunkIndex      int    `json:"chunkIndex"`
	WordCount       int    `json:"wordCount"`
	StartWordOffset int    `json:"startWordOffset"`
	EndWordOffset   int    `json:"endWordOffset"`
	FolderID        string `json:"folderId,omitempty"`
}

// DocumentInfo is the per-document part of a payload.
type DocumentInfo struct {
	OriginalName    string `json:"originalName"`
	FileType        string `json:"fileType"`
	UploadedAt      string `json:"uploadedAt"`
	FileSize        int64  `json:"fileSize"`
	OwnerID         string `json:"ownerId"`
	IsAdminDocument bool   `json:"isAdminDocument"`
}

// Payload field paths used by filters and indexes.
const (
	FieldDocumentID = "documentId"
	FieldCategory   = "metadata.category"
	FieldChunkIndex = "metadata.chunkIndex"
	FieldFolderID   = "metadata.folderId"
	FieldFileType   = "document.fileType"
)

// NewPayload builds the payload for one chunk of doc.
func NewPayload(doc *Document, chunk Chunk) Payload {
	return Payload{
		DocumentID: doc.ID,
		ChunkID:    chunk.ID,
		Content:    chunk.Content,
		Metadata: ChunkMetadata{
			Title:           doc.Title,
			Category:        doc.Category,
			ChunkIndex:      chunk.Index,
			WordCount:       chunk.WordCount,
			StartWordOffset: chunk.StartWordOffset,
			EndWordOffset:   chunk.EndWordOffset,
			FolderID:        doc.FolderID,
		},
		Document: DocumentInfo{
			OriginalName:    doc.OriginalName,
			FileType:        doc.MediaType,
			UploadedAt:      doc.UploadedAt.UTC().Format(time.RFC3339),
			FileSize:        doc.ByteSize,
			OwnerID:         doc.OwnerID,
			IsAdminDocument: doc.IsAdmin,
		},
	}
}

// Map converts the payload to the nested map form vector stores persist.
// Integers are int64 so every store client accepts them.
func (p Payload) Map() map[string]any {
	metadata := map[string]any{
		"title":           p.Metadata.Title,
		"category":        p.Metadata.Category,
		"chunkIndex":      int64(p.Metadata.ChunkIndex),
		"wordCount":       int64(p.Metadata.WordCount),
		"startWordOffset": int64(p.Metadata.StartWordOffset),
		"endWordOffset":   int64(p.Metadata.EndWordOffset),
	}
	if p.Metadata.FolderID != "" {
		metadata["folderId"] = p.Metadata.FolderID
	}
	return map[string]any{
		"documentId": p.DocumentID,
		"chunkId":    p.ChunkID,
		"content":    p.Content,
		"metadata":   metadata,
		"document": map[string]any{
			"originalName":    p.Document.OriginalName,
			"fileType":        p.Document.FileType,
			"uploadedAt":      p.Document.UploadedAt,
			"fileSize":        p.Document.FileSize,
			"ownerId":         p.Document.OwnerID,
			"isAdminDocument": p.Document.IsAdminDocument,
		},
	}
}

// PayloadFromMap is the inverse of Payload.Map. Missing or mistyped fields
// are left at their zero value; numbers may arrive as any numeric kind.
func PayloadFromMap(m map[string]any) Payload {
	p := Payload{
		DocumentID: stringField(m, "documentId"),
		ChunkID:    stringField(m, "chunkId"),
		Content:    stringField(m, "content"),
	}
	if md, ok := m["metadata"].(map[string]any); ok {
		p.Metadata = ChunkMetadata{
			Title:           stringField(md, "title"),
			Category:        stringField(md, "category"),
			ChunkIndex:      int(intField(md, "chunkIndex")),
			WordCount:       int(intField(md, "wordCount")),
			StartWordOffset: int(intField(md, "startWordOffset")),
			EndWordOffset:   int(intField(md, "endWordOffset")),
			FolderID:        stringField(md, "folderId"),
		}
	}
	if doc, ok := m["document"].(map[string]any); ok {
		p.Document = DocumentInfo{
			OriginalName:    stringField(doc, "originalName"),
			FileType:        stringField(doc, "fileType"),
			UploadedAt:      stringField(doc, "uploadedAt"),
			FileSize:        intField(doc, "fileSize"),
			OwnerID:         stringField(doc, "ownerId"),
			IsAdminDocument: boolField(doc, "isAdminDocument"),
		}
	}
	return p
}

// PayloadValue resolves a dotted field path such as "metadata.folderId"
// against the map form of a payload.
func PayloadValue(m map[string]any, path string) (any, bool) {
	var cur any = m
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[path[start:i]]
		if !ok {
			return nil, false
		}
		start = i + 1
	}
	return cur, true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func intField(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
