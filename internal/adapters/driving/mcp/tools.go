package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tala-knowledge/internal/core/domain"
)

const (
	defaultToolLimit = 5
	excerptLength    = 300
)

// SearchInput is the input schema for the search_travel_knowledge tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"search query, e.g. Japan visa requirements or United Airlines baggage policy"`
	Category string `json:"category,omitempty" jsonschema:"document category filter: all, visa, airline, destination or agency (default all)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	UserID   string `json:"userId,omitempty" jsonschema:"agent whose personal collection is searched alongside the admin knowledge"`
	IsAdmin  bool   `json:"isAdmin,omitempty" jsonschema:"search only the admin knowledge"`
}

// SearchOutput is the output schema for the search_travel_knowledge tool.
type SearchOutput struct {
	Results             []SearchResultOutput `json:"results"`
	TotalResults        int                  `json:"total_results"`
	Query               string               `json:"query"`
	Category            string               `json:"category"`
	CollectionsSearched []string             `json:"collections_searched"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID     string   `json:"document_id"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	Excerpt        string   `json:"excerpt"`
	RelevanceScore float64  `json:"relevance_score"`
	Source         string   `json:"source"`
	Highlights     []string `json:"highlights,omitempty"`
}

// DocumentStatusInput is the input schema for the check_document_status tool.
type DocumentStatusInput struct {
	DocumentID string `json:"document_id" jsonschema:"document ID returned by the upload"`
}

// DocumentStatusOutput is the output schema for the check_document_status tool.
type DocumentStatusOutput struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	Category   string `json:"category"`
	Collection string `json:"collection"`
	ChunkCount int    `json:"chunk_count"`
	UploadedAt string `json:"uploaded_at"`
	Indexed    bool   `json:"indexed"`
}

// ListFoldersInput is the input schema for the list_folders tool.
type ListFoldersInput struct {
	UserID  string `json:"userId,omitempty" jsonschema:"agent whose folders are listed alongside the admin folders"`
	IsAdmin bool   `json:"isAdmin,omitempty" jsonschema:"list only admin folders"`
}

// ListFoldersOutput is the output schema for the list_folders tool.
type ListFoldersOutput struct {
	Folders []FolderOutput `json:"folders"`
	Count   int            `json:"count"`
}

// FolderOutput represents a single folder.
type FolderOutput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	IsAdmin       bool   `json:"is_admin"`
	DocumentCount int    `json:"document_count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_travel_knowledge",
		Description: "Search Tala AI's travel knowledge base for visa requirements, " +
			"airline policies, and destination information",
	}, s.handleSearch)

	if s.ports.Ingestion != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "check_document_status",
			Description: "Check the processing status of an uploaded travel document",
		}, s.handleDocumentStatus)
	}

	if s.ports.Folder != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_folders",
			Description: "List the document folders visible to an agent",
		}, s.handleListFolders)
	}
}

// handleSearch handles the search_travel_knowledge tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}
	category := input.Category
	if category == "" {
		category = domain.FilterAll
	}

	resp, err := s.ports.Retrieval.Search(ctx, input.Query, domain.SearchOptions{
		OwnerID:  input.UserID,
		IsAdmin:  input.IsAdmin,
		Limit:    limit,
		Category: category,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:             make([]SearchResultOutput, len(resp.Results)),
		TotalResults:        len(resp.Results),
		Query:               input.Query,
		Category:            category,
		CollectionsSearched: resp.CollectionsSearched,
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		output.Results[i] = SearchResultOutput{
			DocumentID:     r.DocumentID,
			Title:          r.Metadata.Title,
			Category:       r.Metadata.Category,
			Excerpt:        excerpt(r.Content),
			RelevanceScore: r.Score,
			Source:         string(r.Source),
			Highlights:     r.Highlights,
		}
	}

	return nil, output, nil
}

// handleDocumentStatus handles the check_document_status tool invocation.
func (s *Server) handleDocumentStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentStatusInput,
) (*mcp.CallToolResult, DocumentStatusOutput, error) {
	if input.DocumentID == "" {
		return nil, DocumentStatusOutput{}, fmt.Errorf("%w: document_id is required", domain.ErrInvalidInput)
	}

	doc, err := s.ports.Ingestion.GetDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentStatusOutput{}, fmt.Errorf("document %s: %w", input.DocumentID, err)
	}

	return nil, DocumentStatusOutput{
		DocumentID: doc.ID,
		Status:     "processed",
		Filename:   doc.OriginalName,
		FileType:   doc.MediaType,
		Category:   doc.Category,
		Collection: doc.CollectionName,
		ChunkCount: doc.ChunkCount,
		UploadedAt: doc.UploadedAt.UTC().Format(time.RFC3339),
		Indexed:    doc.ChunkCount > 0,
	}, nil
}

// handleListFolders handles the list_folders tool invocation.
func (s *Server) handleListFolders(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListFoldersInput,
) (*mcp.CallToolResult, ListFoldersOutput, error) {
	if s.ports.Folder == nil {
		return nil, ListFoldersOutput{}, errUnavailable
	}

	folders, err := s.ports.Folder.GetFolders(ctx, input.UserID, input.IsAdmin)
	if err != nil {
		return nil, ListFoldersOutput{}, err
	}

	output := ListFoldersOutput{
		Folders: make([]FolderOutput, len(folders)),
		Count:   len(folders),
	}
	for i, f := range folders {
		output.Folders[i] = FolderOutput{
			ID:            f.ID,
			Name:          f.Name,
			Description:   f.Description,
			IsAdmin:       f.IsAdmin,
			DocumentCount: f.DocumentCount,
		}
	}
	return nil, output, nil
}

// excerpt shortens content on a rune boundary.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}
