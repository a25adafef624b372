package documents

import (
	"net/url"
	"strings"

	"github.com/careerkb/kb-agent/internal/middleware"
)

type CreateDocumentRequest struct {
	Title string `json:"title" description:"Display title for the document"`
	URL   string `json:"url" description:"Source URL to fetch and index"`
}

type UpdateDocumentRequest struct {
	ID    string `json:"id" description:"Document ID to replace"`
	Title string `json:"title" description:"Display title for the document"`
	URL   string `json:"url" description:"Source URL to fetch and index"`
}

// DocumentSummary describes one indexed document, aggregated from its
// stored chunks.
type DocumentSummary struct {
	ID          string `json:"id" description:"Document ID"`
	Title       string `json:"title" description:"Display title"`
	ContentType string `json:"content_type" description:"Detected source content type"`
	SourceURL   string `json:"source_url" description:"Resolved source URL"`
	LastUpdate  string `json:"last_update" description:"When the document was last reindexed"`
	Chunks      int    `json:"chunks" description:"Number of stored chunks"`
}

// IngestResult reports what an ingestion run stored.
type IngestResult struct {
	ID          string `json:"id" description:"Document ID"`
	Title       string `json:"title" description:"Display title"`
	ContentType string `json:"content_type" description:"Detected source content type"`
	SourceURL   string `json:"source_url" description:"Resolved source URL"`
	LastUpdate  string `json:"last_update" description:"Indexing timestamp"`
	Chunks      int    `json:"chunks" description:"Number of chunks stored"`
	Size        int    `json:"size" description:"Markdown length in characters"`
}

type ListDocumentsResponse struct {
	Documents []DocumentSummary `json:"documents" description:"Indexed documents"`
	Total     int               `json:"total" description:"Number of documents"`
}

type DeleteDocumentResponse struct {
	ID      string `json:"id" description:"Deleted document ID"`
	Message string `json:"message" description:"Outcome description"`
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return middleware.ErrURLRequired
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return middleware.ErrInvalidURL
	}
	return nil
}

func (r *CreateDocumentRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return middleware.ErrTitleRequired
	}
	return validateURL(r.URL)
}

func (r *UpdateDocumentRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return middleware.ErrDocumentIDRequired
	}
	if strings.TrimSpace(r.Title) == "" {
		return middleware.ErrTitleRequired
	}
	return validateURL(r.URL)
}
