package convert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ContentType classifies what a fetched URL points at.
type ContentType string

const (
	TypeHTML ContentType = "html"
	TypePDF  ContentType = "pdf"
	TypeJSON ContentType = "json"
)

// contentTypes maps HTTP content-type headers to the types we know how
// to process. Anything unlisted is treated as HTML.
var contentTypes = map[string]ContentType{
	"application/pdf":          TypePDF,
	"application/octet-stream": TypePDF,
	"application/json":         TypeJSON,
	"application/vnd.api+json": TypeJSON,
	"text/html":                TypeHTML,
}

var driveFileID = regexp.MustCompile(`/d/([^/]+)`)
var driveQueryID = regexp.MustCompile(`id=([^&]+)`)

// ResolveGoogleDriveURL rewrites a Google Drive share link into a direct
// download link. Other URLs are returned unchanged.
func ResolveGoogleDriveURL(url string) string {
	if !strings.Contains(url, "drive.google.com") {
		return url
	}

	match := driveFileID.FindStringSubmatch(url)
	if match == nil {
		match = driveQueryID.FindStringSubmatch(url)
	}
	if match == nil {
		return url
	}
	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", match[1])
}

// FetchResult holds the raw payload of a URL together with its resolved
// location and detected content type.
type FetchResult struct {
	ContentType ContentType
	ResolvedURL string
	Body        []byte
}

// Fetcher downloads source documents over HTTP.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch downloads the URL and classifies the response by content type.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	resolvedURL := ResolveGoogleDriveURL(url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "kb-agent/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", resolvedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, resolvedURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	header := resp.Header.Get("Content-Type")
	if idx := strings.Index(header, ";"); idx >= 0 {
		header = header[:idx]
	}
	header = strings.TrimSpace(strings.ToLower(header))

	contentType, ok := contentTypes[header]
	if !ok {
		contentType = TypeHTML
	}

	return &FetchResult{
		ContentType: contentType,
		ResolvedURL: resolvedURL,
		Body:        body,
	}, nil
}
