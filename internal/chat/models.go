package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careerkb/kb-agent/internal/middleware"
)

type ChatRequest struct {
	Query       string  `json:"query" description:"The user's question"`
	MaxTokens   int     `json:"max_tokens,omitempty" description:"Maximum tokens to generate (default: 2000)"`
	Temperature float64 `json:"temperature,omitempty" description:"Temperature for generation (0.0-1.0, default: 0.0)"`
}

// Source identifies a document used to ground the answer.
type Source struct {
	Title string `json:"title" description:"Document title"`
	URL   string `json:"url" description:"Source document URL"`
}

type ChatResponse struct {
	Content    string   `json:"content" description:"The grounded answer"`
	StopReason string   `json:"stop_reason" description:"Why generation stopped"`
	Model      string   `json:"model" description:"Model ID used"`
	Sources    []Source `json:"sources" description:"Documents used for grounding"`
}

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

type ClearCacheResponse struct {
	Deleted int    `json:"deleted" description:"Number of cache entries removed"`
	Message string `json:"message" description:"Outcome description"`
}

func (r *ChatRequest) SetDefaults() {
	if r.MaxTokens == 0 {
		r.MaxTokens = 2000
	}
}

func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return middleware.ErrEmptyQuery
	}

	if r.MaxTokens < 0 || r.MaxTokens > 100000 {
		return middleware.ErrInvalidMaxTokens
	}

	if r.Temperature < 0.0 || r.Temperature > 1.0 {
		return middleware.ErrInvalidTemperature
	}
	return nil
}

type SSEEvent struct {
	Event string      `json:"-"`
	Data  interface{} `json:"-"`
}

// SSE event data structures
type StreamStartEvent struct {
	Model string `json:"model"`
}

type StreamSourcesEvent struct {
	Sources []Source `json:"sources"`
}

type StreamChunkEvent struct {
	Text string `json:"text"`
}

type StreamDoneEvent struct {
	StopReason string `json:"stop_reason"`
}

type StreamErrorEvent struct {
	Error string `json:"error"`
}

func (e SSEEvent) Format() (string, error) {
	jsonData, err := json.Marshal(e.Data)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("event: %s\ndata: %s\n\n", e.Event, string(jsonData)), nil
}
