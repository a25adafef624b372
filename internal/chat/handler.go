package chat

import (
	"fmt"
	"net/http"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Query handles POST /api/v1/query
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	var chatRequest ChatRequest

	if err := req.ReadEntity(&chatRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	chatRequest.SetDefaults()
	if err := chatRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("query", chatRequest.Query).
		Int("max_tokens", chatRequest.MaxTokens).
		Float64("temperature", chatRequest.Temperature).
		Msg("Process Query")

	response, err := h.service.Query(req.Request.Context(), chatRequest)
	if err != nil {
		log.Error().Err(err).Msg("Failed to answer query")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// QueryStream handles POST /api/v1/query/stream
func (h *Handler) QueryStream(req *restful.Request, resp *restful.Response) {
	var chatRequest ChatRequest

	if err := req.ReadEntity(&chatRequest); err != nil {
		log.Error().Err(err).Msg("Unable to parse query request")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	chatRequest.SetDefaults()
	if err := chatRequest.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("query", chatRequest.Query).
		Int("max_tokens", chatRequest.MaxTokens).
		Float64("temperature", chatRequest.Temperature).
		Msg("Process Query Stream")

	ctx := req.Request.Context()

	resp.AddHeader("Content-Type", "text/event-stream")
	resp.AddHeader("Cache-Control", "no-cache")
	resp.AddHeader("Connection", "keep-alive")
	resp.AddHeader("X-Accel-Buffering", "no")

	writer := resp.ResponseWriter
	flusher, ok := writer.(http.Flusher)
	if !ok {
		middleware.HandleError(resp, fmt.Errorf("streaming not supported"), http.StatusInternalServerError)
		return
	}

	sendEvent := func(event SSEEvent) {
		if formatted, err := event.Format(); err == nil {
			fmt.Fprint(writer, formatted)
			flusher.Flush()
		}
	}

	sendEvent(SSEEvent{
		Event: "start",
		Data:  StreamStartEvent{Model: h.service.modelID},
	})

	response, err := h.service.QueryStream(ctx, chatRequest,
		func(sources []Source) {
			sendEvent(SSEEvent{
				Event: "sources",
				Data:  StreamSourcesEvent{Sources: sources},
			})
		},
		func(chunk string) error {
			sendEvent(SSEEvent{
				Event: "chunk",
				Data:  StreamChunkEvent{Text: chunk},
			})
			return nil
		})

	if err != nil {
		sendEvent(SSEEvent{
			Event: "error",
			Data:  StreamErrorEvent{Error: err.Error()},
		})
		return
	}

	sendEvent(SSEEvent{
		Event: "done",
		Data:  StreamDoneEvent{StopReason: response.StopReason},
	})
}

// Health handles GET /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}

// ClearCache handles POST /api/v1/admin/cache/clear
func (h *Handler) ClearCache(req *restful.Request, resp *restful.Response) {
	deleted, err := h.service.ClearCache(req.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to clear search cache")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, ClearCacheResponse{
		Deleted: deleted,
		Message: "Search cache cleared",
	})
}
