package documents

import (
	"errors"
	"net/http"
	"strconv"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/middleware"
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/admin/documents
func (h *Handler) List(req *restful.Request, resp *restful.Response) {
	limit := 0
	if raw := req.QueryParameter("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.HandleError(resp, errInvalidLimit, http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	response, err := h.service.List(req.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list documents")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, response)
}

// Create handles POST /api/v1/admin/documents
func (h *Handler) Create(req *restful.Request, resp *restful.Response) {
	var request CreateDocumentRequest
	if err := req.ReadEntity(&request); err != nil {
		log.Error().Err(err).Msg("Failed to parse create document request")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := request.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("title", request.Title).
		Str("url", request.URL).
		Msg("Create document")

	result, err := h.service.Create(req.Request.Context(), request)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create document")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusCreated, result)
}

// Update handles PUT /api/v1/admin/documents
func (h *Handler) Update(req *restful.Request, resp *restful.Response) {
	var request UpdateDocumentRequest
	if err := req.ReadEntity(&request); err != nil {
		log.Error().Err(err).Msg("Failed to parse update document request")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if err := request.Validate(); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	log.Info().
		Str("id", request.ID).
		Str("title", request.Title).
		Str("url", request.URL).
		Msg("Update document")

	result, err := h.service.Update(req.Request.Context(), request)
	if err != nil {
		log.Error().Err(err).Msg("Failed to update document")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// Delete handles DELETE /api/v1/admin/documents?id={id}
func (h *Handler) Delete(req *restful.Request, resp *restful.Response) {
	docID := req.QueryParameter("id")
	if docID == "" {
		middleware.HandleError(resp, middleware.ErrDocumentIDRequired, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(req.Request.Context(), docID); err != nil {
		log.Error().Err(err).Str("doc_id", docID).Msg("Failed to delete document")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, DeleteDocumentResponse{
		ID:      docID,
		Message: "Document deleted successfully",
	})
}
