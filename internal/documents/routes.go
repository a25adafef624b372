package documents

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"

	"github.com/careerkb/kb-agent/internal/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1/admin/documents").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("").
			To(handler.List).
			Doc("List indexed documents").
			Metadata(restfulspec.KeyOpenAPITags, []string{"documents"}).
			Param(ws.QueryParameter("limit", "maximum number of chunks to scan").DataType("integer")).
			Writes(ListDocumentsResponse{}).
			Returns(200, "OK", ListDocumentsResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("").
			To(handler.Create).
			Doc("Fetch, convert and index a new document").
			Metadata(restfulspec.KeyOpenAPITags, []string{"documents"}).
			Reads(CreateDocumentRequest{}).
			Writes(IngestResult{}).
			Returns(201, "Created", IngestResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.PUT("").
			To(handler.Update).
			Doc("Reindex an existing document").
			Metadata(restfulspec.KeyOpenAPITags, []string{"documents"}).
			Reads(UpdateDocumentRequest{}).
			Writes(IngestResult{}).
			Returns(200, "OK", IngestResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("").
			To(handler.Delete).
			Doc("Delete a document and all of its chunks").
			Metadata(restfulspec.KeyOpenAPITags, []string{"documents"}).
			Param(ws.QueryParameter("id", "document id").DataType("string")).
			Writes(DeleteDocumentResponse{}).
			Returns(200, "OK", DeleteDocumentResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
