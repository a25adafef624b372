package middleware

import (
	"errors"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the error body returned by all endpoints
type ErrorResponse struct {
	Error string `json:"error" description:"Error message"`
	Code  int    `json:"code" description:"HTTP status code"`
}

// Validation errors shared by the API models
var (
	ErrEmptyQuery         = errors.New("query must not be empty")
	ErrInvalidMaxTokens   = errors.New("max_tokens must be between 0 and 100000")
	ErrInvalidTemperature = errors.New("temperature must be between 0.0 and 1.0")
	ErrTitleRequired      = errors.New("title must not be empty")
	ErrURLRequired        = errors.New("url must not be empty")
	ErrInvalidURL         = errors.New("url must be a valid http or https URL")
	ErrDocumentIDRequired = errors.New("document id must not be empty")
)

// HandleError writes a JSON error response with the given status code
func HandleError(resp *restful.Response, err error, code int) {
	errorResponse := ErrorResponse{
		Error: err.Error(),
		Code:  code,
	}

	if writeErr := resp.WriteHeaderAndEntity(code, errorResponse); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
