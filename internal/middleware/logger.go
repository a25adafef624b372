package middleware

import (
	"time"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Logger is a request logging filter. Each request gets a generated id
// that is echoed back in the X-Request-ID header.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	requestID := req.Request.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	resp.AddHeader("X-Request-ID", requestID)

	chain.ProcessFilter(req, resp)

	log.Info().
		Str("request_id", requestID).
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request completed")
}
