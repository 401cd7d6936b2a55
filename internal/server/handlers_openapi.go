package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleOpenAPIProxy forwards the request body to the LLM chat endpoint
// untouched. A caller-supplied Authorization header overrides the
// configured key.
func (s *Server) handleOpenAPIProxy(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		body = raw
	}
	status, out, err := s.llm.Raw(c.Request.Context(), c.Request.Method, body, c.GetHeader("Authorization"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(status, "application/json", out)
}
