package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type completeNumberRequest struct {
	Number int `json:"number" binding:"min=0,max=99"`
}

func (s *Server) handleGetProgress(c *gin.Context) {
	playerID, ok := parsePlayerID(c)
	if !ok {
		return
	}
	p, err := s.progress.Get(c.Request.Context(), playerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCompleteNumber(c *gin.Context) {
	playerID, ok := parsePlayerID(c)
	if !ok {
		return
	}
	var req completeNumberRequest
	if !bindJSON(c, &req, nil, "number must be between 0 and 99") {
		return
	}
	p, err := s.progress.MarkCompleted(c.Request.Context(), playerID, req.Number)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleAdvancePool(c *gin.Context) {
	playerID, ok := parsePlayerID(c)
	if !ok {
		return
	}
	p, err := s.progress.AdvancePool(c.Request.Context(), playerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func parsePlayerID(c *gin.Context) (string, bool) {
	playerID := strings.TrimSpace(c.Param("playerId"))
	if playerID == "" || len(playerID) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return "", false
	}
	return playerID, true
}
