package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createCardRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

var cardMessages = bindMessages{
	"Title": {
		"required": "title is required",
	},
}

type updateCardRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (s *Server) handleListCards(c *gin.Context) {
	rows, err := s.cards.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleCreateCard(c *gin.Context) {
	var req createCardRequest
	if !bindJSON(c, &req, cardMessages, "title is required") {
		return
	}
	row, err := s.cards.Create(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (s *Server) handleGetCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}
	row, err := s.cards.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleUpdateCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}
	var req updateCardRequest
	if !bindJSON(c, &req, nil, "invalid card update") {
		return
	}
	row, err := s.cards.Update(c.Request.Context(), id, req.Title, req.Description)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleDeleteCard(c *gin.Context) {
	id, ok := parseCardID(c)
	if !ok {
		return
	}
	if err := s.cards.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseCardID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return 0, false
	}
	return uint(id), true
}
