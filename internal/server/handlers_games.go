package server

import (
	"net/http"

	"number-heroes/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type startGameRequest struct {
	Type       string         `json:"type" binding:"required"`
	Number     *int           `json:"number" binding:"omitempty,min=0,max=99"`
	PlayerID   *string        `json:"playerId"`
	Difficulty int            `json:"difficulty" binding:"omitempty,min=1,max=5"`
	Settings   map[string]any `json:"settings"`
}

var startGameMessages = bindMessages{
	"Type": {
		"required": "game type is required",
	},
	"Number": {
		"min": "number must be between 0 and 99",
		"max": "number must be between 0 and 99",
	},
	"Difficulty": {
		"min": "difficulty must be between 1 and 5",
		"max": "difficulty must be between 1 and 5",
	},
}

type answerRequest struct {
	Answer      game.Answer `json:"answer" binding:"required"`
	TimeSpentMs *int        `json:"timeSpentMs" binding:"omitempty,min=0"`
}

type feedbackRequest struct {
	Message string `json:"message" binding:"required"`
	Rating  *int   `json:"rating" binding:"omitempty,min=1,max=5"`
}

var feedbackMessages = bindMessages{
	"Message": {
		"required": "feedback message is required",
	},
	"Rating": {
		"min": "rating must be between 1 and 5",
		"max": "rating must be between 1 and 5",
	},
}

func (s *Server) handleStartGame(c *gin.Context) {
	var req startGameRequest
	if !bindJSON(c, &req, startGameMessages, "invalid start request") {
		return
	}
	row, err := s.games.Start(c.Request.Context(), game.StartParams{
		Type:       req.Type,
		Number:     req.Number,
		PlayerID:   req.PlayerID,
		Difficulty: req.Difficulty,
		Settings:   req.Settings,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (s *Server) handleGetGame(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}
	row, err := s.games.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleSubmitAnswer(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}
	var req answerRequest
	if !bindJSON(c, &req, nil, "answer is required") {
		return
	}
	row, err := s.games.SubmitAnswer(c.Request.Context(), id, req.Answer, req.TimeSpentMs)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleGameResult(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}
	view, err := s.games.Result(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleSubmitFeedback(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}
	var req feedbackRequest
	if !bindJSON(c, &req, feedbackMessages, "feedback message is required") {
		return
	}
	row, err := s.games.SubmitFeedback(c.Request.Context(), id, req.Message, req.Rating)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func parseGameID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return uuid.Nil, false
	}
	return id, true
}
