package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type rateRequest struct {
	Rating float64 `json:"rating" binding:"required,min=1,max=5"`
}

var rateMessages = bindMessages{
	"Rating": {
		"required": "rating is required",
		"min":      "rating must be between 1 and 5",
		"max":      "rating must be between 1 and 5",
	},
}

type primaryView struct {
	Number int    `json:"number"`
	Hero   string `json:"hero"`
	Action string `json:"action"`
	Object string `json:"object"`
}

func (s *Server) handleGenerateAssociation(c *gin.Context) {
	number, ok := parseNumber(c)
	if !ok {
		return
	}
	row, err := s.generator.Generate(c.Request.Context(), number)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (s *Server) handleGetAssociation(c *gin.Context) {
	number, ok := parseNumber(c)
	if !ok {
		return
	}
	row, err := s.assocs.PrimaryForNumber(c.Request.Context(), number)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleRateAssociation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid association id"})
		return
	}
	var req rateRequest
	if !bindJSON(c, &req, rateMessages, "rating must be between 1 and 5") {
		return
	}
	row, svcErr := s.assocs.UpdateRating(c.Request.Context(), uint(id), req.Rating)
	if svcErr != nil {
		writeServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) handleGenerateAll(c *gin.Context) {
	delay := func() {
		time.Sleep(time.Duration(s.cfg.RegenDelayMillis) * time.Millisecond)
	}
	generated, failures, err := s.generator.GenerateMissing(c.Request.Context(), s.cfg.GenerateAllCap, delay)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	failed := make(map[string]string, len(failures))
	for number, genErr := range failures {
		failed[strconv.Itoa(number)] = genErr.Error()
	}
	if generated == nil {
		generated = []int{}
	}
	c.JSON(http.StatusOK, gin.H{
		"generated": generated,
		"failed":    failed,
	})
}

func (s *Server) handleListPrimary(c *gin.Context) {
	rows, err := s.assocs.Primary(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out := make([]primaryView, 0, len(rows))
	for _, row := range rows {
		out = append(out, primaryView{
			Number: row.Number,
			Hero:   row.Hero,
			Action: row.Action,
			Object: row.Object,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCheckDuplicates(c *gin.Context) {
	report, err := s.scanner.Scan(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func parseNumber(c *gin.Context) (int, bool) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 0 || number > 99 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "number must be between 0 and 99"})
		return 0, false
	}
	return number, true
}
