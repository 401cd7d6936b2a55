package server

import (
	"errors"
	"log"
	"net/http"

	"number-heroes/internal/assoc"
	"number-heroes/internal/cards"
	"number-heroes/internal/config"
	"number-heroes/internal/game"
	"number-heroes/internal/llm"
	"number-heroes/internal/progress"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "number-heroes/docs"
)

type Server struct {
	cfg       config.Config
	assocs    assoc.Repository
	generator *assoc.Generator
	scanner   *assoc.Scanner
	games     *game.Service
	cards     *cards.Service
	progress  *progress.Store
	llm       *llm.Client
}

func New(
	cfg config.Config,
	assocs assoc.Repository,
	generator *assoc.Generator,
	scanner *assoc.Scanner,
	games *game.Service,
	cardSvc *cards.Service,
	progressStore *progress.Store,
	llmClient *llm.Client,
) *Server {
	return &Server{
		cfg:       cfg,
		assocs:    assocs,
		generator: generator,
		scanner:   scanner,
		games:     games,
		cards:     cardSvc,
		progress:  progressStore,
		llm:       llmClient,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	associations := r.Group("/number-associations")
	{
		associations.POST("/:number/generate", s.handleGenerateAssociation)
		associations.GET("/:number", s.handleGetAssociation)
		associations.POST("/:number/rate", s.handleRateAssociation)
		associations.POST("/generate-all", s.handleGenerateAll)
		associations.GET("/all/primary", s.handleListPrimary)
		associations.POST("/check-duplicates", s.handleCheckDuplicates)
	}

	games := r.Group("/api/games")
	{
		games.POST("/start", s.handleStartGame)
		games.GET("/:id", s.handleGetGame)
		games.POST("/:id/answer", s.handleSubmitAnswer)
		games.GET("/:id/result", s.handleGameResult)
		games.POST("/:id/feedback", s.handleSubmitFeedback)
	}

	cardsGroup := r.Group("/cards")
	{
		cardsGroup.GET("", s.handleListCards)
		cardsGroup.POST("", s.handleCreateCard)
		cardsGroup.GET("/:id", s.handleGetCard)
		cardsGroup.PATCH("/:id", s.handleUpdateCard)
		cardsGroup.DELETE("/:id", s.handleDeleteCard)
	}

	progressGroup := r.Group("/api/progress")
	{
		progressGroup.GET("/:playerId", s.handleGetProgress)
		progressGroup.POST("/:playerId/complete", s.handleCompleteNumber)
		progressGroup.POST("/:playerId/advance", s.handleAdvancePool)
	}

	r.GET("/open-api", s.handleOpenAPIProxy)
	r.POST("/open-api", s.handleOpenAPIProxy)

	r.Static("/images", "./images")
	r.GET("/api/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, assoc.ErrNotFound),
		errors.Is(err, game.ErrNotFound),
		errors.Is(err, cards.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, assoc.ErrInvalidRating),
		errors.Is(err, game.ErrInvalidType),
		errors.Is(err, game.ErrGameNotActive),
		errors.Is(err, game.ErrMissingState),
		errors.Is(err, progress.ErrPoolIncomplete):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, assoc.ErrScanInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, assoc.ErrGenerationExhausted),
		errors.Is(err, assoc.ErrInvalidResponse),
		errors.Is(err, llm.ErrEmptyResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		c.JSON(status, gin.H{"error": apiErr.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
