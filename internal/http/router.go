package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	wordsController := NewWordsController(cfg.WordStore, cfg.LookupService, cfg.SentenceService, cfg.ExampleGenerator, cfg.SentenceAnalyzer)
	reviewController := NewReviewController(cfg.ReviewStore)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Word collection endpoints
	router.GET("/api/words", wordsController.ListWords)
	router.POST("/api/words", wordsController.AddWord)
	router.GET("/api/words/search", wordsController.SearchWords)
	router.GET("/api/words/stats", wordsController.GetStats)
	router.GET("/api/words/:id", wordsController.GetWord)
	router.DELETE("/api/words/:id", wordsController.DeleteWord)
	router.POST("/api/words/:id/example", wordsController.GenerateExample)
	router.GET("/api/lookup/:word", wordsController.Lookup)
	router.POST("/api/lookup", wordsController.LookupText)
	router.POST("/api/sentence/analysis", wordsController.AnalyzeSentence)

	// Review session endpoints
	router.POST("/api/review/session", reviewController.StartSession)
	router.GET("/api/review/session", reviewController.GetSession)
	router.POST("/api/review/rate", reviewController.Rate)
	router.POST("/api/review/continue-all", reviewController.ContinueAll)
	router.POST("/api/review/restart", reviewController.Restart)
	router.GET("/api/review/queue", reviewController.GetQueue)

	// Sync endpoints
	if cfg.SyncAccount != nil && cfg.SyncEngine != nil {
		syncController := NewSyncController(cfg.SyncAccount, cfg.SyncEngine)
		router.POST("/api/sync/login", syncController.Login)
		router.POST("/api/sync/logout", syncController.Logout)
		router.GET("/api/sync/status", syncController.GetStatus)
		router.POST("/api/sync/upload", syncController.Upload)
		router.POST("/api/sync/download", syncController.Download)
		router.POST("/api/sync/smart", syncController.SmartSync)
	}

	return router
}
