package http

import (
	"github.com/vocadex/vocadex/internal/database"
	"github.com/vocadex/vocadex/internal/review"
	"github.com/vocadex/vocadex/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Word collection
	WordStore       WordStore
	LookupService   *services.LookupService
	SentenceService *services.SentenceService

	// Review sessions
	ReviewStore review.Store

	// Bitable sync (optional)
	SyncAccount SyncAccount
	SyncEngine  SyncEngine

	// AI coaching (optional)
	ExampleGenerator ExampleGenerator
	SentenceAnalyzer SentenceAnalyzer

	// Application info
	Version string
}
