// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go   # Connection setup and migrations
//	├── words/        # Vocabulary entries and scheduling state
//	└── settings/     # Sync configuration
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./app.db")
//
//	// Create domain-specific repositories
//	wordsRepo := words.NewRepository(db.DB)
//	settingsRepo := settings.NewRepository(db.DB)
package database
