package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vocadex/vocadex/internal/ai"
	"github.com/vocadex/vocadex/internal/config"
	"github.com/vocadex/vocadex/internal/database"
	"github.com/vocadex/vocadex/internal/database/settings"
	"github.com/vocadex/vocadex/internal/database/words"
	"github.com/vocadex/vocadex/internal/dictionary"
	"github.com/vocadex/vocadex/internal/feishu"
	http_controllers "github.com/vocadex/vocadex/internal/http"
	"github.com/vocadex/vocadex/internal/scheduler"
	"github.com/vocadex/vocadex/internal/services"
	"github.com/vocadex/vocadex/internal/syncer"
	"github.com/vocadex/vocadex/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Vocadex v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	wordsRepo := words.NewRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB)

	// Dictionary and translation clients for enrichment
	dictClient := dictionary.NewFreeDictionaryClient()
	translator := dictionary.NewMyMemoryTranslator(cfg.Translation.LangPair)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewTranslateEntryQueue(wordsRepo, translator),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	lookupService := services.NewLookupService(dictClient, wordsRepo, taskClient)
	sentenceService := services.NewSentenceService(dictClient, translator)

	// Bitable sync, only wired when app credentials are configured
	var syncAccount http_controllers.SyncAccount
	var syncEngine http_controllers.SyncEngine
	var autoSync *scheduler.AutoSyncScheduler
	if cfg.Feishu.AppID != "" && cfg.Feishu.AppSecret != "" {
		feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret).
			WithBaseURL(cfg.Feishu.BaseURL)
		engine := syncer.NewEngine(wordsRepo, feishuClient, settingsRepo)
		account := syncer.NewSession(settingsRepo)

		syncAccount = account
		syncEngine = engine

		if cfg.AutoSync.Enabled {
			autoSync = scheduler.NewAutoSyncScheduler(engine, account)
			if err := autoSync.Start(context.Background(), cfg.AutoSync.Schedule); err != nil {
				log.Printf("WARNING: failed to start auto sync scheduler: %v", err)
			}
		}
	} else {
		log.Printf("Feishu credentials not set, sync endpoints disabled. Set FEISHU_APP_ID and FEISHU_APP_SECRET to enable.")
	}

	// AI coaching is optional
	var generator http_controllers.ExampleGenerator
	var analyzer http_controllers.SentenceAnalyzer
	if cfg.AI.BaseURL != "" && cfg.AI.APIKey != "" {
		aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
		generator = aiClient
		analyzer = aiClient
	}

	routerCfg := http_controllers.RouterConfig{
		Database:         db,
		WordStore:        wordsRepo,
		LookupService:    lookupService,
		SentenceService:  sentenceService,
		ReviewStore:      wordsRepo,
		SyncAccount:      syncAccount,
		SyncEngine:       syncEngine,
		ExampleGenerator: generator,
		SentenceAnalyzer: analyzer,
		Version:          version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if autoSync != nil {
			autoSync.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
