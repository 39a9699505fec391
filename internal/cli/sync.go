package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vocadex/vocadex/internal/config"
	"github.com/vocadex/vocadex/internal/database"
	"github.com/vocadex/vocadex/internal/database/settings"
	"github.com/vocadex/vocadex/internal/database/words"
	"github.com/vocadex/vocadex/internal/feishu"
	"github.com/vocadex/vocadex/internal/syncer"
)

// SyncCommand runs a one-shot sync against the configured Bitable.
type SyncCommand struct {
	DatabasePath string
	Mode         string
}

func NewSyncCommand() *SyncCommand {
	return &SyncCommand{}
}

func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.Mode, "mode", "smart", "Sync mode: smart, upload or download")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Run a one-shot sync against the configured Feishu Bitable.\n")
		fmt.Fprintf(os.Stderr, "Requires FEISHU_APP_ID and FEISHU_APP_SECRET in the environment\n")
		fmt.Fprintf(os.Stderr, "and a prior login through the HTTP API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd.Mode {
	case "smart", "upload", "download":
	default:
		return fmt.Errorf("unknown sync mode %q", cmd.Mode)
	}

	return nil
}

func (cmd *SyncCommand) Run() error {
	cfg := config.NewConfig()
	if cfg.Feishu.AppID == "" || cfg.Feishu.AppSecret == "" {
		return fmt.Errorf("FEISHU_APP_ID and FEISHU_APP_SECRET must be set")
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	settingsRepo := settings.NewRepository(db.DB)
	account := syncer.NewSession(settingsRepo)

	syncCfg, err := account.Current()
	if err != nil {
		if errors.Is(err, syncer.ErrNotLoggedIn) {
			return fmt.Errorf("no sync configuration found, log in through the API first")
		}
		return err
	}

	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret).
		WithBaseURL(cfg.Feishu.BaseURL)
	engine := syncer.NewEngine(words.NewRepository(db.DB), feishuClient, settingsRepo)

	ctx := context.Background()
	switch cmd.Mode {
	case "upload":
		uploaded, err := engine.Upload(ctx, syncCfg)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %d words\n", uploaded)
	case "download":
		result, err := engine.Download(ctx, syncCfg)
		if err != nil {
			return err
		}
		fmt.Printf("Downloaded %d words (%d skipped)\n", result.Synced, result.Skipped)
	default:
		result, err := engine.SmartSync(ctx, syncCfg)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %d, downloaded %d words (%d skipped)\n",
			result.Uploaded, result.Downloaded, result.Skipped)
	}

	return nil
}
