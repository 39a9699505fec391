package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Feishu
		AutoSync
		Translation
		AI
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Feishu struct {
		BaseURL   string
		AppID     string
		AppSecret string
	}
	AutoSync struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every five minutes
	}
	Translation struct {
		LangPair string // MyMemory language pair, e.g. "en|zh-CN"
	}
	AI struct {
		BaseURL string
		APIKey  string
		Model   string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Feishu Bitable sync defaults
	v.SetDefault("feishu_base_url", DefaultFeishuBaseURL)
	v.SetDefault("feishu_app_id", "")
	v.SetDefault("feishu_app_secret", "")
	v.SetDefault("auto_sync_enabled", false)
	v.SetDefault("auto_sync_schedule", "*/5 * * * *")

	// Enrichment defaults
	v.SetDefault("translation_lang_pair", "en|zh-CN")
	v.SetDefault("ai_base_url", "")
	v.SetDefault("ai_api_key", "")
	v.SetDefault("ai_model", "gpt-4o-mini")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Feishu: Feishu{
			BaseURL:   v.GetString("FEISHU_BASE_URL"),
			AppID:     v.GetString("FEISHU_APP_ID"),
			AppSecret: v.GetString("FEISHU_APP_SECRET"),
		},
		AutoSync: AutoSync{
			Enabled:  v.GetBool("AUTO_SYNC_ENABLED"),
			Schedule: v.GetString("AUTO_SYNC_SCHEDULE"),
		},
		Translation: Translation{
			LangPair: v.GetString("TRANSLATION_LANG_PAIR"),
		},
		AI: AI{
			BaseURL: v.GetString("AI_BASE_URL"),
			APIKey:  v.GetString("AI_API_KEY"),
			Model:   v.GetString("AI_MODEL"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
