package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./vocadex.db"

	// DefaultFeishuBaseURL is the Feishu open platform endpoint
	DefaultFeishuBaseURL = "https://open.feishu.cn"
)
