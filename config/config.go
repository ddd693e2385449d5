package config

import (
	"encoding/json"
	"os"
)

type Config struct {
	Discord     DiscordConfig     `json:"discord"`
	Database    DatabaseConfig    `json:"database"`
	Tickets     TicketsConfig     `json:"tickets"`
	AutoMessage AutoMessageConfig `json:"auto_message"`
	LangPath    string            `json:"lang_path"`
}

type DiscordConfig struct {
	Token   string `json:"token"`
	GuildID string `json:"guild_id"`
}

type DatabaseConfig struct {
	SQLite  SQLiteConfig  `json:"sqlite"`
	MongoDB MongoDBConfig `json:"mongodb"`
}

type SQLiteConfig struct {
	Path string `json:"path"`
}

type MongoDBConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type TicketsConfig struct {
	StaffRole          string `json:"staff_role"`
	TranscriptDir      string `json:"transcript_dir"`
	DeleteDelaySeconds int    `json:"delete_delay_seconds"`
}

type AutoMessageConfig struct {
	PurgeLimit int `json:"purge_limit"`
}

// Default returns the config written out on first run, with every field
// the bot needs pre-filled except the token.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{Token: "YOUR_DISCORD_BOT_TOKEN_HERE"},
		Database: DatabaseConfig{
			SQLite:  SQLiteConfig{Path: "data/bot.db"},
			MongoDB: MongoDBConfig{URI: "mongodb://localhost:27017", Database: "spectre-store"},
		},
		Tickets: TicketsConfig{
			TranscriptDir:      "transcripts",
			DeleteDelaySeconds: 3,
		},
		AutoMessage: AutoMessageConfig{PurgeLimit: 5},
		LangPath:    "lang.yml",
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = "data/bot.db"
	}
	if cfg.Database.MongoDB.Database == "" {
		cfg.Database.MongoDB.Database = "spectre-store"
	}
	if cfg.Tickets.TranscriptDir == "" {
		cfg.Tickets.TranscriptDir = "transcripts"
	}
	if cfg.Tickets.DeleteDelaySeconds <= 0 {
		cfg.Tickets.DeleteDelaySeconds = 3
	}
	if cfg.AutoMessage.PurgeLimit <= 0 {
		cfg.AutoMessage.PurgeLimit = 5
	}
	if cfg.LangPath == "" {
		cfg.LangPath = "lang.yml"
	}
	return &cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
