package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectre-bot/automsg"
	"spectre-bot/bot"
	"spectre-bot/catalog"
	"spectre-bot/config"
	"spectre-bot/handlers"
	"spectre-bot/lang"
	"spectre-bot/storage"
	"spectre-bot/ticket"
	"spectre-bot/transcript"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to config file")
	cleanup := flag.Bool("cleanup", false, "Remove slash commands on shutdown")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		if werr := config.SaveConfig(config.Default(), *configPath); werr != nil {
			log.Fatalf("Failed to write starter config: %v", werr)
		}
		log.Fatalf("Wrote starter config to %s. Set discord.token and restart.", *configPath)
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Discord.Token == "" || cfg.Discord.Token == "YOUR_DISCORD_BOT_TOKEN_HERE" {
		log.Fatal("Set your bot token in config.json → discord.token")
	}

	lang.Load(cfg.LangPath)

	cat := catalog.Load(cfg.Database.MongoDB.URI, cfg.Database.MongoDB.Database)

	if err := storage.InitDB(cfg.Database.SQLite.Path); err != nil {
		log.Printf("WARNING: Database init failed (%v). Ticket records will not be kept.", err)
		storage.DB = storage.NopDB{}
	} else {
		defer storage.DB.Close()
	}

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	archiver := &transcript.Archiver{
		Dir:     cfg.Tickets.TranscriptDir,
		History: b.Session,
	}

	tickets := &ticket.Manager{
		Session:     b.Session,
		Catalog:     cat,
		DB:          storage.DB,
		Archiver:    archiver,
		GuildID:     cfg.Discord.GuildID,
		StaffRoleID: cfg.Tickets.StaffRole,
		DeleteDelay: time.Duration(cfg.Tickets.DeleteDelaySeconds) * time.Second,
	}

	sched := automsg.New(&handlers.Broadcaster{Session: b.Session}, cfg.AutoMessage.PurgeLimit)
	sched.Run()
	defer sched.Shutdown()

	h := handlers.New(cfg, cat, tickets, sched)
	h.Register(b.Session)

	if err := b.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}
	defer b.Stop()

	registered := b.RegisterCommands(h.Commands())

	log.Println("Bot is running. Press Ctrl+C to exit.")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	if *cleanup {
		b.CleanupCommands(registered)
	}
}
