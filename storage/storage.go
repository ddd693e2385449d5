package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var DB Database

// Database is the ticket side-table: one row per ticket channel, closed rows
// keep the closure details and the archive location.
type Database interface {
	Init() error
	Close() error

	AddTicket(t TicketRecord) error
	CloseTicket(channelID, closedBy, closedAt, archivePath string) error
	Ticket(channelID string) (*TicketRecord, error)
	OpenTickets(guildID string) ([]TicketRecord, error)
}

type TicketRecord struct {
	ChannelID   string `json:"channel_id"`
	GuildID     string `json:"guild_id"`
	OwnerID     string `json:"owner_id"`
	OwnerName   string `json:"owner_name"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
	ClosedBy    string `json:"closed_by,omitempty"`
	ClosedAt    string `json:"closed_at,omitempty"`
	ArchivePath string `json:"archive_path,omitempty"`
}

func InitDB(path string) error {
	db := &SQLiteDB{Path: path}
	if err := db.Init(); err != nil {
		return err
	}
	DB = db
	return nil
}

type SQLiteDB struct {
	Path string
	db   *sql.DB
}

func (s *SQLiteDB) Init() error {
	if dir := filepath.Dir(s.Path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return fmt.Errorf("sqlite open: %w", err)
	}
	s.db = db

	schema := `
	CREATE TABLE IF NOT EXISTS tickets (
		channel_id   TEXT PRIMARY KEY,
		guild_id     TEXT NOT NULL,
		owner_id     TEXT NOT NULL,
		owner_name   TEXT NOT NULL,
		category     TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		closed_by    TEXT NOT NULL DEFAULT '',
		closed_at    TEXT NOT NULL DEFAULT '',
		archive_path TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_guild_open ON tickets(guild_id, closed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite schema: %w", err)
	}
	log.Printf("[DB] SQLite initialised at %s", s.Path)
	return nil
}

func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDB) AddTicket(t TicketRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO tickets (channel_id, guild_id, owner_id, owner_name, category, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		t.ChannelID, t.GuildID, t.OwnerID, t.OwnerName, t.Category, t.CreatedAt,
	)
	return err
}

func (s *SQLiteDB) CloseTicket(channelID, closedBy, closedAt, archivePath string) error {
	res, err := s.db.Exec(
		"UPDATE tickets SET closed_by = ?, closed_at = ?, archive_path = ? WHERE channel_id = ?",
		closedBy, closedAt, archivePath, channelID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ticket %s not found", channelID)
	}
	return nil
}

func (s *SQLiteDB) Ticket(channelID string) (*TicketRecord, error) {
	row := s.db.QueryRow(
		"SELECT channel_id, guild_id, owner_id, owner_name, category, created_at, closed_by, closed_at, archive_path FROM tickets WHERE channel_id = ?",
		channelID,
	)
	var t TicketRecord
	err := row.Scan(&t.ChannelID, &t.GuildID, &t.OwnerID, &t.OwnerName, &t.Category, &t.CreatedAt, &t.ClosedBy, &t.ClosedAt, &t.ArchivePath)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ticket %s not found", channelID)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteDB) OpenTickets(guildID string) ([]TicketRecord, error) {
	rows, err := s.db.Query(
		"SELECT channel_id, guild_id, owner_id, owner_name, category, created_at, closed_by, closed_at, archive_path FROM tickets WHERE guild_id = ? AND closed_at = '' ORDER BY created_at",
		guildID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []TicketRecord
	for rows.Next() {
		var t TicketRecord
		if err := rows.Scan(&t.ChannelID, &t.GuildID, &t.OwnerID, &t.OwnerName, &t.Category, &t.CreatedAt, &t.ClosedBy, &t.ClosedAt, &t.ArchivePath); err != nil {
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// NopDB is the fallback store used when SQLite fails to initialise: the bot
// keeps working, it just stops recording ticket rows.
type NopDB struct{}

func (NopDB) Init() error  { return nil }
func (NopDB) Close() error { return nil }
func (NopDB) AddTicket(TicketRecord) error {
	return nil
}
func (NopDB) CloseTicket(_, _, _, _ string) error       { return nil }
func (NopDB) Ticket(string) (*TicketRecord, error)      { return nil, fmt.Errorf("ticket store unavailable") }
func (NopDB) OpenTickets(string) ([]TicketRecord, error) { return nil, nil }
