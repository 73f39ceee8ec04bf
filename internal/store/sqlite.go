package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"stock-assistant/internal/chat"
	"stock-assistant/internal/ticker"
)

type Store struct {
	db *sql.DB
}

type ChatMessageRecord struct {
	ID        string `json:"id"`
	TS        int64  `json:"ts"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Intent    string `json:"intent"`
	CreatedAt string `json:"created_at"`
}

type MarketSnapshot struct {
	TS        int64   `json:"ts"`
	Cycle     uint64  `json:"cycle"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Synthetic bool    `json:"synthetic"`
	Raw       string  `json:"raw"`
	CreatedAt string  `json:"created_at"`
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "data/app.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func dsn(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(3000)&_pragma=journal_mode(WAL)"
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			ts INTEGER NOT NULL,
			role TEXT,
			content TEXT,
			intent TEXT,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_ts ON chat_messages(ts);`,
		`CREATE TABLE IF NOT EXISTS market_snapshot (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			cycle INTEGER,
			symbol TEXT,
			price REAL,
			change_pct REAL,
			synthetic INTEGER,
			raw TEXT,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_market_snapshot_ts ON market_snapshot(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_market_snapshot_symbol ON market_snapshot(symbol);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) InsertChatMessage(m ChatMessageRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO chat_messages (id, ts, role, content, intent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.TS, m.Role, m.Content, m.Intent, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// SaveMessage records one chat history entry.
func (s *Store) SaveMessage(m chat.Message) error {
	return s.InsertChatMessage(ChatMessageRecord{
		ID:        m.ID,
		TS:        m.CreatedAt.Unix(),
		Role:      string(m.Role),
		Content:   m.Content,
		Intent:    m.Intent,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	})
}

// QueryChatMessages returns the newest limit messages, oldest first.
func (s *Store) QueryChatMessages(limit int) ([]ChatMessageRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	rows, err := s.db.Query(
		`SELECT id, ts, role, content, intent, created_at FROM (
			SELECT seq, id, ts, role, content, intent, created_at
			FROM chat_messages ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var out []ChatMessageRecord
	for rows.Next() {
		var m ChatMessageRecord
		if err := rows.Scan(&m.ID, &m.TS, &m.Role, &m.Content, &m.Intent, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows chat message: %w", err)
	}
	return out, nil
}

func (s *Store) InsertMarketSnapshot(ms MarketSnapshot) error {
	if s == nil || s.db == nil {
		return nil
	}
	if ms.CreatedAt == "" {
		ms.CreatedAt = time.Now().Format(time.RFC3339)
	}
	synthetic := 0
	if ms.Synthetic {
		synthetic = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO market_snapshot (ts, cycle, symbol, price, change_pct, synthetic, raw, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ms.TS, ms.Cycle, ms.Symbol, ms.Price, ms.ChangePct, synthetic, ms.Raw, ms.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert market snapshot: %w", err)
	}
	return nil
}

// ArchiveSnapshot writes one row per symbol of a published ticker snapshot
// in a single transaction.
func (s *Store) ArchiveSnapshot(snap *ticker.Snapshot) error {
	if s == nil || s.db == nil || snap == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := time.Now().Format(time.RFC3339)
	for _, q := range snap.Quotes() {
		raw, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("encode quote %s: %w", q.Symbol, err)
		}
		synthetic := 0
		if q.Synthetic {
			synthetic = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO market_snapshot (ts, cycle, symbol, price, change_pct, synthetic, raw, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.UpdatedAt.Unix(), snap.Cycle, q.Symbol, q.Price, q.ChangePct, synthetic, string(raw), createdAt,
		); err != nil {
			return fmt.Errorf("insert market snapshot: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	return nil
}

func (s *Store) QueryMarketSnapshots(symbol string, limit int, offset int) ([]MarketSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ts, cycle, symbol, price, change_pct, synthetic, raw, created_at
		FROM market_snapshot WHERE symbol = ?
		ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, symbol, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query market snapshot: %w", err)
	}
	defer rows.Close()
	var out []MarketSnapshot
	for rows.Next() {
		var ms MarketSnapshot
		var synthetic int
		if err := rows.Scan(&ms.TS, &ms.Cycle, &ms.Symbol, &ms.Price, &ms.ChangePct, &synthetic, &ms.Raw, &ms.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan market snapshot: %w", err)
		}
		ms.Synthetic = synthetic == 1
		out = append(out, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows market snapshot: %w", err)
	}
	return out, nil
}

// PruneBefore deletes chat messages and snapshot rows older than cutoff and
// reports how many rows went.
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	for _, table := range []string{"chat_messages", "market_snapshot"} {
		res, err := s.db.Exec(`DELETE FROM `+table+` WHERE ts < ?`, cutoff.Unix())
		if err != nil {
			return total, fmt.Errorf("prune %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("prune %s rows: %w", table, err)
		}
		total += n
	}
	return total, nil
}
