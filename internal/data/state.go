package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shiroyume/cardwarden/internal/biz/domain"
	"github.com/shiroyume/cardwarden/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// stateRepo implements the per-user state store on an in-memory SQLite
// database. All state is ephemeral by design: a restart wipes everything.
type stateRepo struct {
	db *sql.DB
}

// NewStateRepo creates a new per-user state store.
func NewStateRepo() (repo.StateRepo, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps the in-memory database alive and
	// serializes concurrent handler access.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trackers (
			user_id TEXT PRIMARY KEY,
			channel_id TEXT NOT NULL,
			command TEXT NOT NULL,
			opt_in INTEGER DEFAULT 0,
			report_channel_id TEXT DEFAULT '',
			report_msg_id TEXT DEFAULT '',
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create trackers table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reply_bindings (
			message_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create reply_bindings table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS codes (
			user_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			code TEXT NOT NULL,
			PRIMARY KEY (user_id, code)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create codes table: %w", err)
	}

	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_bindings_user ON reply_bindings(user_id)`)
	_, _ = db.Exec(`CREATE INDEX IF NOT EXISTS idx_codes_order ON codes(user_id, position)`)

	fmt.Println("[State] Store initialized")
	return &stateRepo{db: db}, nil
}

// ClearUser wipes the tracker, accumulated codes, and reply bindings of a
// user in one transaction, so no stale mapping survives a new trigger.
func (r *stateRepo) ClearUser(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin clear: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM trackers WHERE user_id = ?`,
		`DELETE FROM reply_bindings WHERE user_id = ?`,
		`DELETE FROM codes WHERE user_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("failed to clear user state: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

func (r *stateRepo) SaveTracker(ctx context.Context, t *domain.Tracker) error {
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trackers (user_id, channel_id, command, opt_in, report_channel_id, report_msg_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			command = excluded.command,
			opt_in = excluded.opt_in,
			report_channel_id = excluded.report_channel_id,
			report_msg_id = excluded.report_msg_id
	`, t.UserID, t.ChannelID, t.Command, t.OptIn, t.ReportChannelID, t.ReportMessageID, createdAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save tracker: %w", err)
	}
	return nil
}

func (r *stateRepo) GetTracker(ctx context.Context, userID string) (*domain.Tracker, error) {
	var t domain.Tracker
	var createdAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, channel_id, command, opt_in, report_channel_id, report_msg_id, created_at
		FROM trackers WHERE user_id = ?
	`, userID).Scan(&t.UserID, &t.ChannelID, &t.Command, &t.OptIn, &t.ReportChannelID, &t.ReportMessageID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracker: %w", err)
	}
	t.CreatedAt = time.Unix(createdAt, 0)
	return &t, nil
}

func (r *stateRepo) SetOptIn(ctx context.Context, userID string, optIn bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE trackers SET opt_in = ? WHERE user_id = ?
	`, optIn, userID)
	if err != nil {
		return fmt.Errorf("failed to set opt-in: %w", err)
	}
	return nil
}

func (r *stateRepo) SetReportAnchor(ctx context.Context, userID, channelID, messageID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE trackers SET report_channel_id = ?, report_msg_id = ? WHERE user_id = ?
	`, channelID, messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to set report anchor: %w", err)
	}
	return nil
}

func (r *stateRepo) BindReply(ctx context.Context, messageID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reply_bindings (message_id, user_id)
		VALUES (?, ?)
	`, messageID, userID)
	if err != nil {
		return fmt.Errorf("failed to bind reply: %w", err)
	}
	return nil
}

func (r *stateRepo) UserForReply(ctx context.Context, messageID string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id FROM reply_bindings WHERE message_id = ?
	`, messageID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up reply binding: %w", err)
	}
	return userID, nil
}

// AppendCodes inserts codes not yet present for the user, assigning
// increasing positions so first-seen order is preserved, and returns the
// number of newly added codes.
func (r *stateRepo) AppendCodes(ctx context.Context, userID string, codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, code := range codes {
		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO codes (user_id, position, code)
			VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM codes WHERE user_id = ?), ?)
		`, userID, userID, code)
		if err != nil {
			return 0, fmt.Errorf("failed to append code: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count appended codes: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit append: %w", err)
	}
	return added, nil
}

func (r *stateRepo) ListCodes(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code FROM codes WHERE user_id = ? ORDER BY position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Close closes the database connection.
func (r *stateRepo) Close() error {
	return r.db.Close()
}
