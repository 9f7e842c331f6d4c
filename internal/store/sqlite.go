package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database and creates the schema.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS roommate_likes (
        liker_id TEXT NOT NULL,
        liked_id TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        PRIMARY KEY (liker_id, liked_id)
    );

    CREATE INDEX IF NOT EXISTS idx_roommate_likes_liked ON roommate_likes(liked_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// Key-value methods
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	return s.SetWithQuota(key, value, "", 0)
}

// SetWithQuota writes key unless the keys under prefix, with key replaced by
// the new value, would exceed quotaBytes. A non-positive quota disables the
// check.
func (s *SQLiteStore) SetWithQuota(key, value, prefix string, quotaBytes int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin kv write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if quotaBytes > 0 {
		var used int
		err := tx.QueryRow(`SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)
            FROM kv WHERE substr(key, 1, length(?)) = ? AND key <> ?`, prefix, prefix, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to measure kv usage: %w", err)
		}
		if used+len(key)+len(value) > quotaBytes {
			return ErrQuotaExceeded
		}
	}

	_, err = tx.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Like methods

// CreateLike records that likerID likes likedID. Liking twice is a no-op.
func (s *SQLiteStore) CreateLike(likerID, likedID string) error {
	stmt, err := s.db.Prepare("INSERT OR IGNORE INTO roommate_likes (liker_id, liked_id, created_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare like insert: %w", err)
	}
	defer stmt.Close()

	if _, err = stmt.Exec(likerID, likedID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to execute like insert: %w", err)
	}
	return nil
}

// DeleteLike removes a like and reports whether one existed.
func (s *SQLiteStore) DeleteLike(likerID, likedID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM roommate_likes WHERE liker_id = ? AND liked_id = ?", likerID, likedID)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) HasLike(likerID, likedID string) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM roommate_likes WHERE liker_id = ? AND liked_id = ?", likerID, likedID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to query like: %w", err)
	}
	return n > 0, nil
}

// GetLikesByLiker returns the likes likerID has given, oldest first.
func (s *SQLiteStore) GetLikesByLiker(likerID string) ([]Like, error) {
	rows, err := s.db.Query("SELECT liked_id, created_at FROM roommate_likes WHERE liker_id = ? ORDER BY created_at ASC", likerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	var likes []Like
	for rows.Next() {
		l := Like{LikerID: likerID}
		if err := rows.Scan(&l.LikedID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like row: %w", err)
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// GetMatchesByUserID returns every mutual like involving userID, with
// userID always reported as User1ID.
func (s *SQLiteStore) GetMatchesByUserID(userID string) ([]Match, error) {
	query := `
        SELECT a.liked_id, a.created_at, b.created_at
        FROM roommate_likes a
        JOIN roommate_likes b ON b.liker_id = a.liked_id AND b.liked_id = a.liker_id
        WHERE a.liker_id = ?
        ORDER BY a.liked_id
    `
	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var other string
		var mine, theirs time.Time
		if err := rows.Scan(&other, &mine, &theirs); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matchedAt := mine
		if theirs.After(mine) {
			matchedAt = theirs
		}
		matches = append(matches, Match{User1ID: userID, User2ID: other, MatchedAt: matchedAt})
	}
	return matches, rows.Err()
}
