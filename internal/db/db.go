package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"inhouse52/internal/models"
	"inhouse52/internal/store"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	counterNextUserID    = "next_user_id"
	counterNextContentID = "next_content_id"
)

// DB stores the application document in relational tables. Save rewrites
// every row inside one transaction so readers never see a half-written state.
type DB struct {
	*sql.DB
	driver string
	now    func() time.Time
}

var _ store.Store = (*DB)(nil)

func Init(driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite3" {
		// a single connection keeps ":memory:" databases shared and avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{DB: db, driver: driver, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS content (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			type TEXT NOT NULL,
			path TEXT NOT NULL,
			original_filename TEXT NOT NULL,
			owner_id INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// rebind rewrites ? placeholders into $n for postgres.
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Load reads the whole document. Empty tables yield the seeded default state.
func (db *DB) Load(ctx context.Context) (*models.AppState, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: db.driver == "postgres"})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	counters, err := db.getCounters(ctx, tx)
	if err != nil {
		return nil, err
	}
	users, err := db.getUsers(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 && len(counters) == 0 {
		return models.DefaultState(db.now()), nil
	}
	content, err := db.getContent(ctx, tx)
	if err != nil {
		return nil, err
	}

	state := &models.AppState{
		Users:         users,
		Content:       content,
		NextUserID:    counters[counterNextUserID],
		NextContentID: counters[counterNextContentID],
	}
	state.Normalize()
	return state, nil
}

// Save replaces every persisted row with the given state.
func (db *DB) Save(ctx context.Context, state *models.AppState) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, query := range []string{"DELETE FROM content", "DELETE FROM users", "DELETE FROM counters"} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	insertUser := db.rebind("INSERT INTO users (id, username, email, password, role, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	for _, u := range state.Users {
		if _, err := tx.ExecContext(ctx, insertUser, u.ID, u.Username, u.Email, u.Password, string(u.Role), u.CreatedAt.String()); err != nil {
			return fmt.Errorf("insert user %d: %w", u.ID, err)
		}
	}

	insertContent := db.rebind("INSERT INTO content (id, title, description, type, path, original_filename, owner_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	for _, c := range state.Content {
		if _, err := tx.ExecContext(ctx, insertContent, c.ID, c.Title, c.Description, c.Type, c.Path, c.OriginalFilename, c.OwnerID, c.CreatedAt.String()); err != nil {
			return fmt.Errorf("insert content %d: %w", c.ID, err)
		}
	}

	insertCounter := db.rebind("INSERT INTO counters (name, value) VALUES (?, ?)")
	for name, value := range map[string]int{
		counterNextUserID:    state.NextUserID,
		counterNextContentID: state.NextContentID,
	} {
		if _, err := tx.ExecContext(ctx, insertCounter, name, value); err != nil {
			return fmt.Errorf("insert counter %s: %w", name, err)
		}
	}

	return tx.Commit()
}

func (db *DB) getCounters(ctx context.Context, tx *sql.Tx) (map[string]int, error) {
	rows, err := tx.QueryContext(ctx, "SELECT name, value FROM counters")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[string]int)
	for rows.Next() {
		var name string
		var value int
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		counters[name] = value
	}
	return counters, rows.Err()
}

func (db *DB) getUsers(ctx context.Context, tx *sql.Tx) ([]models.User, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, username, email, password, role, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		var role, createdAt string
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &role, &createdAt); err != nil {
			return nil, err
		}
		user.Role = models.Role(role)
		if user.CreatedAt, err = models.ParseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("user %d: %w", user.ID, err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (db *DB) getContent(ctx context.Context, tx *sql.Tx) ([]models.ContentItem, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, title, description, type, path, original_filename, owner_id, created_at FROM content ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		var item models.ContentItem
		var createdAt string
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Type, &item.Path, &item.OriginalFilename, &item.OwnerID, &createdAt); err != nil {
			return nil, err
		}
		if item.CreatedAt, err = models.ParseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("content %d: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
