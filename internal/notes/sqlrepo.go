package notes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"autonotes/internal/health"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notes (
	note_id    TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	doc        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS notes_created_at ON notes (created_at DESC, note_id DESC);
`

// SQLiteRepo keeps notes as JSON documents in a local SQLite file, keyed by
// UUIDv7. It serves local runs and tests where no MongoDB is available.
type SQLiteRepo struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteRepo(path string) *SQLiteRepo {
	return &SQLiteRepo{path: path}
}

func (r *SQLiteRepo) Open(ctx context.Context) error {
	_, err := r.conn(ctx)
	return err
}

func (r *SQLiteRepo) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	if err != nil {
		return storageErr("close sqlite", err)
	}
	return nil
}

func (r *SQLiteRepo) conn(ctx context.Context) (*sql.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}
	if r.path == "" {
		return nil, storageErr("SQLITE_PATH not configured", errUnconfigured)
	}

	db, err := sql.Open("sqlite", r.path)
	if err != nil {
		return nil, storageErr("open sqlite", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storageErr("create sqlite schema", err)
	}
	r.db = db
	return db, nil
}

func (r *SQLiteRepo) Insert(ctx context.Context, n *Note) (string, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return "", err
	}

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", storageErr("generate note ID", err)
	}

	doc, err := json.Marshal(n)
	if err != nil {
		return "", storageErr("encode note", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO notes (note_id, created_at, doc) VALUES (?, ?, ?)`,
		id.String(), n.CreatedAt.UnixNano(), string(doc),
	)
	if err != nil {
		return "", storageErr("Database error while saving note", err)
	}
	return id.String(), nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (*Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalidID(id)
	}

	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	var doc string
	err = db.QueryRowContext(ctx, `SELECT doc FROM notes WHERE note_id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, storageErr("Database error while retrieving note", err)
	}
	return decodeDoc(id, doc)
}

func (r *SQLiteRepo) List(ctx context.Context, limit, skip int) ([]*Note, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT note_id, doc FROM notes ORDER BY created_at DESC, note_id DESC LIMIT ? OFFSET ?`,
		limit, skip,
	)
	if err != nil {
		return nil, storageErr("Database error while retrieving notes", err)
	}
	defer rows.Close()

	out := []*Note{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, storageErr("scan note", err)
		}
		n, err := decodeDoc(id, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("Database error while retrieving notes", err)
	}
	return out, nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, invalidID(id)
	}

	db, err := r.conn(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, `DELETE FROM notes WHERE note_id = ?`, id)
	if err != nil {
		return false, storageErr("Database error while deleting note", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("Database error while deleting note", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepo) Ping(ctx context.Context) health.Status {
	db, err := r.conn(ctx)
	if err != nil {
		if errors.Is(err, errUnconfigured) {
			return health.Fail(health.StateUnconfigured, err.Error())
		}
		return health.Fail(health.StateUnreachable, err.Error())
	}
	if err := db.PingContext(ctx); err != nil {
		return health.Fail(health.StateUnreachable, err.Error())
	}
	return health.OK()
}

func decodeDoc(id, doc string) (*Note, error) {
	var n Note
	if err := json.Unmarshal([]byte(doc), &n); err != nil {
		return nil, storageErr("decode note "+id, err)
	}
	n.ID = id
	n.normalize()
	return &n, nil
}
