package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/viant/annreg/engine"
)

const catalogDDL = `CREATE TABLE IF NOT EXISTS ann_storage (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// CatalogStore keeps streams as rows of the ann_storage table in SQLite
// databases. Keys have the form "<database path>#<row key>".
type CatalogStore struct {
	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// NewCatalogStore returns a store that opens databases on first use.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{dbs: map[string]*sql.DB{}}
}

func splitCatalogKey(key string) (string, string, error) {
	i := strings.LastIndex(key, "#")
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("%w: want <database>#<key>, got %q", ErrInvalidLocation, key)
	}
	return key[:i], key[i+1:], nil
}

func (s *CatalogStore) db(ctx context.Context, path string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if db, ok := s.dbs[path]; ok {
		return db, nil
	}
	db, err := engine.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open catalog %s: %w", path, err)
	}
	// one connection serializes writers; concurrent saves would otherwise hit SQLITE_BUSY
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, catalogDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init catalog %s: %w", path, err)
	}
	s.dbs[path] = db
	return db, nil
}

// Create buffers the stream and upserts it into the catalog on Close.
func (s *CatalogStore) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	path, name, err := splitCatalogKey(key)
	if err != nil {
		return nil, err
	}
	db, err := s.db(ctx, path)
	if err != nil {
		return nil, err
	}
	return &catalogWriter{ctx: ctx, db: db, key: name}, nil
}

// Open reads the stored row.
func (s *CatalogStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, name, err := splitCatalogKey(key)
	if err != nil {
		return nil, err
	}
	db, err := s.db(ctx, path)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = db.QueryRowContext(ctx, `SELECT data FROM ann_storage WHERE key = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Keys lists the row keys stored in the database at path.
func (s *CatalogStore) Keys(ctx context.Context, path string) ([]string, error) {
	db, err := s.db(ctx, path)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT key FROM ann_storage ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes every opened database.
func (s *CatalogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for path, db := range s.dbs {
		errs = append(errs, db.Close())
		delete(s.dbs, path)
	}
	return errors.Join(errs...)
}

type catalogWriter struct {
	ctx    context.Context
	db     *sql.DB
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *catalogWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	return w.buf.Write(p)
}

func (w *catalogWriter) Close() error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	data := w.buf.Bytes()
	if data == nil {
		data = []byte{}
	}
	_, err := w.db.ExecContext(w.ctx, `INSERT INTO ann_storage (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		w.key, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store: write %s: %w", w.key, err)
	}
	return nil
}

// Abort drops the buffered stream; the stored row is left as it was.
func (w *catalogWriter) Abort(error) error {
	if w.closed {
		return io.ErrClosedPipe
	}
	w.closed = true
	w.buf.Reset()
	return nil
}
