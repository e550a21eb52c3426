// Package export snapshots databases, pages and page bodies into SQLite.
package export

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentic-research/notional/internal/block"
	"github.com/agentic-research/notional/internal/property"
	"github.com/agentic-research/notional/internal/record"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS databases (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT,
	schema JSON NOT NULL,
	exported_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	database_id TEXT,
	title TEXT NOT NULL,
	url TEXT,
	created_time TEXT,
	last_edited_time TEXT,
	archived INTEGER NOT NULL DEFAULT 0,
	record JSON NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_database ON pages(database_id);

CREATE TABLE IF NOT EXISTS properties (
	page_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT,
	raw JSON NOT NULL,
	PRIMARY KEY (page_id, name)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS blocks (
	id TEXT NOT NULL,
	page_id TEXT NOT NULL,
	parent_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	depth INTEGER NOT NULL,
	type TEXT NOT NULL,
	text TEXT,
	record JSON NOT NULL,
	PRIMARY KEY (page_id, parent_id, position)
);
`

// SQLiteWriter writes rows in batched transactions. It is safe for
// concurrent use.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	stmtDB    *sql.Stmt
	stmtPage  *sql.Stmt
	stmtProp  *sql.Stmt
	stmtBlock *sql.Stmt
	batchSize int
	count     int
	pages     int
	mu        sync.Mutex
	now       func() time.Time
}

// NewSQLiteWriter opens (or creates) the database at path.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	w := &SQLiteWriter{db: db, batchSize: 1000, now: time.Now}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	if w.tx, err = w.db.Begin(); err != nil {
		return err
	}
	if w.stmtDB, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO databases (id, title, url, schema, exported_at)
		VALUES (?, ?, ?, ?, ?)`); err != nil {
		return err
	}
	if w.stmtPage, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO pages (id, database_id, title, url, created_time, last_edited_time, archived, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`); err != nil {
		return err
	}
	if w.stmtProp, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO properties (page_id, name, kind, value, raw)
		VALUES (?, ?, ?, ?, ?)`); err != nil {
		return err
	}
	w.stmtBlock, err = w.tx.Prepare(`
		INSERT OR REPLACE INTO blocks (id, page_id, parent_id, position, depth, type, text, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	return err
}

func (w *SQLiteWriter) commitTx() error {
	for _, st := range []*sql.Stmt{w.stmtDB, w.stmtPage, w.stmtProp, w.stmtBlock} {
		if st != nil {
			_ = st.Close()
		}
	}
	return w.tx.Commit()
}

// row counts one insert and rolls the transaction over every batchSize rows.
func (w *SQLiteWriter) row() error {
	w.count++
	if w.count < w.batchSize {
		return nil
	}
	w.count = 0
	if err := w.commitTx(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return w.beginTx()
}

// AddDatabase records a database and its schema.
func (w *SQLiteWriter) AddDatabase(db *record.Database) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var sch json.RawMessage = []byte("{}")
	if db.Schema != nil {
		var err error
		if sch, err = db.Schema.Encode(); err != nil {
			return err
		}
	}
	if _, err := w.stmtDB.Exec(db.ID, db.Name(), db.URL, string(sch), w.now().Unix()); err != nil {
		return fmt.Errorf("insert database %s: %w", db.ID, err)
	}
	return w.row()
}

// AddPage records a page, one row per property, and its loaded body.
func (w *SQLiteWriter) AddPage(p *record.Page) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, err := p.Encode()
	if err != nil {
		return err
	}
	var dbID *string
	if id := p.DatabaseID(); id != "" {
		dbID = &id
	}
	if _, err := w.stmtPage.Exec(p.ID, dbID, p.Title(), p.URL,
		string(p.CreatedTime), string(p.LastEditedTime), p.Archived, string(rec)); err != nil {
		return fmt.Errorf("insert page %s: %w", p.ID, err)
	}
	if err := w.row(); err != nil {
		return err
	}

	for name, v := range p.Properties() {
		raw, err := property.Encode(v)
		if err != nil {
			return fmt.Errorf("page %s property %q: %w", p.ID, name, err)
		}
		if _, err := w.stmtProp.Exec(p.ID, name, string(v.Kind()), v.String(), string(raw)); err != nil {
			return fmt.Errorf("insert property %q of %s: %w", name, p.ID, err)
		}
		if err := w.row(); err != nil {
			return err
		}
	}
	w.pages++

	if body, loaded := p.Body(); loaded {
		return w.addBlocks(p.ID, p.ID, body, 0)
	}
	return nil
}

func (w *SQLiteWriter) addBlocks(pageID, parentID string, blocks []*block.Block, depth int) error {
	for i, b := range blocks {
		rec, err := block.Encode(b)
		if err != nil {
			return fmt.Errorf("encode block %s: %w", b.ID, err)
		}
		if _, err := w.stmtBlock.Exec(b.ID, pageID, parentID, i, depth, string(b.Type()), b.PlainText(), string(rec)); err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
		if err := w.row(); err != nil {
			return err
		}
		if children, loaded := b.Children(); loaded && len(children) > 0 {
			if err := w.addBlocks(pageID, b.ID, children, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pages returns how many pages have been written.
func (w *SQLiteWriter) Pages() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pages
}

// Close commits the pending batch and closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tx != nil {
		if err := w.commitTx(); err != nil {
			_ = w.db.Close()
			return fmt.Errorf("commit: %w", err)
		}
		w.tx = nil
	}
	return w.db.Close()
}
