package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Target runs generated batches against a SQLite file. SQLite accepts the
// bracketed identifiers the assembler emits, so the same statements work
// unchanged; identity handling degrades to the configured seed because
// SQLite has no IDENT_CURRENT equivalent for explicit inserts.
type Target struct {
	path string
	db   *sql.DB
	tx   *sql.Tx
}

func NewTarget(path string) *Target {
	return &Target{path: path}
}

func (t *Target) Kind() string { return "sqlite" }

func (t *Target) Connect() error {
	db, err := sql.Open("sqlite3", t.path)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	t.db = db
	return nil
}

func (t *Target) Close() error {
	if t.tx != nil {
		t.tx.Rollback()
		t.tx = nil
	}
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

func (t *Target) Begin() error {
	if t.tx != nil {
		return fmt.Errorf("transaction already open")
	}
	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	t.tx = tx
	return nil
}

func (t *Target) Commit() error {
	if t.tx == nil {
		return fmt.Errorf("no open transaction")
	}
	err := t.tx.Commit()
	t.tx = nil
	return err
}

func (t *Target) Rollback() error {
	if t.tx == nil {
		return nil
	}
	err := t.tx.Rollback()
	t.tx = nil
	return err
}

func (t *Target) ExecNonQuery(query string) error {
	if t.tx != nil {
		_, err := t.tx.Exec(query)
		return err
	}
	_, err := t.db.Exec(query)
	return err
}

func (t *Target) ResolveIdentity(schema, table, column string) (int64, bool, error) {
	return 0, false, nil
}

func (t *Target) SetIdentityInsert(schema, table string, on bool) error {
	// SQLite always allows explicit values in INTEGER PRIMARY KEY columns.
	return nil
}
