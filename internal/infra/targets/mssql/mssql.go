package mssql

import (
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/mmrzaf/dbfill/internal/assemble"
)

// Target executes generated batches against SQL Server. One transaction is
// open at a time; Begin/Commit/Rollback map directly onto it.
type Target struct {
	dsn string
	db  *sql.DB
	tx  *sql.Tx
}

func NewTarget(dsn string) *Target {
	return &Target{dsn: dsn}
}

func (t *Target) Kind() string { return "mssql" }

func (t *Target) Connect() error {
	db, err := sql.Open("sqlserver", t.dsn)
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

// ResolveIdentity reads the table's current identity value so generated
// sequences continue from existing data instead of colliding with it.
func (t *Target) ResolveIdentity(schema, table, column string) (int64, bool, error) {
	query := `SELECT CAST(IDENT_CURRENT(@p1) AS BIGINT)`
	var current sql.NullInt64
	if err := t.db.QueryRow(query, schema+"."+table).Scan(&current); err != nil {
		return 0, false, err
	}
	if !current.Valid {
		// table has no identity column or no rows yet
		return 0, false, nil
	}
	return current.Int64, true, nil
}

func (t *Target) SetIdentityInsert(schema, table string, on bool) error {
	state := "OFF"
	if on {
		state = "ON"
	}
	query := fmt.Sprintf("SET IDENTITY_INSERT %s.%s %s",
		assemble.QuoteIdent(schema), assemble.QuoteIdent(table), state)
	return t.ExecNonQuery(query)
}
