package runs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// PostgresRepository keeps run history in a shared Postgres database so
// several operators can see each other's runs.
type PostgresRepository struct {
	dsn string
	db  *sql.DB
}

func NewPostgresRepository(dsn string) *PostgresRepository {
	return &PostgresRepository{dsn: strings.TrimSpace(dsn)}
}

func (r *PostgresRepository) DB() *sql.DB { return r.db }

func (r *PostgresRepository) Init() error {
	if r.dsn == "" {
		return fmt.Errorf("runs db dsn is required")
	}
	db, err := sql.Open("postgres", r.dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	r.db = db
	return r.applyMigrations()
}

func (r *PostgresRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *PostgresRepository) applyMigrations() error {
	if _, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return err
	}
	var cur int
	if err := r.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&cur); err != nil {
		return err
	}

	type mig struct {
		v  int
		up func(*sql.DB) error
	}
	migs := []mig{
		{1, migrateV1RunsPG},
	}

	for _, m := range migs {
		if cur >= m.v {
			continue
		}
		if err := m.up(r.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.v, err)
		}
		if _, err := r.db.Exec(`INSERT INTO schema_migrations(version) VALUES ($1)`, m.v); err != nil {
			return err
		}
		cur = m.v
	}
	return nil
}

func migrateV1RunsPG(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config_id TEXT,
		config_name TEXT,
		config_version TEXT,
		target_id TEXT,
		target_name TEXT,
		target_kind TEXT,
		seed BIGINT,
		config_hash TEXT,
		status TEXT,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		stats TEXT,
		error TEXT
	)`)
	return err
}

func (r *PostgresRepository) Create(run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := r.db.Exec(`
	INSERT INTO runs (
		id, config_id, config_name, config_version,
		target_id, target_name, target_kind,
		seed, config_hash, status, started_at, completed_at, stats, error
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.ConfigID, run.ConfigName, run.ConfigVersion,
		run.TargetID, run.TargetName, run.TargetKind,
		run.Seed, run.ConfigHash, run.Status,
		run.StartedAt, nullableTime(run.CompletedAt),
		string(run.Stats), run.Error,
	)
	return err
}

func (r *PostgresRepository) Update(run *domain.Run) error {
	_, err := r.db.Exec(`
	UPDATE runs SET
		status = $1, completed_at = $2, stats = $3, error = $4
	WHERE id = $5`,
		run.Status, nullableTime(run.CompletedAt), string(run.Stats), run.Error, run.ID,
	)
	return err
}

func (r *PostgresRepository) Get(id string) (*domain.Run, error) {
	row := r.db.QueryRow(`
	SELECT id, config_id, config_name, config_version,
		target_id, target_name, target_kind,
		seed, config_hash, status, started_at, completed_at, stats, error
	FROM runs WHERE id = $1`, id)
	return scanRunPG(row)
}

func (r *PostgresRepository) List(limit int, status string) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if status != "" {
		rows, err = r.db.Query(`
		SELECT id, config_id, config_name, config_version,
			target_id, target_name, target_kind,
			seed, config_hash, status, started_at, completed_at, stats, error
		FROM runs
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT $2`, status, limit)
	} else {
		rows, err = r.db.Query(`
		SELECT id, config_id, config_name, config_version,
			target_id, target_name, target_kind,
			seed, config_hash, status, started_at, completed_at, stats, error
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRunPG(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scanRunPG(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var completedAt sql.NullTime
	var statsStr sql.NullString
	var errStr sql.NullString

	err := row.Scan(
		&run.ID, &run.ConfigID, &run.ConfigName, &run.ConfigVersion,
		&run.TargetID, &run.TargetName, &run.TargetKind,
		&run.Seed, &run.ConfigHash, &run.Status,
		&run.StartedAt, &completedAt, &statsStr, &errStr,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if statsStr.Valid && statsStr.String != "" {
		run.Stats = json.RawMessage(statsStr.String)
	}
	if errStr.Valid {
		run.Error = errStr.String
	}
	return &run, nil
}
