package app

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/repos/configs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/logging"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

func newService(t *testing.T) (*RunService, runs.Repository) {
	t.Helper()
	runRepo := runs.NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.db"))
	if err := runRepo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { runRepo.Close() })

	svc := NewRunService(
		configs.NewFileRepository(t.TempDir()),
		targets.NewFileRepository(t.TempDir()),
		runRepo,
		logging.NewLogger("error"),
		domain.DefaultBatchSize,
		domain.DefaultModulusFactor,
	)
	return svc, runRepo
}

func personConfig() *domain.GenerationConfig {
	return &domain.GenerationConfig{
		ID:   "inline",
		Name: "person fill",
		Tables: []domain.TableSpec{
			{
				// sqlite resolves the main schema the way mssql resolves dbo
				Name:   "person",
				Schema: "main",
				Rows:   20,
				Columns: []domain.ColumnSpec{
					{Name: "id", ColumnType: "int", Identity: true, IdentityIncr: 1},
					{Name: "first_name", ColumnType: "nvarchar", MinValue: f64(3), MaxValue: f64(12)},
					{Name: "age", ColumnType: "tinyint", MinValue: f64(18), MaxValue: f64(90), Nullable: true},
				},
			},
		},
	}
}

func TestStartRunFillsSQLiteTarget(t *testing.T) {
	svc, _ := newService(t)

	dbPath := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE person (id INTEGER, first_name TEXT, age INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	run, err := svc.StartRun(&domain.RunRequest{
		Config: personConfig(),
		Target: &domain.TargetConfig{ID: "t1", Name: "local", Kind: "sqlite", DSN: dbPath},
		Seed:   i64(7),
	})
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunStatusSuccess {
		t.Fatalf("expected success, got %s (%s)", run.Status, run.Error)
	}
	if run.Seed != 7 {
		t.Fatalf("expected requested seed to win, got %d", run.Seed)
	}
	if run.ConfigHash == "" {
		t.Fatal("expected config hash to be recorded")
	}

	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM person").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 20 {
		t.Fatalf("expected 20 rows, got %d", count)
	}

	var maxID int
	if err := db.QueryRow("SELECT MAX(id) FROM person").Scan(&maxID); err != nil {
		t.Fatal(err)
	}
	if maxID != 20 {
		t.Fatalf("expected identity sequence to reach 20, got %d", maxID)
	}

	var nulls int
	if err := db.QueryRow("SELECT COUNT(*) FROM person WHERE age IS NULL").Scan(&nulls); err != nil {
		t.Fatal(err)
	}
	if nulls != 2 {
		t.Fatalf("expected 2 NULLs over 20 rows with modulus 10, got %d", nulls)
	}
}

func TestStartRunRecordsFailureForMissingTable(t *testing.T) {
	svc, runRepo := newService(t)

	dbPath := filepath.Join(t.TempDir(), "empty.db")
	run, err := svc.StartRun(&domain.RunRequest{
		Config: personConfig(),
		Target: &domain.TargetConfig{ID: "t1", Name: "local", Kind: "sqlite", DSN: dbPath},
		Seed:   i64(1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunStatusFailed {
		t.Fatalf("expected failed run, got %s", run.Status)
	}

	stored, err := runRepo.Get(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.RunStatusFailed || stored.CompletedAt == nil {
		t.Fatalf("expected persisted failure, got %#v", stored)
	}
}

func TestStartRunAppliesRowOverrides(t *testing.T) {
	svc, _ := newService(t)

	dbPath := filepath.Join(t.TempDir(), "data.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE person (id INTEGER, first_name TEXT, age INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	run, err := svc.StartRun(&domain.RunRequest{
		Config:       personConfig(),
		Target:       &domain.TargetConfig{ID: "t1", Name: "local", Kind: "sqlite", DSN: dbPath},
		Seed:         i64(3),
		RowOverrides: map[string]int64{"person": 5},
	})
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunStatusSuccess {
		t.Fatalf("expected success, got %s (%s)", run.Status, run.Error)
	}

	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM person").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("expected 5 rows after override, got %d", count)
	}
}

func TestTestTargetChecksConnectivity(t *testing.T) {
	runRepo := runs.NewSQLiteRepository(filepath.Join(t.TempDir(), "runs.db"))
	if err := runRepo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { runRepo.Close() })

	targetsDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "data.db")
	doc := "id: local\nname: local\nkind: sqlite\ndsn: " + dbPath + "\n"
	if err := os.WriteFile(filepath.Join(targetsDir, "local.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	svc := NewRunService(
		configs.NewFileRepository(t.TempDir()),
		targets.NewFileRepository(targetsDir),
		runRepo,
		logging.NewLogger("error"),
		domain.DefaultBatchSize,
		domain.DefaultModulusFactor,
	)

	if _, err := svc.TestTarget("local"); err != nil {
		t.Fatalf("expected reachable target, got %v", err)
	}
	if _, err := svc.TestTarget("missing"); err == nil {
		t.Fatal("expected error for unknown target")
	}
}

func TestPreviewRendersStatementsWithoutDatabase(t *testing.T) {
	svc, runRepo := newService(t)

	statements, stats, err := svc.Preview(&domain.RunRequest{
		Config: personConfig(),
		Seed:   i64(7),
	})
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRows != 20 {
		t.Fatalf("expected 20 previewed rows, got %d", stats.TotalRows)
	}
	if len(statements) != 1 {
		t.Fatalf("expected a single batch at default batch size, got %d", len(statements))
	}
	if !strings.HasPrefix(statements[0], "INSERT INTO [main].[person] ") {
		t.Fatalf("unexpected statement: %s", statements[0])
	}

	// preview is repeatable for the same seed
	again, _, err := svc.Preview(&domain.RunRequest{Config: personConfig(), Seed: i64(7)})
	if err != nil {
		t.Fatal(err)
	}
	if statements[0] != again[0] {
		t.Fatal("expected identical preview for identical seed")
	}

	listed, err := runRepo.List(0, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 0 {
		t.Fatalf("preview must not create run rows, got %d", len(listed))
	}
}
