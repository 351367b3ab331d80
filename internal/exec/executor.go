package exec

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmrzaf/dbfill/internal/assemble"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/logging"
	"github.com/mmrzaf/dbfill/internal/randomize"
)

// Target is the database collaborator: connection management and statement
// execution live behind it. One transaction wraps each table's batches.
type Target interface {
	Connect() error
	Close() error
	Begin() error
	Commit() error
	Rollback() error
	ExecNonQuery(sql string) error
	// ResolveIdentity returns the current identity value for a column, with
	// ok=false when the target cannot answer (the configured seed is used).
	ResolveIdentity(schema, table, column string) (current int64, ok bool, err error)
	// SetIdentityInsert enables or disables explicit identity inserts; a
	// no-op on engines that always allow them.
	SetIdentityInsert(schema, table string, on bool) error
	Kind() string
}

type Executor struct {
	logger        *logging.Logger
	batchSize     int
	modulusFactor int
	maxAttempts   int
}

func NewExecutor(logger *logging.Logger, batchSize, modulusFactor int) *Executor {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}
	if modulusFactor <= 0 {
		modulusFactor = domain.DefaultModulusFactor
	}
	return &Executor{
		logger:        logger.WithComponent("exec"),
		batchSize:     batchSize,
		modulusFactor: modulusFactor,
		maxAttempts:   assemble.DefaultMaxAttempts,
	}
}

// Execute fills every table in the config, one table at a time. Table
// failures are contained: the table's transaction is rolled back, the error
// recorded in its stats, and processing continues. Only the initial connect
// is fatal to the run.
func (e *Executor) Execute(cfg *domain.GenerationConfig, target Target, seed int64) (*domain.RunStats, error) {
	if err := target.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to target: %w", err)
	}
	defer target.Close()

	now := time.Now()
	stats := &domain.RunStats{
		TableStats: make([]domain.TableRunStats, 0, len(cfg.Tables)),
	}

	for i := range cfg.Tables {
		table := &cfg.Tables[i]
		ctx := randomize.NewContext(seed+int64(i), e.logger)

		ts := e.fillTable(ctx, table, target, now)
		stats.TableStats = append(stats.TableStats, ts)
		stats.TotalRows += ts.RowsInserted

		switch {
		case ts.Error != "":
			stats.TablesFailed++
		case ts.RowsInserted == 0:
			stats.TablesSkipped++
		default:
			stats.TablesFilled++
		}
	}

	return stats, nil
}

func (e *Executor) fillTable(ctx *randomize.Context, table *domain.TableSpec, target Target, now time.Time) domain.TableRunStats {
	start := time.Now()
	ts := domain.TableRunStats{TableName: table.Name}
	defer func() {
		ts.DurationSeconds = time.Since(start).Seconds()
	}()

	columns, unique, skipped := e.resolveColumns(table, now)
	ts.SkippedColumns = skipped

	if len(columns) == 0 {
		e.logger.Warnw("skipping table, no usable columns", map[string]any{"table": table.Name})
		return ts
	}
	if table.HasUniqueIndex && len(unique) == 0 {
		ts.Error = "table flagged has_unique_index but no usable unique-index column"
		e.logger.Errorw("skipping table", map[string]any{"table": table.Name, "error": ts.Error})
		return ts
	}

	identityStarts, err := e.resolveIdentityStarts(table, columns, target)
	if err != nil {
		ts.Error = err.Error()
		return ts
	}

	modulus := table.ModulusFactor
	if modulus <= 0 {
		modulus = e.modulusFactor
	}
	batchSize := table.BatchSize
	if batchSize <= 0 {
		batchSize = e.batchSize
	}

	assembler := assemble.NewRowAssembler(columns, unique, identityStarts, modulus, e.maxAttempts)

	if err := target.Begin(); err != nil {
		ts.Error = fmt.Sprintf("begin transaction: %v", err)
		return ts
	}

	inserted, err := e.insertRows(ctx, table, target, assembler, batchSize)
	if err != nil {
		target.Rollback()
		ts.Error = err.Error()
		if errors.Is(err, assemble.ErrConstraintUnsatisfiable) {
			e.logger.Errorw("unique index value space exhausted", map[string]any{
				"table": table.Name, "rows_requested": table.Rows,
			})
		} else {
			e.logger.Errorw("table failed, transaction rolled back", map[string]any{
				"table": table.Name, "error": err.Error(),
			})
		}
		return ts
	}

	if err := target.Commit(); err != nil {
		ts.Error = fmt.Sprintf("commit: %v", err)
		return ts
	}

	ts.RowsInserted = inserted
	e.logger.Infow("table filled", map[string]any{"table": table.Name, "rows": inserted})
	return ts
}

// resolveColumns turns column specs into generation rules. A column that
// fails to resolve is a configuration error: it is reported and skipped,
// not fatal to the batch.
func (e *Executor) resolveColumns(table *domain.TableSpec, now time.Time) (columns, unique []assemble.ColumnRule, skipped []string) {
	for _, col := range table.Columns {
		if col.Identity {
			// identity values come from the sequence, no rule needed
			cr := assemble.ColumnRule{Column: col}
			columns = append(columns, cr)
			continue
		}

		rule, err := randomize.FromColumn(col, now)
		if err != nil {
			e.logger.Errorw("skipping column", map[string]any{
				"table": table.Name, "column": col.Name, "error": err.Error(),
			})
			skipped = append(skipped, col.Name)
			continue
		}

		cr := assemble.ColumnRule{Column: col, Rule: rule}
		columns = append(columns, cr)
		if table.HasUniqueIndex && col.UniqueIndex {
			unique = append(unique, cr)
		}
	}
	return columns, unique, skipped
}

func (e *Executor) resolveIdentityStarts(table *domain.TableSpec, columns []assemble.ColumnRule, target Target) (map[string]int64, error) {
	starts := make(map[string]int64)
	for _, cr := range columns {
		if !cr.Column.Identity {
			continue
		}
		current, ok, err := target.ResolveIdentity(table.SchemaOrDefault(), table.Name, cr.Column.Name)
		if err != nil {
			return nil, fmt.Errorf("resolve identity for %s.%s: %w", table.Name, cr.Column.Name, err)
		}
		if ok {
			starts[cr.Column.Name] = current
		} else {
			starts[cr.Column.Name] = cr.Column.IdentitySeed
		}
	}
	return starts, nil
}

func (e *Executor) insertRows(ctx *randomize.Context, table *domain.TableSpec, target Target, assembler *assemble.RowAssembler, batchSize int) (int64, error) {
	schema := table.SchemaOrDefault()
	columnNames := assembler.ColumnNames()

	if assembler.HasIdentity() {
		if err := target.SetIdentityInsert(schema, table.Name, true); err != nil {
			return 0, fmt.Errorf("enable identity insert: %w", err)
		}
		defer target.SetIdentityInsert(schema, table.Name, false)
	}

	var inserted int64
	batch := make([][]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		sql := assemble.BuildInsert(schema, table.Name, columnNames, batch)
		if err := target.ExecNonQuery(sql); err != nil {
			return fmt.Errorf("insert batch into %s: %w", table.Name, err)
		}
		inserted += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for rowIdx := int64(0); rowIdx < table.Rows; rowIdx++ {
		row, err := assembler.NextRow(ctx)
		if err != nil {
			return inserted, fmt.Errorf("table %s, row %d: %w", table.Name, rowIdx, err)
		}
		batch = append(batch, row)

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}

	if err := flush(); err != nil {
		return inserted, err
	}
	return inserted, nil
}
