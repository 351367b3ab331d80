package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/randomize"
	"github.com/mmrzaf/dbfill/internal/sqltype"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// identifier validation: allow simple SQL identifiers only (prevents
// injection via table/column names).
var (
	identRe       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reservedWords = map[string]struct{}{
		"add": {}, "all": {}, "alter": {}, "and": {}, "any": {}, "as": {},
		"asc": {}, "between": {}, "by": {}, "case": {}, "check": {},
		"column": {}, "constraint": {}, "create": {}, "cross": {}, "current_date": {},
		"current_time": {}, "current_timestamp": {}, "database": {}, "default": {}, "delete": {},
		"desc": {}, "distinct": {}, "do": {}, "drop": {}, "else": {},
		"end": {}, "except": {}, "exists": {}, "false": {}, "for": {},
		"foreign": {}, "from": {}, "full": {}, "grant": {}, "group": {},
		"having": {}, "in": {}, "index": {}, "inner": {}, "insert": {},
		"intersect": {}, "into": {}, "is": {}, "join": {}, "key": {},
		"left": {}, "like": {}, "limit": {}, "natural": {}, "not": {},
		"null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
		"outer": {}, "primary": {}, "references": {}, "returning": {}, "revoke": {},
		"right": {}, "schema": {}, "select": {}, "set": {}, "table": {},
		"then": {}, "to": {}, "true": {}, "truncate": {}, "union": {},
		"unique": {}, "update": {}, "user": {}, "using": {}, "values": {},
		"view": {}, "when": {}, "where": {}, "with": {},
	}
)

func IsValidIdentifier(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !identRe.MatchString(s) {
		return false
	}
	if _, ok := reservedWords[strings.ToLower(s)]; ok {
		return false
	}
	return true
}

// ValidateConfig checks a generation config against the type enum and the
// category dispatch table so that every rule misses at startup, never
// mid-run.
func (v *Validator) ValidateConfig(cfg *domain.GenerationConfig) error {
	if cfg.Name == "" {
		return errors.New("config name is required")
	}

	if len(cfg.Tables) == 0 {
		return errors.New("config must have at least one table")
	}

	now := time.Now()
	tableNames := make(map[string]bool)
	for _, table := range cfg.Tables {
		if err := v.validateTable(&table, tableNames, now); err != nil {
			return fmt.Errorf("table '%s': %w", table.Name, err)
		}
	}

	return nil
}

func (v *Validator) validateTable(table *domain.TableSpec, tableNames map[string]bool, now time.Time) error {
	if table.Name == "" {
		return errors.New("table name is required")
	}
	if !IsValidIdentifier(table.Name) {
		return fmt.Errorf("invalid table identifier: %s", table.Name)
	}
	if table.Schema != "" && !IsValidIdentifier(table.Schema) {
		return fmt.Errorf("invalid schema identifier: %s", table.Schema)
	}

	if tableNames[table.Name] {
		return fmt.Errorf("duplicate table name: %s", table.Name)
	}
	tableNames[table.Name] = true

	if table.Rows <= 0 {
		return fmt.Errorf("rows must be > 0, got %d", table.Rows)
	}

	if len(table.Columns) == 0 {
		return errors.New("table must have at least one column")
	}

	columnNames := make(map[string]bool)
	uniqueColumns := 0
	for _, col := range table.Columns {
		if err := v.validateColumn(&col, columnNames, now); err != nil {
			return fmt.Errorf("column '%s': %w", col.Name, err)
		}
		if col.UniqueIndex {
			uniqueColumns++
		}
	}

	if table.HasUniqueIndex && uniqueColumns == 0 {
		return errors.New("has_unique_index requires at least one column with unique_index")
	}

	return nil
}

func (v *Validator) validateColumn(col *domain.ColumnSpec, columnNames map[string]bool, now time.Time) error {
	if col.Name == "" {
		return errors.New("column name is required")
	}
	if !IsValidIdentifier(col.Name) {
		return fmt.Errorf("invalid column identifier: %s", col.Name)
	}

	if columnNames[col.Name] {
		return fmt.Errorf("duplicate column name: %s", col.Name)
	}
	columnNames[col.Name] = true

	if col.ColumnType == "" {
		return errors.New("column type is required")
	}

	if col.Identity {
		typ, err := sqltype.Parse(col.ColumnType)
		if err != nil {
			return err
		}
		if typ.Class() != sqltype.ClassInteger {
			return fmt.Errorf("identity requires an integer column type, got %s", col.ColumnType)
		}
		if col.MaskingType != "" {
			return errors.New("identity columns ignore masking rules; remove masking_type")
		}
		if col.Nullable {
			return errors.New("identity columns cannot be nullable")
		}
		return nil
	}

	if _, err := randomize.FromColumn(*col, now); err != nil {
		return err
	}

	if col.MinValue != nil && col.MaxValue != nil && *col.MaxValue < *col.MinValue {
		return fmt.Errorf("max_value (%v) less than min_value (%v)", *col.MaxValue, *col.MinValue)
	}

	return nil
}

func (v *Validator) ValidateTarget(t *domain.TargetConfig) error {
	if t.Name == "" {
		return errors.New("target name is required")
	}
	if t.Kind == "" {
		return errors.New("target kind is required")
	}
	if t.DSN == "" {
		return errors.New("target dsn is required")
	}
	if t.Database != "" && !IsValidIdentifier(t.Database) {
		return fmt.Errorf("invalid target database identifier: %s", t.Database)
	}

	switch t.Kind {
	case "mssql":
		if t.Schema != "" && !IsValidIdentifier(t.Schema) {
			return fmt.Errorf("invalid target schema identifier: %s", t.Schema)
		}
	case "sqlite":
		if t.Schema != "" {
			return errors.New("sqlite targets must not set schema")
		}
	default:
		return fmt.Errorf("unsupported target kind: %s", t.Kind)
	}

	return nil
}

func (v *Validator) ValidateRunRequest(req *domain.RunRequest) error {
	hasConfigID := req.ConfigID != ""
	hasConfig := req.Config != nil

	if !hasConfigID && !hasConfig {
		return errors.New("either config_id or config must be provided")
	}
	if hasConfigID && hasConfig {
		return errors.New("only one of config_id or config must be provided")
	}

	hasTargetID := req.TargetID != ""
	hasTarget := req.Target != nil

	if !hasTargetID && !hasTarget {
		return errors.New("either target_id or target must be provided")
	}
	if hasTargetID && hasTarget {
		return errors.New("only one of target_id or target must be provided")
	}

	if req.BatchSize < 0 {
		return fmt.Errorf("batch_size must be >= 0, got %d", req.BatchSize)
	}
	if req.ModulusFactor < 0 {
		return fmt.Errorf("modulus_factor must be >= 0, got %d", req.ModulusFactor)
	}

	for name, rows := range req.RowOverrides {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("invalid table name in row_overrides: %s", name)
		}
		if rows <= 0 {
			return fmt.Errorf("row_overrides[%s] must be > 0, got %d", name, rows)
		}
	}

	if req.Config != nil {
		if err := v.ValidateConfig(req.Config); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	if req.Target != nil {
		if err := v.ValidateTarget(req.Target); err != nil {
			return fmt.Errorf("target validation failed: %w", err)
		}
	}

	return nil
}
