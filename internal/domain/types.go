package domain

import (
	"encoding/json"
	"time"
)

// GenerationConfig describes one fill job: which tables to populate and how
// each column's values are produced.
type GenerationConfig struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Version     string      `json:"version" yaml:"version"`
	Description string      `json:"description" yaml:"description"`
	Seed        *int64      `json:"seed,omitempty" yaml:"seed,omitempty"`
	Tables      []TableSpec `json:"tables" yaml:"tables"`
}

type TableSpec struct {
	Name           string       `json:"name" yaml:"name"`
	Schema         string       `json:"schema,omitempty" yaml:"schema,omitempty"`
	Rows           int64        `json:"rows" yaml:"rows"`
	HasUniqueIndex bool         `json:"has_unique_index,omitempty" yaml:"has_unique_index,omitempty"`
	BatchSize      int          `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	ModulusFactor  int          `json:"modulus_factor,omitempty" yaml:"modulus_factor,omitempty"`
	Columns        []ColumnSpec `json:"columns" yaml:"columns"`
}

// ColumnSpec selects a generator either by SQL type alone or by a masking
// category plus subtype. MinValue/MaxValue bound numeric draws and string
// lengths; MinDate/MaxDate bound temporal draws.
type ColumnSpec struct {
	Name            string   `json:"name" yaml:"name"`
	ColumnType      string   `json:"column_type" yaml:"column_type"`
	MaskingType     string   `json:"masking_type,omitempty" yaml:"masking_type,omitempty"`
	SubType         string   `json:"sub_type,omitempty" yaml:"sub_type,omitempty"`
	MinValue        *float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	MaxValue        *float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	MinDate         string   `json:"min_date,omitempty" yaml:"min_date,omitempty"`
	MaxDate         string   `json:"max_date,omitempty" yaml:"max_date,omitempty"`
	Precision       int      `json:"precision,omitempty" yaml:"precision,omitempty"`
	CharacterString string   `json:"character_string,omitempty" yaml:"character_string,omitempty"`
	Format          string   `json:"format,omitempty" yaml:"format,omitempty"`
	Separator       string   `json:"separator,omitempty" yaml:"separator,omitempty"`
	Value           string   `json:"value,omitempty" yaml:"value,omitempty"`
	Nullable        bool     `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Identity        bool     `json:"identity,omitempty" yaml:"identity,omitempty"`
	IdentitySeed    int64    `json:"identity_seed,omitempty" yaml:"identity_seed,omitempty"`
	IdentityIncr    int64    `json:"identity_increment,omitempty" yaml:"identity_increment,omitempty"`
	UniqueIndex     bool     `json:"unique_index,omitempty" yaml:"unique_index,omitempty"`
}

type TargetConfig struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Kind     string            `json:"kind" yaml:"kind"`
	DSN      string            `json:"dsn" yaml:"dsn"`
	Database string            `json:"database,omitempty" yaml:"database,omitempty"`
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

type Run struct {
	ID            string          `json:"id"`
	ConfigID      string          `json:"config_id"`
	ConfigName    string          `json:"config_name"`
	ConfigVersion string          `json:"config_version"`
	TargetID      string          `json:"target_id"`
	TargetName    string          `json:"target_name"`
	TargetKind    string          `json:"target_kind"`
	Seed          int64           `json:"seed"`
	ConfigHash    string          `json:"config_hash"`
	Status        RunStatus       `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	Stats         json.RawMessage `json:"stats,omitempty"`
	Error         string          `json:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

type RunStats struct {
	TablesFilled    int             `json:"tables_filled"`
	TablesSkipped   int             `json:"tables_skipped"`
	TablesFailed    int             `json:"tables_failed"`
	TotalRows       int64           `json:"total_rows"`
	DurationSeconds float64         `json:"duration_seconds"`
	TableStats      []TableRunStats `json:"table_stats"`
}

type TableRunStats struct {
	TableName       string   `json:"table_name"`
	RowsInserted    int64    `json:"rows_inserted"`
	SkippedColumns  []string `json:"skipped_columns,omitempty"`
	DurationSeconds float64  `json:"duration_seconds"`
	Error           string   `json:"error,omitempty"`
}

type RunRequest struct {
	ConfigID      string            `json:"config_id,omitempty"`
	Config        *GenerationConfig `json:"config,omitempty"`
	TargetID      string            `json:"target_id,omitempty"`
	Target        *TargetConfig     `json:"target,omitempty"`
	Seed          *int64            `json:"seed,omitempty"`
	RowOverrides  map[string]int64  `json:"row_overrides,omitempty"`
	BatchSize     int               `json:"batch_size,omitempty"`
	ModulusFactor int               `json:"modulus_factor,omitempty"`
}

const (
	DefaultBatchSize     = 1000
	DefaultModulusFactor = 10
)

// SchemaOrDefault returns the table's schema, falling back to dbo.
func (t *TableSpec) SchemaOrDefault() string {
	if t.Schema != "" {
		return t.Schema
	}
	return "dbo"
}
