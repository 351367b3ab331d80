package validation

import (
	"strings"
	"testing"

	"github.com/mmrzaf/dbfill/internal/domain"
)

func f(v float64) *float64 { return &v }

func validConfig() *domain.GenerationConfig {
	return &domain.GenerationConfig{
		Name: "demo",
		Tables: []domain.TableSpec{
			{
				Name: "person",
				Rows: 100,
				Columns: []domain.ColumnSpec{
					{Name: "id", ColumnType: "int", Identity: true},
					{Name: "first_name", ColumnType: "nvarchar", MaskingType: "Name", SubType: "FirstName"},
					{Name: "age", ColumnType: "tinyint", MinValue: f(18), MaxValue: f(90)},
				},
			},
		},
	}
}

func TestValidateConfigAcceptsValid(t *testing.T) {
	if err := NewValidator().ValidateConfig(validConfig()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfigRejections(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name   string
		mutate func(*domain.GenerationConfig)
		want   string
	}{
		{"missing name", func(c *domain.GenerationConfig) { c.Name = "" }, "name is required"},
		{"no tables", func(c *domain.GenerationConfig) { c.Tables = nil }, "at least one table"},
		{"zero rows", func(c *domain.GenerationConfig) { c.Tables[0].Rows = 0 }, "rows must be > 0"},
		{"bad table ident", func(c *domain.GenerationConfig) { c.Tables[0].Name = "per son" }, "invalid table identifier"},
		{"reserved table ident", func(c *domain.GenerationConfig) { c.Tables[0].Name = "select" }, "invalid table identifier"},
		{"bad schema ident", func(c *domain.GenerationConfig) { c.Tables[0].Schema = "dbo; DROP" }, "invalid schema identifier"},
		{"duplicate column", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[2].Name = "first_name"
		}, "duplicate column name"},
		{"unknown sql type", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[2].ColumnType = "geometry"
		}, "unsupported sql type"},
		{"unknown category", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[1].MaskingType = "Astrology"
		}, "unsupported masking category"},
		{"identity on non-integer type", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[0].ColumnType = "nvarchar"
		}, "identity requires an integer column type"},
		{"identity with masking", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[0].MaskingType = "Random"
		}, "identity columns ignore masking"},
		{"nullable identity", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[0].Nullable = true
		}, "cannot be nullable"},
		{"unique flag without unique columns", func(c *domain.GenerationConfig) {
			c.Tables[0].HasUniqueIndex = true
		}, "has_unique_index requires"},
		{"inverted bounds", func(c *domain.GenerationConfig) {
			c.Tables[0].Columns[2].MinValue = f(90)
			c.Tables[0].Columns[2].MaxValue = f(18)
		}, "less than min"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := v.ValidateConfig(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %q", tc.want, err.Error())
			}
		})
	}
}

func TestValidateConfigRejectsDuplicateTables(t *testing.T) {
	cfg := validConfig()
	cfg.Tables = append(cfg.Tables, cfg.Tables[0])
	err := NewValidator().ValidateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "duplicate table name") {
		t.Fatalf("expected duplicate table error, got %v", err)
	}
}

func TestValidateTarget(t *testing.T) {
	v := NewValidator()

	good := &domain.TargetConfig{Name: "local", Kind: "mssql", DSN: "sqlserver://sa:pw@localhost?database=demo"}
	if err := v.ValidateTarget(good); err != nil {
		t.Fatalf("expected valid target, got %v", err)
	}

	sqlite := &domain.TargetConfig{Name: "file", Kind: "sqlite", DSN: "file:demo.db"}
	if err := v.ValidateTarget(sqlite); err != nil {
		t.Fatalf("expected valid sqlite target, got %v", err)
	}

	cases := []struct {
		name   string
		target domain.TargetConfig
		want   string
	}{
		{"missing dsn", domain.TargetConfig{Name: "x", Kind: "mssql"}, "dsn is required"},
		{"unknown kind", domain.TargetConfig{Name: "x", Kind: "oracle", DSN: "y"}, "unsupported target kind"},
		{"sqlite schema", domain.TargetConfig{Name: "x", Kind: "sqlite", DSN: "y", Schema: "dbo"}, "must not set schema"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateTarget(&tc.target)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateRunRequest(t *testing.T) {
	v := NewValidator()

	ok := &domain.RunRequest{ConfigID: "cfg-1", TargetID: "tgt-1"}
	if err := v.ValidateRunRequest(ok); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	if err := v.ValidateRunRequest(&domain.RunRequest{TargetID: "t"}); err == nil {
		t.Fatal("expected error when config missing")
	}
	if err := v.ValidateRunRequest(&domain.RunRequest{
		ConfigID: "c", Config: validConfig(), TargetID: "t",
	}); err == nil {
		t.Fatal("expected error when both config_id and config set")
	}
	if err := v.ValidateRunRequest(&domain.RunRequest{ConfigID: "c"}); err == nil {
		t.Fatal("expected error when target missing")
	}
	if err := v.ValidateRunRequest(&domain.RunRequest{
		ConfigID: "c", TargetID: "t",
		RowOverrides: map[string]int64{"person": 0},
	}); err == nil {
		t.Fatal("expected error for non-positive row override")
	}

	inline := &domain.RunRequest{Config: validConfig(), TargetID: "t"}
	if err := v.ValidateRunRequest(inline); err != nil {
		t.Fatalf("inline config should validate, got %v", err)
	}
	inline.Config.Tables[0].Rows = -1
	if err := v.ValidateRunRequest(inline); err == nil {
		t.Fatal("expected inline config validation to run")
	}
}
