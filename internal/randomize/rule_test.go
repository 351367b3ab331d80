package randomize

import (
	"testing"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/sqltype"
)

func TestFromColumnTypeRule(t *testing.T) {
	rule, err := FromColumn(domain.ColumnSpec{Name: "age", ColumnType: "tinyint"}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if rule.Kind != RuleKindType || rule.Type != sqltype.TinyInt {
		t.Fatalf("unexpected rule: %#v", rule)
	}
}

func TestFromColumnCategoryRule(t *testing.T) {
	rule, err := FromColumn(domain.ColumnSpec{
		Name: "city", ColumnType: "nvarchar", MaskingType: "Address", SubType: "City",
	}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if rule.Kind != RuleKindCategory || rule.Category != "Address" || rule.SubType != "City" {
		t.Fatalf("unexpected rule: %#v", rule)
	}
}

func TestFromColumnRejectsUnknownCategory(t *testing.T) {
	_, err := FromColumn(domain.ColumnSpec{
		Name: "x", ColumnType: "varchar", MaskingType: "Galaxy", SubType: "Arm",
	}, time.Now())
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestFromColumnRejectsCategoryWithoutSubType(t *testing.T) {
	_, err := FromColumn(domain.ColumnSpec{
		Name: "x", ColumnType: "varchar", MaskingType: "Address",
	}, time.Now())
	if err == nil {
		t.Fatal("expected error for missing sub type")
	}
}

func TestFromColumnRejectsUnknownSQLType(t *testing.T) {
	_, err := FromColumn(domain.ColumnSpec{Name: "x", ColumnType: "geography"}, time.Now())
	if err == nil {
		t.Fatal("expected error for unsupported sql type")
	}
}

func TestFromColumnParsesDateBounds(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rule, err := FromColumn(domain.ColumnSpec{
		Name: "created", ColumnType: "datetime2", MinDate: "-30d", MaxDate: "2025-06-01",
	}, now)
	if err != nil {
		t.Fatal(err)
	}
	if rule.MinTime == nil || rule.MaxTime == nil {
		t.Fatalf("bounds not parsed: %#v", rule)
	}
	if !rule.MinTime.Equal(now.Add(-30 * 24 * time.Hour)) {
		t.Fatalf("unexpected min bound: %v", rule.MinTime)
	}

	_, err = FromColumn(domain.ColumnSpec{
		Name: "created", ColumnType: "datetime2", MinDate: "2025-06-01", MaxDate: "2020-01-01",
	}, now)
	if err == nil {
		t.Fatal("expected error when max_date precedes min_date")
	}
}
