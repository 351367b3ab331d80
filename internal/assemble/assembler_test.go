package assemble

import (
	"strconv"
	"strings"
	"testing"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/randomize"
	"github.com/mmrzaf/dbfill/internal/sqltype"
)

func TestNullModulusCountsFloorOfRowsOverK(t *testing.T) {
	ctx := testCtx(10)
	columns := []ColumnRule{
		{
			Column: domain.ColumnSpec{Name: "note", ColumnType: "varchar", Nullable: true},
			Rule:   randomize.Rule{Kind: randomize.RuleKindType, Type: sqltype.VarChar, Min: f(1), Max: f(5)},
		},
	}
	const rows, k = 25, 10
	a := NewRowAssembler(columns, nil, nil, k, 0)

	nulls := 0
	for i := 0; i < rows; i++ {
		row, err := a.NextRow(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if row[0] == "NULL" {
			nulls++
		}
	}
	if nulls != rows/k {
		t.Fatalf("expected %d NULLs over %d rows with modulus %d, got %d", rows/k, rows, k, nulls)
	}
}

func TestIdentitySequenceValues(t *testing.T) {
	ctx := testCtx(11)
	columns := []ColumnRule{
		{
			Column: domain.ColumnSpec{Name: "id", ColumnType: "int", Identity: true, IdentityIncr: 5},
		},
	}
	a := NewRowAssembler(columns, nil, map[string]int64{"id": 100}, 0, 0)

	for n := int64(1); n <= 10; n++ {
		row, err := a.NextRow(ctx)
		if err != nil {
			t.Fatal(err)
		}
		got, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			t.Fatal(err)
		}
		if want := 100 + n*5; got != want {
			t.Fatalf("identity value %d: expected %d, got %d", n, want, got)
		}
	}
}

func TestUniqueColumnsComeFromEnforcer(t *testing.T) {
	ctx := testCtx(12)
	unique := []ColumnRule{intColumn("code", 1, 100000)}
	columns := []ColumnRule{
		unique[0],
		{
			Column: domain.ColumnSpec{Name: "flag", ColumnType: "bit"},
			Rule:   randomize.Rule{Kind: randomize.RuleKindType, Type: sqltype.Bit},
		},
	}
	a := NewRowAssembler(columns, unique, nil, 0, 0)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		row, err := a.NextRow(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if seen[row[0]] {
			t.Fatalf("duplicate unique column value: %s", row[0])
		}
		seen[row[0]] = true
	}
}

func TestBuildInsertStatementShape(t *testing.T) {
	sql := BuildInsert("dbo", "person", []string{"id", "name"}, [][]string{
		{"1", "'O''Brien'"},
		{"2", "NULL"},
	})

	want := "INSERT INTO [dbo].[person] ([id], [name]) VALUES (1, 'O''Brien'), (2, NULL);"
	if sql != want {
		t.Fatalf("unexpected statement:\n got: %s\nwant: %s", sql, want)
	}
	if !strings.HasSuffix(sql, ";") {
		t.Fatal("statement must be terminated with a semicolon")
	}
}
