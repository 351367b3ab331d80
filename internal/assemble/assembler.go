package assemble

import (
	"fmt"
	"strconv"

	"github.com/mmrzaf/dbfill/internal/randomize"
)

// RowAssembler combines per-column generated values into complete literal
// rows for one table. For each column, in declaration order: NULL when the
// shared null-eligibility counter hits the modulus, the precomputed unique
// tuple value for unique-index columns, the identity sequence for identity
// columns, and the value generator otherwise.
type RowAssembler struct {
	columns       []ColumnRule
	enforcer      *UniqueEnforcer
	identities    map[string]*IdentitySequence
	modulusFactor int
	nullCounter   int64
}

// NewRowAssembler builds an assembler for the given columns. uniqueColumns
// is the subset participating in the table's unique index (nil when the
// table has none); identityStarts carries the current identity value per
// identity column.
func NewRowAssembler(columns []ColumnRule, uniqueColumns []ColumnRule, identityStarts map[string]int64, modulusFactor, maxAttempts int) *RowAssembler {
	a := &RowAssembler{
		columns:       columns,
		identities:    make(map[string]*IdentitySequence),
		modulusFactor: modulusFactor,
	}

	if len(uniqueColumns) > 0 {
		a.enforcer = NewUniqueEnforcer(uniqueColumns, maxAttempts)
	}

	for _, cr := range columns {
		if cr.Column.Identity {
			start := identityStarts[cr.Column.Name]
			a.identities[cr.Column.Name] = NewIdentitySequence(start, cr.Column.IdentityIncr)
		}
	}

	return a
}

// ColumnNames returns the column names in declaration order.
func (a *RowAssembler) ColumnNames() []string {
	names := make([]string, len(a.columns))
	for i, cr := range a.columns {
		names[i] = cr.Column.Name
	}
	return names
}

// HasIdentity reports whether any assembled column is an identity column.
func (a *RowAssembler) HasIdentity() bool {
	return len(a.identities) > 0
}

// NextRow produces one row as SQL literals in declaration order.
func (a *RowAssembler) NextRow(ctx *randomize.Context) ([]string, error) {
	var tuple map[string]string
	if a.enforcer != nil {
		var err error
		tuple, err = a.enforcer.NextTuple(ctx)
		if err != nil {
			return nil, err
		}
	}

	row := make([]string, len(a.columns))
	for i, cr := range a.columns {
		col := cr.Column

		if col.Nullable && a.modulusFactor > 0 {
			a.nullCounter++
			if a.nullCounter%int64(a.modulusFactor) == 0 {
				row[i] = "NULL"
				continue
			}
		}

		if tuple != nil {
			if lit, ok := tuple[col.Name]; ok {
				row[i] = lit
				continue
			}
		}

		if col.Identity {
			row[i] = strconv.FormatInt(a.identities[col.Name].Next(), 10)
			continue
		}

		v, err := ctx.Value(cr.Rule)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		row[i] = FormatLiteral(v, cr.Rule.Type)
	}

	return row, nil
}
