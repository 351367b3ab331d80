package assemble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/randomize"
)

// ErrConstraintUnsatisfiable reports that the retry ceiling was reached
// while searching for an unseen tuple, which means the requested row count
// likely exceeds the value space of the unique columns.
var ErrConstraintUnsatisfiable = errors.New("unique constraint unsatisfiable")

// DefaultMaxAttempts bounds the retry loop per tuple. The value space of a
// unique index is unknown up front, so exhaustion is detected by attempt
// count rather than by counting the domain.
const DefaultMaxAttempts = 10000

// ColumnRule pairs a column spec with its resolved generation rule.
type ColumnRule struct {
	Column domain.ColumnSpec
	Rule   randomize.Rule
}

// UniqueEnforcer generates value tuples for the columns of one unique
// index, retrying until the tuple has not been produced before. Membership
// is per full tuple over the rendered literals, not per column.
type UniqueEnforcer struct {
	columns     []ColumnRule
	seen        map[string]struct{}
	maxAttempts int
}

func NewUniqueEnforcer(columns []ColumnRule, maxAttempts int) *UniqueEnforcer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &UniqueEnforcer{
		columns:     columns,
		seen:        make(map[string]struct{}),
		maxAttempts: maxAttempts,
	}
}

// NextTuple returns one unseen tuple as a column-name -> literal map and
// records it in the seen set.
func (e *UniqueEnforcer) NextTuple(ctx *randomize.Context) (map[string]string, error) {
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		literals := make([]string, len(e.columns))
		tuple := make(map[string]string, len(e.columns))
		for i, cr := range e.columns {
			v, err := ctx.Value(cr.Rule)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", cr.Column.Name, err)
			}
			lit := FormatLiteral(v, cr.Rule.Type)
			literals[i] = lit
			tuple[cr.Column.Name] = lit
		}

		key := strings.Join(literals, "\x1f")
		if _, dup := e.seen[key]; dup {
			continue
		}
		e.seen[key] = struct{}{}
		return tuple, nil
	}

	names := make([]string, len(e.columns))
	for i, cr := range e.columns {
		names[i] = cr.Column.Name
	}
	return nil, fmt.Errorf("no unseen tuple for (%s) after %d attempts: %w",
		strings.Join(names, ", "), e.maxAttempts, ErrConstraintUnsatisfiable)
}

// Seen returns how many distinct tuples have been handed out.
func (e *UniqueEnforcer) Seen() int {
	return len(e.seen)
}
