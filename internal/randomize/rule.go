package randomize

import (
	"fmt"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/sqltype"
	"github.com/mmrzaf/dbfill/internal/timeutil"
)

// RuleKind discriminates the two generator selectors: a bare SQL type or a
// masking category plus subtype. Exactly one applies per rule.
type RuleKind int

const (
	RuleKindType RuleKind = iota
	RuleKindCategory
)

// Rule is the resolved generation contract for one column. Date bounds are
// parsed up front so a malformed bound is a configuration error, not a
// per-row failure.
type Rule struct {
	Kind     RuleKind
	Type     sqltype.Type
	Category string
	SubType  string

	Min          *float64
	Max          *float64
	MinTime      *time.Time
	MaxTime      *time.Time
	Precision    int
	CharacterSet string
	Format       string
	Separator    string
	Value        string
}

// FromColumn resolves a column spec into a rule, validating the SQL type
// and, for masking columns, the category/subtype pair against the dispatch
// table. now anchors relative date bounds for the whole run.
func FromColumn(col domain.ColumnSpec, now time.Time) (Rule, error) {
	typ, err := sqltype.Parse(col.ColumnType)
	if err != nil {
		return Rule{}, err
	}

	rule := Rule{
		Kind:         RuleKindType,
		Type:         typ,
		Min:          col.MinValue,
		Max:          col.MaxValue,
		Precision:    col.Precision,
		CharacterSet: col.CharacterString,
		Format:       col.Format,
		Separator:    col.Separator,
		Value:        col.Value,
	}

	if col.MaskingType != "" {
		if col.SubType == "" {
			return Rule{}, fmt.Errorf("masking type %s requires a sub type", col.MaskingType)
		}
		if !IsSupportedCategory(col.MaskingType, col.SubType) {
			return Rule{}, fmt.Errorf("unsupported masking category: %s.%s", col.MaskingType, col.SubType)
		}
		rule.Kind = RuleKindCategory
		rule.Category = col.MaskingType
		rule.SubType = col.SubType
	}

	if col.MinDate != "" {
		t, err := timeutil.ParseBound(col.MinDate, now)
		if err != nil {
			return Rule{}, fmt.Errorf("column %s min_date: %w", col.Name, err)
		}
		rule.MinTime = &t
	}
	if col.MaxDate != "" {
		t, err := timeutil.ParseBound(col.MaxDate, now)
		if err != nil {
			return Rule{}, fmt.Errorf("column %s max_date: %w", col.Name, err)
		}
		rule.MaxTime = &t
	}
	if rule.MinTime != nil && rule.MaxTime != nil && rule.MaxTime.Before(*rule.MinTime) {
		return Rule{}, fmt.Errorf("column %s: max_date before min_date", col.Name)
	}

	return rule, nil
}
