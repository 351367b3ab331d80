package assemble

import "strings"

// BuildInsert renders one multi-row INSERT statement: bracketed
// identifiers, parenthesized row-value lists joined with commas, terminated
// with a semicolon.
func BuildInsert(schema, table string, columns []string, rows [][]string) string {
	var b strings.Builder

	b.WriteString("INSERT INTO ")
	b.WriteString(QuoteIdent(schema))
	b.WriteString(".")
	b.WriteString(QuoteIdent(table))
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(QuoteIdent(col))
	}
	b.WriteString(") VALUES ")

	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(strings.Join(row, ", "))
		b.WriteString(")")
	}
	b.WriteString(";")

	return b.String()
}
