package assemble

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmrzaf/dbfill/internal/sqltype"
)

// FormatLiteral renders a generated value as a SQL literal for its declared
// type: quoted (with doubled embedded quotes) for string-class types, bare
// for numerics, 1/0 for bit, the NULL keyword for nil.
func FormatLiteral(v interface{}, typ sqltype.Type) string {
	if v == nil {
		return "NULL"
	}

	switch val := v.(type) {
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return quote(val.Format(typ.TimeLayout()))
	case string:
		// category generators hand back strings even for numeric columns
		if !typ.Quoted() {
			return val
		}
		return quote(val)
	default:
		return quote(fmt.Sprint(val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// QuoteIdent wraps an identifier in brackets, the T-SQL quoting style.
func QuoteIdent(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
