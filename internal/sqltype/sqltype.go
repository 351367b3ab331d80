package sqltype

import (
	"fmt"
	"strings"
)

// Type is the closed set of SQL Server column types the generator knows how
// to produce values for. Anything outside this set is a configuration error
// at validation time, not a runtime miss.
type Type int

const (
	Invalid Type = iota
	BigInt
	Int
	SmallInt
	TinyInt
	Bit
	Decimal
	Numeric
	Money
	SmallMoney
	Float
	Real
	Date
	DateTime
	DateTime2
	SmallDateTime
	Time
	Char
	NChar
	VarChar
	NVarChar
	Text
	NText
	UniqueIdentifier
)

// Class groups types by how values are generated and rendered.
type Class int

const (
	ClassInteger Class = iota
	ClassBit
	ClassDecimal
	ClassDateTime
	ClassString
	ClassGUID
)

var names = map[Type]string{
	BigInt:           "bigint",
	Int:              "int",
	SmallInt:         "smallint",
	TinyInt:          "tinyint",
	Bit:              "bit",
	Decimal:          "decimal",
	Numeric:          "numeric",
	Money:            "money",
	SmallMoney:       "smallmoney",
	Float:            "float",
	Real:             "real",
	Date:             "date",
	DateTime:         "datetime",
	DateTime2:        "datetime2",
	SmallDateTime:    "smalldatetime",
	Time:             "time",
	Char:             "char",
	NChar:            "nchar",
	VarChar:          "varchar",
	NVarChar:         "nvarchar",
	Text:             "text",
	NText:            "ntext",
	UniqueIdentifier: "uniqueidentifier",
}

var byName = func() map[string]Type {
	m := make(map[string]Type, len(names))
	for t, n := range names {
		m[n] = t
	}
	// aliases seen in the wild
	m["bool"] = Bit
	m["boolean"] = Bit
	m["guid"] = UniqueIdentifier
	return m
}()

// Parse resolves a SQL type name, tolerating case and a length/precision
// suffix such as varchar(50) or decimal(10,2).
func Parse(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	t, ok := byName[name]
	if !ok {
		return Invalid, fmt.Errorf("unsupported sql type: %s", s)
	}
	return t, nil
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "invalid"
}

func (t Type) Class() Class {
	switch t {
	case BigInt, Int, SmallInt, TinyInt:
		return ClassInteger
	case Bit:
		return ClassBit
	case Decimal, Numeric, Money, SmallMoney, Float, Real:
		return ClassDecimal
	case Date, DateTime, DateTime2, SmallDateTime, Time:
		return ClassDateTime
	case UniqueIdentifier:
		return ClassGUID
	default:
		return ClassString
	}
}

// IntRange returns the native range for integer types. ok is false for
// non-integer types.
func (t Type) IntRange() (min, max int64, ok bool) {
	switch t {
	case BigInt:
		return -9223372036854775808, 9223372036854775807, true
	case Int:
		return -2147483648, 2147483647, true
	case SmallInt:
		return -32768, 32767, true
	case TinyInt:
		return 0, 255, true
	default:
		return 0, 0, false
	}
}

// TimeLayout is the canonical text representation the target expects for a
// temporal literal of this type.
func (t Type) TimeLayout() string {
	switch t {
	case Date:
		return "2006-01-02"
	case DateTime:
		return "2006-01-02 15:04:05.000"
	case DateTime2:
		return "2006-01-02 15:04:05.0000000"
	case SmallDateTime:
		return "2006-01-02 15:04:00"
	case Time:
		return "15:04:05.0000000"
	default:
		return "2006-01-02 15:04:05"
	}
}

// DefaultPrecision is the fractional-digit count used for decimal-like
// types when the config does not specify one.
func (t Type) DefaultPrecision() int {
	switch t {
	case Money, SmallMoney:
		return 4
	default:
		return 2
	}
}

// Quoted reports whether literals of this type are single-quoted.
func (t Type) Quoted() bool {
	switch t.Class() {
	case ClassString, ClassDateTime, ClassGUID:
		return true
	default:
		return false
	}
}
