package randomize

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mmrzaf/dbfill/internal/sqltype"
)

const (
	defaultCharacterSet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultMinLength    = 1
	defaultMaxLength    = 10

	// lookback window when a date rule has no bounds
	defaultLookback = 365 * 24 * time.Hour
)

func (c *Context) typedValue(rule Rule) (interface{}, error) {
	switch rule.Type.Class() {
	case sqltype.ClassInteger:
		return c.integerValue(rule)
	case sqltype.ClassBit:
		return c.rng.Intn(2) == 1, nil
	case sqltype.ClassDecimal:
		return c.decimalValue(rule), nil
	case sqltype.ClassDateTime:
		return c.timeValue(rule), nil
	case sqltype.ClassString:
		return c.stringValue(rule)
	case sqltype.ClassGUID:
		return c.guidValue()
	default:
		return nil, fmt.Errorf("no generator for sql type %s", rule.Type)
	}
}

// integerValue draws uniformly in [min, max], clamping requested bounds to
// the type's native range.
func (c *Context) integerValue(rule Rule) (int64, error) {
	typeMin, typeMax, ok := rule.Type.IntRange()
	if !ok {
		return 0, fmt.Errorf("%s is not an integer type", rule.Type)
	}

	min, max := typeMin, typeMax
	if rule.Min != nil {
		min = int64(*rule.Min)
	}
	if rule.Max != nil {
		max = int64(*rule.Max)
	}

	if min < typeMin {
		c.logger.Debugw("clamping minimum to native range", map[string]any{
			"type": rule.Type.String(), "requested": min, "clamped": typeMin,
		})
		min = typeMin
	}
	if max > typeMax {
		c.logger.Debugw("clamping maximum to native range", map[string]any{
			"type": rule.Type.String(), "requested": max, "clamped": typeMax,
		})
		max = typeMax
	}
	if min > max {
		return 0, fmt.Errorf("min (%d) greater than max (%d)", min, max)
	}

	// span arithmetic in uint64 so the full bigint range does not overflow
	span := uint64(max-min) + 1
	if span == 0 {
		return int64(c.rng.Uint64()), nil
	}
	return min + int64(c.rng.Uint64()%span), nil
}

func (c *Context) decimalValue(rule Rule) float64 {
	min, max := 0.0, 1000.0
	if rule.Min != nil {
		min = *rule.Min
	}
	if rule.Max != nil {
		max = *rule.Max
	}
	if max < min {
		min, max = max, min
	}

	precision := rule.Precision
	if precision <= 0 {
		precision = rule.Type.DefaultPrecision()
	}

	v := min + c.rng.Float64()*(max-min)
	pow := math.Pow10(precision)
	return math.Round(v*pow) / pow
}

// timeValue draws a uniformly random instant between the bounds; with no
// bounds it draws from a fixed lookback window ending now.
func (c *Context) timeValue(rule Rule) time.Time {
	max := c.now
	min := max.Add(-defaultLookback)
	if rule.MinTime != nil {
		min = *rule.MinTime
	}
	if rule.MaxTime != nil {
		max = *rule.MaxTime
	}
	if !max.After(min) {
		return min
	}

	span := max.Sub(min)
	return min.Add(time.Duration(c.rng.Int63n(int64(span))))
}

func (c *Context) stringValue(rule Rule) (string, error) {
	charset := rule.CharacterSet
	if charset == "" {
		charset = defaultCharacterSet
	}
	chars := []rune(charset)

	minLen, maxLen := defaultMinLength, defaultMaxLength
	if rule.Min != nil {
		minLen = int(*rule.Min)
	}
	if rule.Max != nil {
		maxLen = int(*rule.Max)
	}
	if minLen < 0 {
		minLen = 0
	}
	if maxLen < minLen {
		return "", fmt.Errorf("string length max (%d) less than min (%d)", maxLen, minLen)
	}

	length := minLen
	if maxLen > minLen {
		length = minLen + c.rng.Intn(maxLen-minLen+1)
	}

	out := make([]rune, length)
	for i := range out {
		out[i] = chars[c.rng.Intn(len(chars))]
	}
	return string(out), nil
}

// guidValue derives a v4 GUID from the run's RNG so generated identifiers
// are reproducible for a given seed.
func (c *Context) guidValue() (string, error) {
	b := make([]byte, 16)
	c.rng.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	u, err := uuid.FromBytes(b)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
