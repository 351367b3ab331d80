package randomize

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mmrzaf/dbfill/internal/logging"
)

// Context carries the seeded RNG and the category dispatch table for one
// run. All value generation goes through a Context; there is no package
// global state beyond the immutable dispatch table.
type Context struct {
	rng    *rand.Rand
	now    time.Time
	logger *logging.Logger
}

func NewContext(seed int64, logger *logging.Logger) *Context {
	return &Context{
		rng:    rand.New(rand.NewSource(seed)),
		now:    time.Now(),
		logger: logger,
	}
}

// Value produces one random value for the rule. Typed rules return int64,
// bool, float64, time.Time or string; category rules always return string.
func (c *Context) Value(rule Rule) (interface{}, error) {
	switch rule.Kind {
	case RuleKindType:
		return c.typedValue(rule)
	case RuleKindCategory:
		fn, ok := categoryTable[categoryKey(rule.Category, rule.SubType)]
		if !ok {
			return nil, fmt.Errorf("unsupported masking category: %s.%s", rule.Category, rule.SubType)
		}
		return fn(c, rule)
	default:
		return nil, fmt.Errorf("unknown rule kind: %d", rule.Kind)
	}
}
