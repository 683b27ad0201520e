package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Counter is an unbounded non-negative integer counter. District-level
// cumulative figures (person-days especially) overflow int32 and lose
// precision in float64, so the value is held as an exact decimal and
// serialized as a decimal string.
type Counter struct {
	value apd.Decimal
}

// NewCounter creates a Counter from an int64.
func NewCounter(i int64) Counter {
	var d apd.Decimal
	d.SetInt64(i)
	return Counter{value: d}
}

// ParseCounter parses a decimal digit string into a Counter.
func ParseCounter(s string) (Counter, error) {
	var d apd.Decimal
	_, _, err := d.SetString(s)
	if err != nil {
		return Counter{}, fmt.Errorf("invalid counter: %w", err)
	}
	if d.Negative {
		return Counter{}, fmt.Errorf("invalid counter: negative value %q", s)
	}
	return Counter{value: d}, nil
}

func (c Counter) String() string {
	return c.value.Text('f')
}

func (c Counter) IsZero() bool {
	return c.value.IsZero()
}

// Cmp returns -1, 0, or 1 comparing c to other.
func (c Counter) Cmp(other Counter) int {
	return c.value.Cmp(&other.value)
}

// Add returns the sum of c and other.
func (c Counter) Add(other Counter) Counter {
	var result apd.Decimal
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Add(&result, &c.value, &other.value) //nolint:errcheck // integer addition cannot fail at this precision
	return Counter{value: result}
}

// Int64 returns the value as an int64 and whether it fit.
func (c Counter) Int64() (int64, bool) {
	i, err := c.value.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

// MarshalJSON encodes the counter as a JSON string to preserve values
// beyond float64 safe-integer range.
func (c Counter) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value.Text('f') + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (c *Counter) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseCounter(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
