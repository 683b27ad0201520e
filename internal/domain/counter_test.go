package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCounter_BeyondInt64(t *testing.T) {
	// Larger than both int64 and float64 safe-integer range.
	c, err := ParseCounter("123456789012345678901234567890")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", c.String())

	_, fits := c.Int64()
	assert.False(t, fits)
}

func TestParseCounter_RejectsNegative(t *testing.T) {
	_, err := ParseCounter("-5")
	require.Error(t, err)
}

func TestParseCounter_RejectsGarbage(t *testing.T) {
	_, err := ParseCounter("12abc")
	require.Error(t, err)
}

func TestCounter_JSONRoundTrip(t *testing.T) {
	c := NewCounter(9007199254740993) // 2^53 + 1, not representable in float64

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `"9007199254740993"`, string(data))

	var back Counter
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Zero(t, c.Cmp(back))
}

func TestCounter_UnmarshalBareNumber(t *testing.T) {
	var c Counter
	require.NoError(t, json.Unmarshal([]byte(`12345`), &c))
	assert.Equal(t, "12345", c.String())
}

func TestCounter_Add(t *testing.T) {
	sum := NewCounter(2).Add(NewCounter(40))
	assert.Equal(t, "42", sum.String())
}
