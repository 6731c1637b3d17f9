package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	day := time.Date(2024, 1, 15, 13, 45, 0, 0, time.Local)
	assert.Equal(t, "INV-20240115-", numberPrefix(day))
	assert.Equal(t, "INV-20240115-0001", formatNumber(day, 1))
	assert.Equal(t, "INV-20240115-0042", formatNumber(day, 42))
	assert.Equal(t, "INV-20240115-9999", formatNumber(day, 9999))
	// Sequences past four digits widen rather than wrap.
	assert.Equal(t, "INV-20240115-10000", formatNumber(day, 10000))
}

func TestSequenceOf(t *testing.T) {
	seq, err := sequenceOf("")
	require.NoError(t, err)
	assert.Equal(t, 0, seq, "no invoices today means the next one is 0001")

	seq, err = sequenceOf("INV-20240115-0007")
	require.NoError(t, err)
	assert.Equal(t, 7, seq)

	seq, err = sequenceOf("INV-20240115-10000")
	require.NoError(t, err)
	assert.Equal(t, 10000, seq)

	_, err = sequenceOf("garbage")
	assert.Error(t, err)

	_, err = sequenceOf("INV-20240115-")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	day := time.Now()
	for _, n := range []int{1, 9, 10, 999, 1000, 9999} {
		seq, err := sequenceOf(formatNumber(day, n))
		require.NoError(t, err)
		assert.Equal(t, n, seq)
	}
}
