package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSizeFilter(t *testing.T) {
	tests := []struct {
		expr  string
		op    CompareOp
		bytes int64
	}{
		{">8B", OpGreater, 8},
		{"<= 500", OpLessEqual, 500},
		{">1K", OpGreater, 1024},
		{"==2MB", OpEqual, 2 * 1024 * 1024},
		{"< 1.5k", OpLess, 1536},
		{">=1g", OpGreaterEqual, 1 << 30},
		{"<1T", OpLess, 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := ParseSizeFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.op, f.Op)
			assert.Equal(t, tt.bytes, f.Bytes)
		})
	}
}

func TestParseSizeFilterRejectsBadInput(t *testing.T) {
	for _, expr := range []string{"", "10", "=10", "> ten", ">10X", ">>10", ">-1", ">99999999P", ">8192P"} {
		_, err := ParseSizeFilter(expr)
		assert.Error(t, err, expr)
	}
}

func TestSizeFilterMatch(t *testing.T) {
	f, err := ParseSizeFilter(">8B")
	require.NoError(t, err)
	assert.True(t, f.Match(10))
	assert.False(t, f.Match(8))
	assert.False(t, f.Match(5))

	f, err = ParseSizeFilter("<=1K")
	require.NoError(t, err)
	assert.True(t, f.Match(1024))
	assert.False(t, f.Match(1025))
}

func TestParseTimeFilter(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		expr string
		want time.Time
	}{
		{">2023-01-01", time.Date(2023, 1, 1, 0, 0, 0, 0, loc)},
		{"<2023-01-01 12:30", time.Date(2023, 1, 1, 12, 30, 0, 0, loc)},
		{">=2023-01-01T08:00:05", time.Date(2023, 1, 1, 8, 0, 5, 0, loc)},
		{"<=2023-06-01T00:00:00+02:00", time.Date(2023, 5, 31, 22, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := ParseTimeFilter(tt.expr, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(f.At), "got %s", f.At)
		})
	}

	_, err := ParseTimeFilter(">yesterday", loc)
	assert.Error(t, err)
	_, err = ParseTimeFilter("2023-01-01", loc)
	assert.Error(t, err)
}

func TestTimeFilterMatch(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	after, err := ParseTimeFilter(">2024-03-10", loc)
	require.NoError(t, err)
	assert.True(t, after.Match(day.Add(time.Hour)))
	assert.False(t, after.Match(day))
	assert.False(t, after.Match(day.Add(-time.Hour)))

	// == compares calendar days, not instants.
	same, err := ParseTimeFilter("==2024-03-10", loc)
	require.NoError(t, err)
	assert.True(t, same.Match(day.Add(23*time.Hour)))
	assert.False(t, same.Match(day.Add(24*time.Hour)))
}
