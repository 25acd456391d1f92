package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"string", "hello", "hello"},
		{"utf8 bytes", []byte("abc"), "abc"},
		{"binary bytes", []byte{0xff, 0x00, 0x10}, "0xff0010"},
		{"time", ts, "2024-03-01T12:30:00.0000005Z"},
		{"bool", true, "true"},
		{"int64", int64(-42), "-42"},
		{"float64", 1.5, "1.5"},
		{"int", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT 1", true},
		{"  select * from t", true},
		{"(SELECT 1) UNION (SELECT 2)", true},
		{"-- comment\nSHOW TABLES", true},
		{"/* x */ with a as (select 1) select * from a", true},
		{"EXPLAIN SELECT 1", true},
		{"INSERT INTO t VALUES (1)", false},
		{"UPDATE t SET a = 1", false},
		{"CREATE TABLE t (id int)", false},
		{"", false},
		{"-- only a comment", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ReturnsRows(tt.query))
		})
	}
}

func TestQueryResultIsNull(t *testing.T) {
	tracked := &QueryResult{
		Columns: []string{"a"},
		Rows:    [][]string{{"NULL"}, {NullText}},
		Nulls:   [][]bool{{false}, {true}},
	}
	assert.False(t, tracked.IsNull(0, 0))
	assert.True(t, tracked.IsNull(1, 0))
	assert.False(t, tracked.IsNull(2, 0))
	assert.False(t, tracked.IsNull(0, 1))

	untracked := &QueryResult{Columns: []string{"a"}, Rows: [][]string{{NullText}, {"x"}}}
	assert.True(t, untracked.IsNull(0, 0))
	assert.False(t, untracked.IsNull(1, 0))

	var none *QueryResult
	assert.False(t, none.IsNull(0, 0))
}
