package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"brazilian", "01/03/2024", "2024-03-01", true},
		{"iso", "2024-03-02", "2024-03-02", true},
		{"dashed", "02-03-2024", "2024-03-02", true},
		{"padded", "  01/03/2024 ", "2024-03-01", true},
		{"garbage", "not-a-date", time.Now().Format(LayoutISO), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStatementDate(tt.input, nil)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseOFXDate(t *testing.T) {
	got, err := ParseOFXDate("20240115")
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)

	got, err = ParseOFXDate("20240115120000[-3:BRT]")
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)

	_, err = ParseOFXDate("2024")
	assert.Error(t, err)
}

func TestExpandShortDate(t *testing.T) {
	got, err := ExpandShortDate("15/01", 2024)
	assert.NoError(t, err)
	assert.Equal(t, "2024-01-15", got)

	_, err = ExpandShortDate("99/99", 2024)
	assert.Error(t, err)
}

func TestIsFuture(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(LayoutISO)
	yesterday := time.Now().AddDate(0, 0, -1).Format(LayoutISO)

	assert.True(t, IsFuture(tomorrow))
	assert.False(t, IsFuture(yesterday))
	assert.False(t, IsFuture("garbage"))
}
