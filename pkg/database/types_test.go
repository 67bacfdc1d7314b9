package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayScan(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want StringArray
	}{
		{"nil", nil, nil},
		{"json bytes", []byte(`["a","b"]`), StringArray{"a", "b"}},
		{"json string", `["x"]`, StringArray{"x"}},
		{"postgres literal", `{a,"b c"}`, StringArray{"a", "b c"}},
		{"empty postgres literal", `{}`, StringArray{}},
		{"empty", "", StringArray{}},
		{"bare value", "solo", StringArray{"solo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringArray
			require.NoError(t, got.Scan(tt.in))
			assert.Equal(t, tt.want, got)
		})
	}

	var a StringArray
	assert.Error(t, a.Scan(42))
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	v, err = StringArray(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNewSQLite(t *testing.T) {
	db, err := New(&Config{Driver: "sqlite", FilePath: "file::memory:", LogLevel: "silent"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, sqlDB.Ping())

	_, err = New(&Config{Driver: "oracle"})
	assert.Error(t, err)
}
