package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordMatches(t *testing.T) {
	var p Password
	require.NoError(t, p.Set("correct horse"))
	assert.NotEqual(t, "correct horse", p.Hash)

	ok, err := p.Matches("correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Matches("battery staple")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagsScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Tags
	}{
		{"text", `["ui","dashboard"]`, Tags{"ui", "dashboard"}},
		{"bytes", []byte(`["audio"]`), Tags{"audio"}},
		{"null", nil, Tags{}},
		{"empty", "", Tags{}},
		{"json null", "null", Tags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Tags
			require.NoError(t, got.Scan(tt.src))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Tags
	assert.Error(t, bad.Scan(42))
	assert.Error(t, bad.Scan("{not json"))
}

func TestTagsValueKeepsOrder(t *testing.T) {
	v, err := Tags{"music", "cinematic", "orchestral"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["music","cinematic","orchestral"]`, v)

	v, err = Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestProductJSONHidesFileURL(t *testing.T) {
	file := "https://cdn.example.com/kit.zip"
	p := Product{ID: "p1", Title: "Kit", Price: decimal.RequireFromString("29.00"), FileURL: &file, Tags: Tags{}}

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "cdn.example.com")
	assert.Contains(t, string(b), `"price":"29"`)
}
