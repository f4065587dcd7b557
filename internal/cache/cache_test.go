package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pengowen123/blocks/internal/cache"
)

func TestKeyIsStableAndInputSensitive(t *testing.T) {
	a := cache.Key("set x = 1;", 0)
	b := cache.Key("set x = 1;", 0)
	c := cache.Key("set x = 1;", 1)
	d := cache.Key("set x = 2;", 0)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	c := cache.New(filepath.Join(t.TempDir(), "blocksc-cache"))
	key := cache.Key("set x = 1;", 0)

	entry := &cache.Entry{
		Words:             []int32{1, 2, 3},
		DataSectionSize:   1,
		SymbolSectionSize: 0,
		Vars:              map[string]int32{"x": 8},
	}
	require.NoError(t, c.Put(key, entry))

	got, ok, err := c.Get(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestGetMissingKey(t *testing.T) {
	c := cache.New(t.TempDir())
	_, ok, err := c.Get("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}
