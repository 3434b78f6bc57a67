package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsExactlyLeastRecentlyUsed(t *testing.T) {
	c, err := New[int](DefaultCapacity)
	require.NoError(t, err)

	for i := 0; i < DefaultCapacity; i++ {
		c.Set(fmt.Sprint(i), i)
	}
	require.Equal(t, DefaultCapacity, c.Len())

	// "0" pasa a ser reciente; el más viejo ahora es "1"
	v, ok := c.Get("0")
	require.True(t, ok)
	assert.Equal(t, 0, v)

	c.Set("new", -1)
	assert.Equal(t, DefaultCapacity, c.Len())
	assert.False(t, c.Contains("1"))
	for i := 0; i < DefaultCapacity; i++ {
		if i == 1 {
			continue
		}
		assert.True(t, c.Contains(fmt.Sprint(i)), "key %d", i)
	}
	assert.True(t, c.Contains("new"))
}

func TestLRUDelete(t *testing.T) {
	c, err := New[string](2)
	require.NoError(t, err)

	c.Set("a", "x")
	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUDefaultCapacity(t *testing.T) {
	c, err := New[int](0)
	require.NoError(t, err)
	for i := 0; i < DefaultCapacity+10; i++ {
		c.Set(fmt.Sprint(i), i)
	}
	assert.Equal(t, DefaultCapacity, c.Len())
}
