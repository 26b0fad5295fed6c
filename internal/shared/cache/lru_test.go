package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_UpdateExisting(t *testing.T) {
	c := NewLRU[string, int](2)
	c.Put("a", 1)
	c.Put("a", 5)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_ZeroCapacityNormalised(t *testing.T) {
	c := NewLRU[int, int](0)
	c.Put(1, 1)
	c.Put(2, 2)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Remove(t *testing.T) {
	c := NewLRU[string, int](4)
	c.Put("a", 1)
	c.Remove("a")
	c.Remove("missing")
	assert.Equal(t, 0, c.Len())
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[string, int](32)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i*j)%50)
				c.Put(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 32)
}

func TestResults_KeyedByContentHash(t *testing.T) {
	r := NewResults[string](8)
	h1 := ContentHash([]byte("use a::b;"))
	h2 := ContentHash([]byte("use c::d;"))
	require.NotEqual(t, h1, h2)
	assert.Len(t, h1, 64)

	r.Store("src/lib.rs", h1, "first")

	v, ok := r.Lookup("src/lib.rs", h1)
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	_, ok = r.Lookup("src/lib.rs", h2)
	assert.False(t, ok, "edited content must miss")

	r.Forget("src/lib.rs", h1)
	assert.Equal(t, 0, r.Len())
}
