package sound

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genTone(f Freq) func() (*Sound, error) {
	return func() (*Sound, error) {
		return Tone(f, time.Millisecond, testRate), nil
	}
}

func TestCacheHitReturnsSameBuffer(t *testing.T) {
	c := NewCache(4)

	first, err := c.Canonical("a", testRate, genTone(440))
	require.NoError(t, err)
	second, err := c.Canonical("a", testRate, func() (*Sound, error) {
		t.Fatal("generator must not run on a hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEvictsLRU(t *testing.T) {
	const capacity = 4
	c := NewCache(capacity)

	for i := range 10 {
		_, err := c.Canonical(fmt.Sprintf("k%d", i), testRate, genTone(440))
		require.NoError(t, err)
	}
	assert.Equal(t, capacity, c.Len())

	// The most recently inserted keys survive; k6..k9 hit without
	// invoking the generator.
	for i := 6; i < 10; i++ {
		_, err := c.Canonical(fmt.Sprintf("k%d", i), testRate, func() (*Sound, error) {
			t.Fatalf("k%d should have been retained", i)
			return nil, nil
		})
		require.NoError(t, err)
	}
}

func TestCacheAccessRefreshesRecency(t *testing.T) {
	c := NewCache(2)

	_, err := c.Canonical("a", testRate, genTone(440))
	require.NoError(t, err)
	_, err = c.Canonical("b", testRate, genTone(550))
	require.NoError(t, err)

	// Touch a, insert c: b is now the LRU and must be evicted.
	_, err = c.Canonical("a", testRate, genTone(440))
	require.NoError(t, err)
	_, err = c.Canonical("c", testRate, genTone(660))
	require.NoError(t, err)

	regenerated := false
	_, err = c.Canonical("b", testRate, func() (*Sound, error) {
		regenerated = true
		return Tone(550, time.Millisecond, testRate), nil
	})
	require.NoError(t, err)
	assert.True(t, regenerated, "b must have been evicted")
	assert.Equal(t, 2, c.Len())
}

func TestCacheFlush(t *testing.T) {
	c := NewCache(8)
	_, err := c.Canonical("a", testRate, genTone(440))
	require.NoError(t, err)

	c.Flush()
	assert.Zero(t, c.Len())

	regenerated := false
	_, err = c.Canonical("a", testRate, func() (*Sound, error) {
		regenerated = true
		return Tone(440, time.Millisecond, testRate), nil
	})
	require.NoError(t, err)
	assert.True(t, regenerated)
}

func TestCacheGeneratorError(t *testing.T) {
	c := NewCache(2)
	wantErr := fmt.Errorf("no such stimulus")
	_, err := c.Canonical("bad", testRate, func() (*Sound, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Zero(t, c.Len(), "failed generation must not be cached")
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := NewCache(0)
	for i := range DefaultCacheCapacity + 10 {
		_, err := c.Canonical(fmt.Sprintf("k%d", i), testRate, genTone(440))
		require.NoError(t, err)
	}
	assert.Equal(t, DefaultCacheCapacity, c.Len())
}
