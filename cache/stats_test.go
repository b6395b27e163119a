// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStats(t *testing.T) {
	cs := &Stats{}
	cs.Hit()
	cs.Miss()
	_, hit, miss := cs.Stats()

	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ := cs.Stats()
	assert.False(t, changed)

	cs.Hit()
	cs.Miss()
	assert.Equal(t, int64(3), cs.Hit())

	changed, hit, miss = cs.Stats()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(2), miss)
	assert.True(t, changed)

	assert.Equal(t, "0.600", HitRate(hit, miss))
	assert.Equal(t, "n/a", HitRate(0, 0))
}

func TestARC(t *testing.T) {
	_, err := NewARC[uint32, string](0)
	assert.Error(t, err)

	c, err := NewARC[uint32, string](2)
	require.NoError(t, err)

	loads := 0
	load := func(n uint32) (string, error) {
		loads++
		if n == 99 {
			return "", errors.New("missing")
		}
		return "block", nil
	}

	v, err := c.GetOrLoad(1, load)
	require.NoError(t, err)
	assert.Equal(t, "block", v)
	_, _ = c.GetOrLoad(1, load)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad(99, load)
	assert.Error(t, err)
	_, ok := c.Get(99)
	assert.False(t, ok, "failed loads are not cached")

	_, hit, miss := c.Stats().Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(3), miss)
}

func TestLRU(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	_, ok := c.Get("a")
	assert.False(t, ok, "evicted")

	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	c.Remove("c")
	_, ok = c.Get("c")
	assert.False(t, ok)

	c.Purge()
	_, ok = c.Get("b")
	assert.False(t, ok)
}
