// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/veescrow/stackedmap"
)

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]int{"supply": 1}

	sm := stackedmap.New(func(key string) (int, bool, error) {
		v, ok := src[key]
		return v, ok, nil
	})
	sm.Push()

	get := func(key string) int {
		v, ok, err := sm.Get(key)
		assert.NoError(err)
		assert.True(ok)
		return v
	}

	tests := []struct {
		f        func()
		depth    int
		putValue int
		want     int
	}{
		{func() {}, 1, 0, 1},
		{func() { sm.Push() }, 2, 2, 2},
		{func() {}, 2, 3, 3},
		{func() { sm.Push() }, 3, 4, 4},
		{func() { sm.Pop() }, 2, 0, 3},
		{func() { sm.Pop() }, 1, 0, 1},
	}
	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putValue != 0 {
			sm.Put("supply", test.putValue)
		}
		assert.Equal(test.want, get("supply"))
	}

	sm.Push()
	sm.Push()
	assert.Equal(3, sm.Depth())
	sm.PopTo(0)
	assert.Equal(0, sm.Depth())
}

func TestStackedMapSourceError(t *testing.T) {
	errBroken := errors.New("broken")
	sm := stackedmap.New(func(string) (int, bool, error) { return 0, false, errBroken })
	sm.Push()

	_, _, err := sm.Get("x")
	assert.Equal(t, errBroken, err)

	sm.Put("x", 7)
	v, ok, err := sm.Get("x")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestStackedMapJournal(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(string) (string, bool, error) { return "", false, nil })

	kvs := []struct{ k, v string }{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
	}
	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}

	i := 0
	sm.Journal(func(k, v string) bool {
		assert.Equal(kvs[i].k, k)
		assert.Equal(kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(len(kvs), i)

	i = 0
	sm.Journal(func(string, string) bool {
		i++
		return false
	})
	assert.Equal(1, i, "Journal traverse should abort")

	// popping a level with a repeated key keeps the lower revision
	sm.PopTo(2)
	v, ok, _ := sm.Get("a")
	assert.True(ok)
	assert.Equal("b", v)
	sm.PopTo(0)
	_, ok, _ = sm.Get("a")
	assert.False(ok)
}
