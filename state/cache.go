// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/qianbin/directcache"

	"github.com/vechain/veescrow/cache"
	"github.com/vechain/veescrow/log"
)

var logger = log.WithContext("pkg", "state")

// rawCache keeps raw values read from or committed to the kv store.
// A cached empty value records a known-absent key.
type rawCache struct {
	raw         *directcache.Cache
	stats       cache.Stats
	lastLogTime atomic.Int64
}

func newCache(sizeMB int) *rawCache {
	c := &rawCache{raw: directcache.New(sizeMB * 1024 * 1024)}
	c.lastLogTime.Store(time.Now().UnixNano())
	return c
}

// Get returns the cached value. The value is a copy.
func (c *rawCache) Get(key []byte) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var val []byte
	if c.raw.AdvGet(key, func(v []byte) {
		val = slices.Clone(v)
	}, false) {
		if c.stats.Hit()%2000 == 0 {
			c.log()
		}
		return val, true
	}
	c.stats.Miss()
	return nil, false
}

func (c *rawCache) Set(key, val []byte) {
	if c == nil {
		return
	}
	_ = c.raw.Set(key, val)
}

func (c *rawCache) log() {
	now := time.Now().UnixNano()
	last := c.lastLogTime.Swap(now)

	if now-last > int64(time.Second*20) {
		changed, hit, miss := c.stats.Stats()
		if changed {
			logStats("state cache stats", hit, miss)
		}
		metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
		metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
	} else {
		c.lastLogTime.CompareAndSwap(now, last)
	}
}

func logStats(msg string, hit, miss int64) {
	logger.Info(msg, "lookups", hit+miss, "hitrate", cache.HitRate(hit, miss))
}
