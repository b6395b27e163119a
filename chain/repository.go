// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"
	"sort"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/cache"
	"github.com/vechain/veescrow/co"
	"github.com/vechain/veescrow/kv"
	"github.com/vechain/veescrow/log"
)

const (
	hdrBucket  = kv.Bucket("h") // number => header
	propBucket = kv.Bucket("p") // property-named values such as best number
)

var (
	errNotFound   = errors.New("not found")
	bestNumberKey = []byte("best-number")

	logger = log.WithContext("pkg", "chain")
)

// Repository stores the header log.
//
// It's thread-safe.
type Repository struct {
	hdrStore  kv.Store
	propStore kv.Store

	genesis *Header
	best    atomic.Pointer[Header]
	tick    co.Signal

	headers *cache.ARC[uint32, *Header]
}

// NewRepository opens the header log in db, writing genesis when db is empty.
func NewRepository(db kv.Store, genesis *Header) (*Repository, error) {
	if genesis.Number != 0 {
		return nil, errors.New("genesis number != 0")
	}
	headers, err := cache.NewARC[uint32, *Header](1024)
	if err != nil {
		return nil, err
	}
	repo := &Repository{
		hdrStore:  hdrBucket.NewStore(db),
		propStore: propBucket.NewStore(db),
		genesis:   genesis,
		headers:   headers,
	}

	val, err := repo.propStore.Get(bestNumberKey)
	if err != nil {
		if !repo.propStore.IsNotFound(err) {
			return nil, err
		}
		bulk := db.Bulk()
		if err := repo.SaveHeader(bulk, genesis); err != nil {
			return nil, err
		}
		if err := bulk.Write(); err != nil {
			return nil, errors.Wrap(err, "write genesis")
		}
		repo.SetBestHeader(genesis)
		return repo, nil
	}

	existing, err := repo.loadHeader(0)
	if err != nil {
		return nil, errors.Wrap(err, "get existing genesis")
	}
	if existing.ID() != genesis.ID() {
		return nil, errors.New("genesis mismatch")
	}
	best, err := repo.loadHeader(binary.BigEndian.Uint32(val))
	if err != nil {
		return nil, errors.Wrap(err, "get best header")
	}
	repo.best.Store(best)
	metricBestNumber().Set(int64(best.Number))
	return repo, nil
}

// GenesisHeader returns the genesis header.
func (r *Repository) GenesisHeader() *Header {
	return r.genesis
}

// BestHeader returns the latest sealed header.
func (r *Repository) BestHeader() *Header {
	return r.best.Load()
}

// SaveHeader puts the header and the best marker into w. The header must extend the best one.
// Readers see it once w is written and SetBestHeader called.
func (r *Repository) SaveHeader(w kv.Putter, h *Header) error {
	if best := r.BestHeader(); best != nil {
		if h.Number != best.Number+1 {
			return errors.Errorf("header #%v does not extend best #%v", h.Number, best.Number)
		}
		if h.Timestamp < best.Timestamp {
			return errors.Errorf("header timestamp %v before best %v", h.Timestamp, best.Timestamp)
		}
	}
	data, err := rlp.EncodeToBytes(h)
	if err != nil {
		return err
	}
	if err := hdrBucket.NewPutter(w).Put(numberKey(h.Number), data); err != nil {
		return err
	}
	return propBucket.NewPutter(w).Put(bestNumberKey, numberKey(h.Number))
}

// SetBestHeader marks h as best and wakes tickers.
func (r *Repository) SetBestHeader(h *Header) {
	r.headers.Add(h.Number, h)
	r.best.Store(h)
	metricBestNumber().Set(int64(h.Number))
	r.tick.Broadcast()

	if h.Number%1000 == 0 {
		_, hit, miss := r.headers.Stats().Stats()
		metricCacheHitMiss().SetWithLabel(hit, map[string]string{"event": "hit"})
		metricCacheHitMiss().SetWithLabel(miss, map[string]string{"event": "miss"})
		logger.Debug("header cache stats", "lookups", hit+miss, "hitrate", cache.HitRate(hit, miss))
	}
}

// NewTicker create a signal waiter to receive an event when the best header changes.
func (r *Repository) NewTicker() co.Waiter {
	return r.tick.NewWaiter()
}

// GetHeader returns the header at number n.
func (r *Repository) GetHeader(n uint32) (*Header, error) {
	if n > r.BestHeader().Number {
		return nil, errNotFound
	}
	return r.headers.GetOrLoad(n, r.loadHeader)
}

func (r *Repository) loadHeader(n uint32) (*Header, error) {
	data, err := r.hdrStore.Get(numberKey(n))
	if err != nil {
		if r.hdrStore.IsNotFound(err) {
			return nil, errNotFound
		}
		return nil, err
	}
	var h Header
	if err := rlp.DecodeBytes(data, &h); err != nil {
		return nil, errors.Wrap(err, "decode header")
	}
	return &h, nil
}

// NearestByTime returns the latest header whose timestamp is not after ts,
// or genesis if ts precedes all headers.
func (r *Repository) NearestByTime(ts uint64) (*Header, error) {
	best := r.BestHeader()
	if ts >= best.Timestamp {
		return best, nil
	}
	var ferr error
	// first header strictly after ts
	n := sort.Search(int(best.Number)+1, func(i int) bool {
		if ferr != nil {
			return true
		}
		h, err := r.GetHeader(uint32(i))
		if err != nil {
			ferr = err
			return true
		}
		return h.Timestamp > ts
	})
	if ferr != nil {
		return nil, ferr
	}
	if n == 0 {
		return r.genesis, nil
	}
	return r.GetHeader(uint32(n - 1))
}

// IsNotFound returns if an error means not found.
func (r *Repository) IsNotFound(err error) bool {
	return err == errNotFound
}
