// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/genesis"
	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

type fixture struct {
	db    *lvldb.LevelDB
	logDB *logdb.LogDB
	now   atomic.Uint64
	rt    *runtime.Runtime
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		logDB.Close()
		db.Close()
	})

	f := &fixture{db: db, logDB: logDB}
	f.now.Store(genesis.DevLaunchTime + thor.BlockInterval)
	f.rt = f.open(t)
	return f
}

func (f *fixture) open(t *testing.T) *runtime.Runtime {
	repo, err := genesis.NewDevnet().Setup(f.db, f.logDB)
	require.NoError(t, err)
	rt, err := runtime.New(state.NewStater(f.db, 0), repo, f.logDB, runtime.WithClock(f.now.Load))
	require.NoError(t, err)
	return rt
}

func (f *fixture) balance(t *testing.T, addr thor.Address) *big.Int {
	var bal *big.Int
	require.NoError(t, f.rt.View(thor.Address{}, func(_ *xenv.Environment, c *builtin.Contracts) (err error) {
		bal, err = c.Token.BalanceOf(addr)
		return
	}))
	return bal
}

var (
	alice = genesis.DevAccounts()[2].Address
	bob   = genesis.DevAccounts()[3].Address
)

func transfer(amount int64) runtime.Func {
	return func(env *xenv.Environment, c *builtin.Contracts) error {
		return c.Token.Transfer(env, bob, big.NewInt(amount))
	}
}

func TestExecAndMine(t *testing.T) {
	f := newFixture(t)
	before := f.balance(t, bob)

	out, err := f.rt.Exec(alice, transfer(5))
	require.NoError(t, err)
	assert.Equal(t, alice, out.Origin)
	require.Len(t, out.Transfers, 1)
	assert.Len(t, out.Events, 1)

	// pending changes are visible before sealing
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(5)), f.balance(t, bob))

	pending := f.rt.Pending()
	header, err := f.rt.Mine()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), header.Number)
	assert.Equal(t, pending.Time, header.Timestamp)
	assert.Equal(t, header, f.rt.Repo().BestHeader())

	transfers, err := f.logDB.FilterTransfers(context.Background(), &logdb.TransferFilter{
		Range: &logdb.Range{Unit: logdb.Block, From: 1, To: 1},
	})
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, big.NewInt(5), transfers[0].Amount)
	assert.Equal(t, bob, transfers[0].Recipient)

	// committed state survives reopening
	f.rt = f.open(t)
	assert.Equal(t, uint32(1), f.rt.Repo().BestHeader().Number)
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(5)), f.balance(t, bob))
}

func TestFailedCallReverted(t *testing.T) {
	f := newFixture(t)
	before := f.balance(t, bob)

	_, err := f.rt.Exec(alice, func(env *xenv.Environment, c *builtin.Contracts) error {
		if err := transfer(5)(env, c); err != nil {
			return err
		}
		return c.Escrow.Withdraw(env)
	})
	assert.True(t, reverts.IsRevertErr(err))
	assert.Equal(t, before, f.balance(t, bob))

	_, err = f.rt.Mine()
	require.NoError(t, err)
	transfers, err := f.logDB.FilterTransfers(context.Background(), &logdb.TransferFilter{
		Range: &logdb.Range{Unit: logdb.Block, From: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestView(t *testing.T) {
	f := newFixture(t)
	before := f.balance(t, bob)

	require.NoError(t, f.rt.View(alice, transfer(5)))
	assert.Equal(t, before, f.balance(t, bob))
}

func TestBlockTime(t *testing.T) {
	f := newFixture(t)

	h1, err := f.rt.Mine()
	require.NoError(t, err)

	// a clock going backwards does not move blocks back in time
	f.now.Store(genesis.DevLaunchTime)
	h2, err := f.rt.Mine()
	require.NoError(t, err)
	assert.Equal(t, h1.Number+1, h2.Number)
	assert.Equal(t, h1.Timestamp, h2.Timestamp)

	f.now.Add(thor.Week)
	h3, err := f.rt.Mine()
	require.NoError(t, err)
	assert.Equal(t, genesis.DevLaunchTime+thor.Week, h3.Timestamp)

	nearest, err := f.rt.Repo().NearestByTime(genesis.DevLaunchTime + thor.Day)
	require.NoError(t, err)
	assert.Equal(t, h2.Number, nearest.Number)
}

func TestConcurrentExec(t *testing.T) {
	f := newFixture(t)
	before := f.balance(t, bob)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.rt.Exec(alice, transfer(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	_, err := f.rt.Mine()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(before, big.NewInt(20)), f.balance(t, bob))
}
