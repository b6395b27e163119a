// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/builtin/token"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var (
	escrowAddr = thor.BytesToAddress([]byte("escrow"))
	tokenAddr  = thor.BytesToAddress([]byte("token"))
	poolAddr   = thor.BytesToAddress([]byte("rewards"))
	admin      = thor.BytesToAddress([]byte("admin"))
	whale      = thor.BytesToAddress([]byte("whale"))
	shrimp     = thor.BytesToAddress([]byte("shrimp"))

	startTime = 2800 * thor.Week
)

func ethers(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func assertWithin(t *testing.T, expected, actual *big.Int, tolerance uint64) {
	diff := new(big.Int).Sub(expected, actual)
	assert.True(t, diff.CmpAbs(new(big.Int).SetUint64(tolerance)) <= 0, "expected %s, got %s", expected, actual)
}

type testPool struct {
	*Pool
	st     *state.State
	blk    xenv.BlockContext
	token  *token.Token
	escrow *escrow.Escrow
}

func newTestPool(t *testing.T) *testPool {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	tp := &testPool{
		st:    st,
		blk:   xenv.BlockContext{Number: 1, Time: startTime},
		token: token.New(tokenAddr, st),
	}
	tp.token.Init(admin)
	tp.escrow = escrow.New(escrowAddr, st, tp.token)
	tp.Pool = New(poolAddr, st, tp.escrow, tp.token)

	require.NoError(t, tp.escrow.Init(tp.env(admin), admin))
	require.NoError(t, tp.Init(tp.env(admin), admin))
	require.NoError(t, tp.escrow.SetRewardPool(tp.env(admin), poolAddr))

	unlimited := new(big.Int).Lsh(big.NewInt(1), 255)
	for _, user := range []thor.Address{admin, whale, shrimp} {
		require.NoError(t, tp.token.Mint(tp.env(admin), user, ethers(1_000_000)))
		require.NoError(t, tp.token.Approve(tp.env(user), escrowAddr, unlimited))
	}
	require.NoError(t, tp.token.Approve(tp.env(admin), poolAddr, unlimited))
	return tp
}

func (tp *testPool) env(caller thor.Address) *xenv.Environment {
	blk := tp.blk
	return xenv.New(caller, tp.st, &blk)
}

func (tp *testPool) call(caller thor.Address, fn func(env *xenv.Environment) error) error {
	env := tp.env(caller)
	cp := env.NewCheckpoint()
	if err := fn(env); err != nil {
		env.Revert(cp)
		return err
	}
	return nil
}

func (tp *testPool) lock(t *testing.T, user thor.Address, amount *big.Int, end uint64) {
	require.NoError(t, tp.call(user, func(env *xenv.Environment) error {
		return tp.escrow.CreateLock(env, amount, end)
	}))
}

func (tp *testPool) queue(t *testing.T, amount *big.Int) {
	require.NoError(t, tp.call(admin, func(env *xenv.Environment) error {
		return tp.QueueNewRewards(env, amount)
	}))
}

func (tp *testPool) getReward(t *testing.T, user thor.Address, relock bool) *big.Int {
	var paid *big.Int
	require.NoError(t, tp.call(user, func(env *xenv.Environment) (err error) {
		paid, err = tp.GetReward(env, relock)
		return
	}))
	return paid
}

func (tp *testPool) balance(t *testing.T, addr thor.Address) *big.Int {
	bal, err := tp.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func (tp *testPool) advance(seconds uint64) {
	tp.blk.Time += seconds
	tp.blk.Number += uint32(seconds / thor.BlockInterval)
}

func TestQueueNewRewards(t *testing.T) {
	tp := newTestPool(t)
	tp.lock(t, whale, ethers(1000), startTime+52*thor.Week)
	tp.queue(t, ethers(1))

	rate, err := tp.RewardRate()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Quo(ethers(1), big.NewInt(int64(Duration))), rate)
	finish, err := tp.PeriodFinish()
	require.NoError(t, err)
	assert.Equal(t, startTime+Duration, finish)
	assert.Equal(t, ethers(1), tp.balance(t, poolAddr))

	err = tp.call(whale, func(env *xenv.Environment) error {
		return tp.QueueNewRewards(env, ethers(1))
	})
	assert.True(t, reverts.Is(err, reverts.Unauthorized))
	assert.Equal(t, "!authorized", err.Error())
}

func TestQueueWhileStreaming(t *testing.T) {
	tp := newTestPool(t)
	tp.lock(t, whale, ethers(1000), startTime+52*thor.Week)
	tp.queue(t, ethers(7))
	tp.advance(thor.Day)

	// a small top-up waits while most of it has already been streamed
	tp.queue(t, big.NewInt(5e17))
	queued, err := tp.QueuedRewards()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5e17), queued)
	finish, err := tp.PeriodFinish()
	require.NoError(t, err)
	assert.Equal(t, startTime+Duration, finish)

	// a large one restarts the period with the leftover rolled in
	tp.queue(t, ethers(7))
	queued, err = tp.QueuedRewards()
	require.NoError(t, err)
	assert.Equal(t, 0, queued.Sign())
	finish, err = tp.PeriodFinish()
	require.NoError(t, err)
	assert.Equal(t, startTime+thor.Day+Duration, finish)

	current, err := tp.CurrentRewards()
	require.NoError(t, err)
	// 7.5 queued plus six days of the first period
	assertWithin(t, new(big.Int).Add(big.NewInt(75e17), ethers(6)), current, 1e6)

	historical, err := tp.HistoricalRewards()
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(ethers(7), big.NewInt(75e17)), historical)
}

func TestGetReward(t *testing.T) {
	tp := newTestPool(t)
	tp.lock(t, whale, ethers(1000), startTime+52*thor.Week)
	tp.queue(t, ethers(1))
	rate, err := tp.RewardRate()
	require.NoError(t, err)

	tp.advance(3600)
	earned, err := tp.Earned(whale, tp.blk.Time)
	require.NoError(t, err)
	expected := new(big.Int).Mul(rate, big.NewInt(3600))
	assertWithin(t, expected, earned, 1e6)

	before := tp.balance(t, whale)
	paid := tp.getReward(t, whale, false)
	assert.Equal(t, earned, paid)
	assert.Equal(t, new(big.Int).Add(before, paid), tp.balance(t, whale))

	tp.advance(Duration)
	paid2 := tp.getReward(t, whale, false)
	total := new(big.Int).Add(paid, paid2)
	assertWithin(t, ethers(1), total, 1e7)
	assert.True(t, total.Cmp(ethers(1)) <= 0)

	// nothing left once the period is over
	tp.advance(thor.Day)
	assert.Equal(t, 0, tp.getReward(t, whale, false).Sign())
}

func TestGetRewardShares(t *testing.T) {
	tp := newTestPool(t)
	end := startTime + 52*thor.Week
	tp.lock(t, whale, ethers(3000), end)
	tp.lock(t, shrimp, ethers(1000), end)
	tp.queue(t, ethers(4))

	tp.advance(Duration)
	assertWithin(t, ethers(3), tp.getReward(t, whale, false), 1e7)
	assertWithin(t, ethers(1), tp.getReward(t, shrimp, false), 1e7)
}

func TestGetRewardRelock(t *testing.T) {
	tp := newTestPool(t)
	tp.lock(t, whale, ethers(1000), startTime+52*thor.Week)
	tp.queue(t, ethers(1))
	tp.advance(Duration)

	before := tp.balance(t, whale)
	paid := tp.getReward(t, whale, true)
	require.Positive(t, paid.Sign())

	locked, err := tp.escrow.Locked(whale)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(ethers(1000), paid), locked.Amount)
	assert.Equal(t, before, tp.balance(t, whale))
}

func TestSweep(t *testing.T) {
	tp := newTestPool(t)
	native := asset.NewNative(tp.st)
	require.NoError(t, tp.st.SetBalance(poolAddr, ethers(3)))

	err := tp.call(whale, func(env *xenv.Environment) error {
		return tp.Sweep(env, native)
	})
	assert.Equal(t, "!authorized", err.Error())

	err = tp.call(admin, func(env *xenv.Environment) error {
		return tp.Sweep(env, tp.token)
	})
	assert.Equal(t, "!rewardToken", err.Error())

	require.NoError(t, tp.call(admin, func(env *xenv.Environment) error {
		return tp.Sweep(env, native)
	}))
	bal, err := native.BalanceOf(admin)
	require.NoError(t, err)
	assert.Equal(t, ethers(3), bal)
}
