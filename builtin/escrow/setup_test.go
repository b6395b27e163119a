// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin/token"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var (
	escrowAddr = thor.BytesToAddress([]byte("escrow"))
	tokenAddr  = thor.BytesToAddress([]byte("token"))
	admin      = thor.BytesToAddress([]byte("admin"))
	alice      = thor.BytesToAddress([]byte("alice"))
	bob        = thor.BytesToAddress([]byte("bob"))
	carol      = thor.BytesToAddress([]byte("carol"))
	pool       = thor.BytesToAddress([]byte("pool"))

	// week aligned genesis time
	startTime = 2800 * thor.Week
)

func ethers(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type testEscrow struct {
	*Escrow
	st    *state.State
	token *token.Token
	blk   xenv.BlockContext
}

func newTestEscrow(t *testing.T) *testEscrow {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	te := &testEscrow{
		st:    st,
		token: token.New(tokenAddr, st),
		blk:   xenv.BlockContext{Number: 1, Time: startTime},
	}
	te.token.Init(admin)
	te.Escrow = New(escrowAddr, st, te.token)
	require.NoError(t, te.Init(te.env(admin), admin))

	unlimited := new(big.Int).Lsh(big.NewInt(1), 255)
	for _, user := range []thor.Address{alice, bob, carol, pool} {
		require.NoError(t, te.token.Mint(te.env(admin), user, ethers(1_000_000)))
		require.NoError(t, te.token.Approve(te.env(user), escrowAddr, unlimited))
	}
	return te
}

func (te *testEscrow) env(caller thor.Address) *xenv.Environment {
	blk := te.blk
	return xenv.New(caller, te.st, &blk)
}

// call runs fn as caller, discarding its changes when it fails.
func (te *testEscrow) call(caller thor.Address, fn func(env *xenv.Environment) error) error {
	env := te.env(caller)
	cp := env.NewCheckpoint()
	if err := fn(env); err != nil {
		env.Revert(cp)
		return err
	}
	return nil
}

func (te *testEscrow) advance(seconds uint64) {
	te.blk.Time += seconds
	te.blk.Number += uint32(seconds / thor.BlockInterval)
}

func (te *testEscrow) balance(t *testing.T, user thor.Address) *big.Int {
	bal, err := te.BalanceOf(user, te.blk.Time)
	require.NoError(t, err)
	return bal
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	escrow *testEscrow

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(escrow *testEscrow) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), escrow: escrow}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) CreateLock(user thor.Address, amount *big.Int, unlockTime uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.escrow.call(user, func(env *xenv.Environment) error {
			return st.escrow.CreateLock(env, amount, unlockTime)
		})
		if err != nil {
			t.Fatalf("failed to create lock for %s: %v", user, err)
		}
		t.Logf("created lock for %s until %d", user, unlockTime)
	})
}

func (st *TestSequence) IncreaseAmount(user thor.Address, amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.escrow.call(user, func(env *xenv.Environment) error {
			return st.escrow.IncreaseAmount(env, amount)
		})
		if err != nil {
			t.Fatalf("failed to increase amount for %s: %v", user, err)
		}
	})
}

func (st *TestSequence) ExtendUnlockTime(user thor.Address, end uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.escrow.call(user, func(env *xenv.Environment) error {
			return st.escrow.ExtendUnlockTime(env, end)
		})
		if err != nil {
			t.Fatalf("failed to extend lock for %s: %v", user, err)
		}
	})
}

func (st *TestSequence) Withdraw(user thor.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.escrow.call(user, st.escrow.Withdraw)
		if err != nil {
			t.Fatalf("failed to withdraw for %s: %v", user, err)
		}
	})
}

func (st *TestSequence) Checkpoint() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.escrow.call(admin, st.escrow.Checkpoint); err != nil {
			t.Fatalf("failed to checkpoint: %v", err)
		}
	})
}

func (st *TestSequence) Advance(seconds uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.escrow.advance(seconds)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}
