// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/builtin/token"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var (
	escrowAddr  = thor.BytesToAddress([]byte("escrow"))
	tokenAddr   = thor.BytesToAddress([]byte("token"))
	feeAddr     = thor.BytesToAddress([]byte("fee-distributor"))
	penaltyAddr = thor.BytesToAddress([]byte("penalty-distributor"))
	admin       = thor.BytesToAddress([]byte("admin"))
	emergency   = thor.BytesToAddress([]byte("emergency"))
	alice       = thor.BytesToAddress([]byte("alice"))
	bob         = thor.BytesToAddress([]byte("bob"))
	carol       = thor.BytesToAddress([]byte("carol"))

	startTime = 2800 * thor.Week
)

func ethers(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

type testEnv struct {
	st      *state.State
	blk     xenv.BlockContext
	token   *token.Token
	native  *asset.Native
	escrow  *escrow.Escrow
	fee     *Distributor
	penalty *Distributor
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	te := &testEnv{
		st:     st,
		blk:    xenv.BlockContext{Number: 1, Time: startTime},
		token:  token.New(tokenAddr, st),
		native: asset.NewNative(st),
	}
	te.token.Init(admin)
	te.escrow = escrow.New(escrowAddr, st, te.token)
	te.fee = New("fee", feeAddr, st, te.escrow, te.native, false)
	te.penalty = New("penalty", penaltyAddr, st, te.escrow, te.token, true)

	require.NoError(t, te.escrow.Init(te.env(admin), admin))
	require.NoError(t, te.fee.Init(te.env(admin), startTime, admin, emergency))
	require.NoError(t, te.penalty.Init(te.env(admin), startTime, admin, emergency))
	require.NoError(t, te.escrow.SetDepositor(te.env(admin), penaltyAddr, true))

	unlimited := new(big.Int).Lsh(big.NewInt(1), 255)
	require.NoError(t, st.SetBalance(admin, ethers(1_000_000)))
	for _, user := range []thor.Address{admin, alice, bob, carol} {
		require.NoError(t, te.token.Mint(te.env(admin), user, ethers(1_000_000)))
		require.NoError(t, te.token.Approve(te.env(user), escrowAddr, unlimited))
	}
	return te
}

func (te *testEnv) env(caller thor.Address) *xenv.Environment {
	blk := te.blk
	return xenv.New(caller, te.st, &blk)
}

// call runs fn as caller, discarding its changes when it fails.
func (te *testEnv) call(caller thor.Address, fn func(env *xenv.Environment) error) error {
	env := te.env(caller)
	cp := env.NewCheckpoint()
	if err := fn(env); err != nil {
		env.Revert(cp)
		return err
	}
	return nil
}

func (te *testEnv) claim(d *Distributor, user thor.Address) (*big.Int, error) {
	var amount *big.Int
	err := te.call(user, func(env *xenv.Environment) (err error) {
		amount, err = d.Claim(env, user)
		return
	})
	return amount, err
}

func (te *testEnv) advance(seconds uint64) {
	te.blk.Time += seconds
	te.blk.Number += uint32(seconds / thor.BlockInterval)
}

func (te *testEnv) nativeBalance(t *testing.T, addr thor.Address) *big.Int {
	bal, err := te.native.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func (te *testEnv) tokenBalance(t *testing.T, addr thor.Address) *big.Int {
	bal, err := te.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) CreateLock(user thor.Address, amount *big.Int, unlockTime uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.env.call(user, func(env *xenv.Environment) error {
			return st.env.escrow.CreateLock(env, amount, unlockTime)
		})
		if err != nil {
			t.Fatalf("failed to create lock for %s: %v", user, err)
		}
	})
}

// SendFee transfers native reward to the fee distributor.
func (st *TestSequence) SendFee(amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.env.call(admin, func(env *xenv.Environment) error {
			return st.env.native.Transfer(env, feeAddr, amount)
		})
		if err != nil {
			t.Fatalf("failed to send fee: %v", err)
		}
	})
}

// SendPenalty transfers token reward to the penalty distributor.
func (st *TestSequence) SendPenalty(amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		err := st.env.call(admin, func(env *xenv.Environment) error {
			return st.env.token.Transfer(env, penaltyAddr, amount)
		})
		if err != nil {
			t.Fatalf("failed to send penalty: %v", err)
		}
	})
}

func (st *TestSequence) CheckpointToken(d *Distributor) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.call(admin, d.CheckpointToken); err != nil {
			t.Fatalf("failed to checkpoint token of %s: %v", d.Name(), err)
		}
	})
}

func (st *TestSequence) CheckpointTotalSupply(d *Distributor) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.call(admin, d.CheckpointTotalSupply); err != nil {
			t.Fatalf("failed to checkpoint total supply of %s: %v", d.Name(), err)
		}
	})
}

func (st *TestSequence) Advance(seconds uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.advance(seconds)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}
