// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"fmt"
	"sync/atomic"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/genesis"
	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/runtime"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
)

// Chain is an in-memory chain with a controllable clock: leveldb for state
// and headers, sqlite for logs, and a runtime sealing blocks on demand.
type Chain struct {
	db       *lvldb.LevelDB
	genesis  *genesis.Genesis
	repo     *chain.Repository
	stater   *state.Stater
	logDB    *logdb.LogDB
	rt       *runtime.Runtime
	now      atomic.Uint64
	accounts []genesis.DevAccount
}

// NewDefault creates a Chain from the dev network genesis.
func NewDefault() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a Chain whose clock starts at the genesis launch time.
func NewWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}
	repo, err := gene.Setup(db, logDB)
	if err != nil {
		return nil, fmt.Errorf("unable to setup genesis: %w", err)
	}

	c := &Chain{
		db:       db,
		genesis:  gene,
		repo:     repo,
		stater:   state.NewStater(db, 0),
		logDB:    logDB,
		accounts: genesis.DevAccounts(),
	}
	c.now.Store(repo.GenesisHeader().Timestamp + thor.BlockInterval)
	c.rt, err = runtime.New(c.stater, repo, logDB, runtime.WithClock(c.now.Load))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chain) Repo() *chain.Repository        { return c.repo }
func (c *Chain) Stater() *state.Stater          { return c.stater }
func (c *Chain) LogDB() *logdb.LogDB            { return c.logDB }
func (c *Chain) Runtime() *runtime.Runtime      { return c.rt }
func (c *Chain) Genesis() *genesis.Genesis      { return c.genesis }
func (c *Chain) Accounts() []genesis.DevAccount { return c.accounts }
func (c *Chain) Admin() thor.Address            { return c.accounts[0].Address }
func (c *Chain) Now() uint64                    { return c.now.Load() }
func (c *Chain) BestHeader() *chain.Header      { return c.repo.BestHeader() }
func (c *Chain) Contracts() *builtin.Contracts  { return builtin.Bind(c.stater.NewState()) }
func (c *Chain) Clock() func() uint64           { return c.now.Load }

func (c *Chain) Exec(origin thor.Address, fn runtime.Func) (*runtime.Output, error) {
	return c.rt.Exec(origin, fn)
}

// Mine seals the pending block.
func (c *Chain) Mine() (*chain.Header, error) {
	return c.rt.Mine()
}

// Advance seals the pending block and moves the clock forward.
func (c *Chain) Advance(seconds uint64) error {
	if _, err := c.rt.Mine(); err != nil {
		return err
	}
	c.now.Add(seconds)
	return nil
}

// Close releases the databases.
func (c *Chain) Close() {
	c.logDB.Close()
	c.db.Close()
}
