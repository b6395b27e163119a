// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/logdb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var logger = log.WithContext("pkg", "runtime")

// Func is a call into the builtin contracts.
type Func func(env *xenv.Environment, c *builtin.Contracts) error

// Output is what a successful call emitted.
type Output struct {
	Origin    thor.Address
	Block     xenv.BlockContext
	Events    []*xenv.Event
	Transfers []*xenv.Transfer
}

type pendingBlock struct {
	state   *state.State
	ctx     xenv.BlockContext
	outputs []*Output
}

// Runtime executes calls one at a time against the pending block, and seals
// it into the chain.
type Runtime struct {
	mu      sync.Mutex
	stater  *state.Stater
	repo    *chain.Repository
	logDB   *logdb.LogDB
	clock   func() uint64
	pending *pendingBlock
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClock replaces the wall clock giving the time of new blocks.
func WithClock(clock func() uint64) Option {
	return func(rt *Runtime) {
		rt.clock = clock
	}
}

// New create a Runtime on top of the best block of repo. Log records of
// blocks above the best one, left by an interrupted sealing, are dropped.
func New(stater *state.Stater, repo *chain.Repository, logDB *logdb.LogDB, opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		stater: stater,
		repo:   repo,
		logDB:  logDB,
		clock:  func() uint64 { return uint64(time.Now().Unix()) },
	}
	for _, opt := range opts {
		opt(rt)
	}
	if logDB != nil {
		if err := logDB.Truncate(repo.BestHeader().Number + 1); err != nil {
			return nil, errors.Wrap(err, "truncate logs")
		}
	}
	return rt, nil
}

func (rt *Runtime) Repo() *chain.Repository { return rt.repo }
func (rt *Runtime) LogDB() *logdb.LogDB     { return rt.logDB }

func (rt *Runtime) pendingBlock() *pendingBlock {
	if rt.pending == nil {
		best := rt.repo.BestHeader()
		rt.pending = &pendingBlock{
			state: rt.stater.NewState(),
			ctx: xenv.BlockContext{
				Number: best.Number + 1,
				Time:   max(rt.clock(), best.Timestamp),
			},
		}
	}
	return rt.pending
}

// Pending returns the context of the block calls currently execute in.
func (rt *Runtime) Pending() xenv.BlockContext {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.pendingBlock().ctx
}

func (rt *Runtime) run(origin thor.Address, fn Func, keep bool) (*Output, error) {
	p := rt.pendingBlock()
	blockCtx := p.ctx
	env := xenv.New(origin, p.state, &blockCtx)
	cp := env.NewCheckpoint()

	if err := fn(env, builtin.Bind(p.state)); err != nil {
		env.Revert(cp)
		return nil, err
	}
	out := &Output{origin, blockCtx, env.Events(), env.Transfers()}
	if !keep {
		env.Revert(cp)
	}
	return out, nil
}

// Exec runs fn as a call made by origin in the pending block. Changes made
// by a failing call are discarded.
func (rt *Runtime) Exec(origin thor.Address, fn Func) (*Output, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	out, err := rt.run(origin, fn, true)
	metricCallDuration().Observe(time.Since(start).Milliseconds())
	if err != nil {
		result := "error"
		if reverts.IsRevertErr(err) {
			result = "reverted"
		}
		metricCalls().AddWithLabel(1, map[string]string{"result": result})
		logger.Debug("call failed", "origin", origin, "error", err)
		return nil, err
	}
	metricCalls().AddWithLabel(1, map[string]string{"result": "ok"})
	rt.pending.outputs = append(rt.pending.outputs, out)
	return out, nil
}

// View runs fn as Exec does and discards every change it made.
func (rt *Runtime) View(origin thor.Address, fn Func) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	_, err := rt.run(origin, fn, false)
	return err
}

// Mine seals the pending block: its state changes and header are written in
// one batch, then its records go to the log db.
func (rt *Runtime) Mine() (*chain.Header, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	p := rt.pendingBlock()
	stage, err := p.state.Stage()
	if err != nil {
		return nil, err
	}
	header := &chain.Header{
		Number:      p.ctx.Number,
		Timestamp:   p.ctx.Time,
		ChangesHash: stage.Hash(),
	}

	bulk := rt.stater.Store().Bulk()
	if err := rt.repo.SaveHeader(bulk, header); err != nil {
		return nil, errors.Wrap(err, "save header")
	}
	// writes the bulk
	if err := stage.Commit(bulk); err != nil {
		return nil, err
	}
	rt.pending = nil

	var logErr error
	if rt.logDB != nil {
		batch := rt.logDB.Prepare(header)
		for _, out := range p.outputs {
			batch.Insert(out.Origin, out.Events, out.Transfers)
		}
		if err := batch.Commit(); err != nil {
			logErr = errors.Wrap(err, "write logs")
		}
	}
	rt.repo.SetBestHeader(header)

	metricBlockCalls().Observe(int64(len(p.outputs)))
	logger.Debug("block mined", "number", header.Number, "time", header.Timestamp, "calls", len(p.outputs), "changes", stage.Len())
	return header, logErr
}
