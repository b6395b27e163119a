// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/lvldb"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// Builder helper to build genesis block.
type Builder struct {
	timestamp uint64

	stateProcs []func(state *state.State) error
	calls      []call
}

type call struct {
	fn     func(env *xenv.Environment, c *builtin.Contracts) error
	caller thor.Address
}

// Output is what a genesis call emitted.
type Output struct {
	Origin    thor.Address
	Events    []*xenv.Event
	Transfers []*xenv.Transfer
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Call add a contract call.
func (b *Builder) Call(fn func(env *xenv.Environment, c *builtin.Contracts) error, caller thor.Address) *Builder {
	b.calls = append(b.calls, call{fn, caller})
	return b
}

// Build builds the genesis header on top of an empty state. The returned
// stage holds the genesis state, not yet committed.
func (b *Builder) Build() (*chain.Header, *state.Stage, []*Output, error) {
	mem, err := lvldb.NewMem()
	if err != nil {
		return nil, nil, nil, err
	}
	defer mem.Close()
	st := state.New(mem)

	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return nil, nil, nil, errors.Wrap(err, "state process")
		}
	}

	blockCtx := &xenv.BlockContext{Number: 0, Time: b.timestamp}
	contracts := builtin.Bind(st)
	outputs := make([]*Output, 0, len(b.calls))
	for i, call := range b.calls {
		env := xenv.New(call.caller, st, blockCtx)
		if err := call.fn(env, contracts); err != nil {
			return nil, nil, nil, errors.Wrapf(err, "call #%d", i)
		}
		outputs = append(outputs, &Output{call.caller, env.Events(), env.Transfers()})
	}

	stage, err := st.Stage()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "stage state")
	}
	return &chain.Header{
		Number:      0,
		Timestamp:   b.timestamp,
		ChangesHash: stage.Hash(),
	}, stage, outputs, nil
}
