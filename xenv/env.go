// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// Event is emitted by a builtin contract. Topics[0] is the event id.
type Event struct {
	Address thor.Address
	Topics  []thor.Bytes32
	Data    []byte // rlp encoded arguments
}

// Transfer records an asset movement.
type Transfer struct {
	Asset     thor.Address // zero for the native asset
	Sender    thor.Address
	Recipient thor.Address
	Amount    *big.Int
}

// EventID returns the topic identifying events named name.
func EventID(name string) thor.Bytes32 {
	return thor.Blake2b([]byte(name))
}

type sink struct {
	events    []*Event
	transfers []*Transfer
}

// Environment is where a builtin contract call runs: the caller, the block
// it executes in, the state and the sink of emitted events.
type Environment struct {
	origin   thor.Address
	caller   thor.Address
	state    *state.State
	blockCtx *BlockContext
	sink     *sink
}

// New create a new env for a call made by origin.
func New(origin thor.Address, state *state.State, blockCtx *BlockContext) *Environment {
	return &Environment{
		origin:   origin,
		caller:   origin,
		state:    state,
		blockCtx: blockCtx,
		sink:     &sink{},
	}
}

func (env *Environment) Origin() thor.Address        { return env.origin }
func (env *Environment) Caller() thor.Address        { return env.caller }
func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Now() uint64                 { return env.blockCtx.Time }

// WithCaller returns an env sharing state and sink, used when a contract calls another one.
func (env *Environment) WithCaller(caller thor.Address) *Environment {
	cpy := *env
	cpy.caller = caller
	return &cpy
}

// Log emits an event. Indexed values go to topics, args are rlp encoded as data.
func (env *Environment) Log(address thor.Address, name string, topics []thor.Bytes32, args ...any) error {
	data, err := rlp.EncodeToBytes(args)
	if err != nil {
		return errors.WithMessage(err, "encode event")
	}
	env.sink.events = append(env.sink.events, &Event{
		Address: address,
		Topics:  append([]thor.Bytes32{EventID(name)}, topics...),
		Data:    data,
	})
	return nil
}

// AddTransfer records an asset movement.
func (env *Environment) AddTransfer(asset, sender, recipient thor.Address, amount *big.Int) {
	env.sink.transfers = append(env.sink.transfers, &Transfer{
		Asset:     asset,
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})
}

func (env *Environment) Events() []*Event       { return env.sink.events }
func (env *Environment) Transfers() []*Transfer { return env.sink.transfers }

// Checkpoint marks state and sink so that Revert can discard later changes.
type Checkpoint struct {
	revision  int
	events    int
	transfers int
}

func (env *Environment) NewCheckpoint() Checkpoint {
	return Checkpoint{
		revision:  env.state.NewCheckpoint(),
		events:    len(env.sink.events),
		transfers: len(env.sink.transfers),
	}
}

// Revert discards state changes and emitted records since cp.
func (env *Environment) Revert(cp Checkpoint) {
	env.state.RevertTo(cp.revision)
	env.sink.events = env.sink.events[:cp.events]
	env.sink.transfers = env.sink.transfers[:cp.transfers]
}
