// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package asset

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

// Asset is a fungible balance the builtin contracts hold and move.
type Asset interface {
	Address() thor.Address
	BalanceOf(owner thor.Address) (*big.Int, error)
	// Transfer moves amount from the caller of env to recipient.
	Transfer(env *xenv.Environment, recipient thor.Address, amount *big.Int) error
	// TransferFrom moves amount from owner to recipient on behalf of the caller of env.
	TransferFrom(env *xenv.Environment, owner, recipient thor.Address, amount *big.Int) error
}

// Native is the asset kept in account balances.
type Native struct {
	state *state.State
}

var _ Asset = (*Native)(nil)

func NewNative(state *state.State) *Native {
	return &Native{state}
}

// Address of the native asset is the zero address.
func (n *Native) Address() thor.Address {
	return thor.Address{}
}

func (n *Native) BalanceOf(owner thor.Address) (*big.Int, error) {
	return n.state.GetBalance(owner)
}

func (n *Native) Transfer(env *xenv.Environment, recipient thor.Address, amount *big.Int) error {
	return n.move(env, env.Caller(), recipient, amount)
}

// TransferFrom pulls from owner, which must have signed the call or be the direct caller.
func (n *Native) TransferFrom(env *xenv.Environment, owner, recipient thor.Address, amount *big.Int) error {
	if owner != env.Origin() && owner != env.Caller() {
		return reverts.New(reverts.Unauthorized, "native: owner not signer")
	}
	return n.move(env, owner, recipient, amount)
}

func (n *Native) move(env *xenv.Environment, sender, recipient thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "native: negative amount")
	}
	if amount.Sign() == 0 || sender == recipient {
		return nil
	}
	bal, err := n.state.GetBalance(sender)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.InvariantViolation, "native: insufficient balance")
	}
	if err := n.state.SetBalance(sender, bal.Sub(bal, amount)); err != nil {
		return err
	}
	to, err := n.state.GetBalance(recipient)
	if err != nil {
		return err
	}
	if err := n.state.SetBalance(recipient, to.Add(to, amount)); err != nil {
		return err
	}
	env.AddTransfer(thor.Address{}, sender, recipient, amount)
	return nil
}
