// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a fungible token with balances, allowances and a minter.
package token

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/builtin/solidity"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var (
	slotTotalSupply = nameToSlot("total-supply")
	slotBalances    = nameToSlot("balances")
	slotAllowances  = nameToSlot("allowances")
	slotMinter      = nameToSlot("minter")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

func allowanceKey(owner, spender thor.Address) thor.Bytes32 {
	return thor.Blake2b(owner.Bytes(), spender.Bytes())
}

func addressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

// Token binds the token contract at addr to a state.
type Token struct {
	addr        thor.Address
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[thor.Bytes32, *big.Int]
	minter      *solidity.Address
}

func New(addr thor.Address, state *state.State) *Token {
	sctx := solidity.NewContext(addr, state)
	return &Token{
		addr:        addr,
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		balances:    solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[thor.Bytes32, *big.Int](sctx, slotAllowances),
		minter:      solidity.NewAddress(sctx, slotMinter),
	}
}

func (t *Token) Address() thor.Address {
	return t.addr
}

// Init sets the account allowed to mint.
func (t *Token) Init(minter thor.Address) {
	t.minter.Set(minter)
}

func (t *Token) Minter() (thor.Address, error) {
	return t.minter.Get()
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(owner thor.Address) (*big.Int, error) {
	return t.balances.Get(owner)
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey(owner, spender))
}

// Mint creates amount for recipient. Only the minter may call.
func (t *Token) Mint(env *xenv.Environment, recipient thor.Address, amount *big.Int) error {
	minter, err := t.minter.Get()
	if err != nil {
		return err
	}
	if minter.IsZero() || env.Caller() != minter {
		return reverts.New(reverts.Unauthorized, "token: minter only")
	}
	if amount.Sign() <= 0 {
		return reverts.New(reverts.InvariantViolation, "token: non-positive amount")
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	bal, err := t.balances.Get(recipient)
	if err != nil {
		return err
	}
	if err := t.balances.Set(recipient, bal.Add(bal, amount)); err != nil {
		return err
	}
	env.AddTransfer(t.addr, thor.Address{}, recipient, amount)
	return env.Log(t.addr, "Transfer", []thor.Bytes32{addressTopic(thor.Address{}), addressTopic(recipient)}, amount)
}

func (t *Token) Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "token: negative amount")
	}
	owner := env.Caller()
	if err := t.allowances.Set(allowanceKey(owner, spender), new(big.Int).Set(amount)); err != nil {
		return err
	}
	return env.Log(t.addr, "Approval", []thor.Bytes32{addressTopic(owner), addressTopic(spender)}, amount)
}

func (t *Token) Transfer(env *xenv.Environment, recipient thor.Address, amount *big.Int) error {
	return t.move(env, env.Caller(), recipient, amount)
}

// TransferFrom spends the allowance owner granted to the caller.
func (t *Token) TransferFrom(env *xenv.Environment, owner, recipient thor.Address, amount *big.Int) error {
	spender := env.Caller()
	if spender != owner {
		key := allowanceKey(owner, spender)
		allowed, err := t.allowances.Get(key)
		if err != nil {
			return err
		}
		if allowed.Cmp(amount) < 0 {
			return reverts.New(reverts.InvariantViolation, "token: insufficient allowance")
		}
		if err := t.allowances.Set(key, allowed.Sub(allowed, amount)); err != nil {
			return err
		}
	}
	return t.move(env, owner, recipient, amount)
}

func (t *Token) move(env *xenv.Environment, sender, recipient thor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.New(reverts.InvariantViolation, "token: negative amount")
	}
	if amount.Sign() == 0 {
		return nil
	}
	from, err := t.balances.Get(sender)
	if err != nil {
		return err
	}
	if from.Cmp(amount) < 0 {
		return reverts.New(reverts.InvariantViolation, "token: insufficient balance")
	}
	if err := t.balances.Set(sender, from.Sub(from, amount)); err != nil {
		return err
	}
	to, err := t.balances.Get(recipient)
	if err != nil {
		return err
	}
	if err := t.balances.Set(recipient, to.Add(to, amount)); err != nil {
		return err
	}
	env.AddTransfer(t.addr, sender, recipient, amount)
	return env.Log(t.addr, "Transfer", []thor.Bytes32{addressTopic(sender), addressTopic(recipient)}, amount)
}
