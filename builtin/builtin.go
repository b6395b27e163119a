// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/distributor"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/builtin/gauge"
	"github.com/vechain/veescrow/builtin/rewards"
	"github.com/vechain/veescrow/builtin/token"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
)

// Names of the distributors.
const (
	FeeName     = "fee"
	PenaltyName = "penalty"
)

// Builtin contracts binding.
var (
	Token              = &tokenContract{newContract("Token")}
	Escrow             = &escrowContract{newContract("Escrow")}
	FeeDistributor     = &distributorContract{newContract("FeeDistributor"), FeeName, false}
	PenaltyDistributor = &distributorContract{newContract("PenaltyDistributor"), PenaltyName, true}
	Rewards            = &rewardsContract{newContract("Rewards")}
	LPToken            = &tokenContract{newContract("LPToken")}
	Gauge              = &gaugeContract{newContract("Gauge")}
)

type contract struct {
	name    string
	Address thor.Address
}

func newContract(name string) *contract {
	return &contract{name, thor.BytesToAddress([]byte(name))}
}

func (c *contract) Name() string { return c.name }

type (
	tokenContract       struct{ *contract }
	escrowContract      struct{ *contract }
	rewardsContract     struct{ *contract }
	gaugeContract       struct{ *contract }
	distributorContract struct {
		*contract
		label  string
		relock bool
	}
)

func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state)
}

func (e *escrowContract) WithState(state *state.State) *escrow.Escrow {
	return escrow.New(e.Address, state, Token.WithState(state))
}

// WithState binds the distributor. The fee distributor pays in the native
// asset, the penalty distributor in the locked token, relocked into the escrow.
func (d *distributorContract) WithState(state *state.State) *distributor.Distributor {
	var reward asset.Asset = asset.NewNative(state)
	if d.relock {
		reward = Token.WithState(state)
	}
	return distributor.New(d.label, d.Address, state, Escrow.WithState(state), reward, d.relock)
}

func (r *rewardsContract) WithState(state *state.State) *rewards.Pool {
	return rewards.New(r.Address, state, Escrow.WithState(state), Token.WithState(state))
}

// WithState binds the gauge staking LPToken. Its rewards are the native
// asset and the tokens.
func (g *gaugeContract) WithState(state *state.State) *gauge.Gauge {
	lp := LPToken.WithState(state)
	return gauge.New(g.Address, state, lp, Escrow.WithState(state), func(addr thor.Address) (asset.Asset, bool) {
		switch addr {
		case thor.Address{}:
			return asset.NewNative(state), true
		case Token.Address:
			return Token.WithState(state), true
		case LPToken.Address:
			return lp, true
		}
		return nil, false
	})
}

// Contracts are all builtin contracts bound to one state.
type Contracts struct {
	Native  *asset.Native
	Token   *token.Token
	Escrow  *escrow.Escrow
	Fee     *distributor.Distributor
	Penalty *distributor.Distributor
	Rewards *rewards.Pool
	LPToken *token.Token
	Gauge   *gauge.Gauge
}

// Bind binds every builtin contract to state.
func Bind(state *state.State) *Contracts {
	return &Contracts{
		Native:  asset.NewNative(state),
		Token:   Token.WithState(state),
		Escrow:  Escrow.WithState(state),
		Fee:     FeeDistributor.WithState(state),
		Penalty: PenaltyDistributor.WithState(state),
		Rewards: Rewards.WithState(state),
		LPToken: LPToken.WithState(state),
		Gauge:   Gauge.WithState(state),
	}
}

// Distributor finds a distributor by name.
func (c *Contracts) Distributor(name string) (*distributor.Distributor, bool) {
	switch name {
	case FeeName:
		return c.Fee, true
	case PenaltyName:
		return c.Penalty, true
	}
	return nil, false
}

// Asset finds the asset at addr, the zero address being the native one.
func (c *Contracts) Asset(addr thor.Address) (asset.Asset, bool) {
	switch addr {
	case thor.Address{}:
		return c.Native, true
	case c.Token.Address():
		return c.Token, true
	case c.LPToken.Address():
		return c.LPToken, true
	case c.Gauge.Address():
		return c.Gauge, true
	}
	return nil, false
}
