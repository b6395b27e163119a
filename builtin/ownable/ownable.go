// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ownable

import (
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/builtin/solidity"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

var (
	slotAdmin       = nameToSlot("admin")
	slotFutureAdmin = nameToSlot("future-admin")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Ownable is the two-step admin transfer shared by the builtin contracts.
type Ownable struct {
	contract    thor.Address
	admin       *solidity.Address
	futureAdmin *solidity.Address
}

func New(sctx *solidity.Context) *Ownable {
	return &Ownable{
		contract:    sctx.Address(),
		admin:       solidity.NewAddress(sctx, slotAdmin),
		futureAdmin: solidity.NewAddress(sctx, slotFutureAdmin),
	}
}

// Init sets the first admin.
func (o *Ownable) Init(admin thor.Address) {
	o.admin.Set(admin)
}

func (o *Ownable) Admin() (thor.Address, error) {
	return o.admin.Get()
}

func (o *Ownable) FutureAdmin() (thor.Address, error) {
	return o.futureAdmin.Get()
}

func (o *Ownable) IsAdmin(addr thor.Address) (bool, error) {
	admin, err := o.admin.Get()
	if err != nil {
		return false, err
	}
	return !admin.IsZero() && admin == addr, nil
}

// RequireAdmin rejects the call unless the caller is the admin.
func (o *Ownable) RequireAdmin(env *xenv.Environment, message string) error {
	ok, err := o.IsAdmin(env.Caller())
	if err != nil {
		return err
	}
	if !ok {
		return reverts.New(reverts.Unauthorized, message)
	}
	return nil
}

// CommitTransferOwnership stages addr as the next admin.
func (o *Ownable) CommitTransferOwnership(env *xenv.Environment, addr thor.Address) error {
	if err := o.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	o.futureAdmin.Set(addr)
	return env.Log(o.contract, "CommitOwnership", nil, addr)
}

// ApplyTransferOwnership makes the staged admin effective.
func (o *Ownable) ApplyTransferOwnership(env *xenv.Environment) error {
	if err := o.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	future, err := o.futureAdmin.Get()
	if err != nil {
		return err
	}
	if future.IsZero() {
		return reverts.New(reverts.InvariantViolation, "admin not set")
	}
	o.admin.Set(future)
	return env.Log(o.contract, "ApplyOwnership", nil, future)
}
