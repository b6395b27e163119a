// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func (e *Escrow) Admin() (thor.Address, error) {
	return e.ownable.Admin()
}

func (e *Escrow) FutureAdmin() (thor.Address, error) {
	return e.ownable.FutureAdmin()
}

func (e *Escrow) IsAdmin(addr thor.Address) (bool, error) {
	return e.ownable.IsAdmin(addr)
}

func (e *Escrow) CommitTransferOwnership(env *xenv.Environment, addr thor.Address) error {
	return e.ownable.CommitTransferOwnership(env, addr)
}

func (e *Escrow) ApplyTransferOwnership(env *xenv.Environment) error {
	return e.ownable.ApplyTransferOwnership(env)
}

func (e *Escrow) FundsUnlocked() (bool, error) {
	return e.storage.fundsUnlocked.Get()
}

// SetFundsUnlocked lets every lock be withdrawn before its end.
func (e *Escrow) SetFundsUnlocked(env *xenv.Environment, unlocked bool) error {
	if err := e.ownable.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	e.storage.fundsUnlocked.Set(unlocked)
	logger.Info("funds unlocked set", "unlocked", unlocked)
	return env.Log(e.addr, "FundsUnlocked", nil, unlocked)
}

func (e *Escrow) RewardPool() (thor.Address, error) {
	return e.storage.rewardPool.Get()
}

// SetRewardPool records the streaming reward pool and lets it deposit for owners.
func (e *Escrow) SetRewardPool(env *xenv.Environment, pool thor.Address) error {
	if err := e.ownable.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	e.storage.rewardPool.Set(pool)
	return e.SetDepositor(env, pool, true)
}

func (e *Escrow) IsDepositor(addr thor.Address) (bool, error) {
	return e.storage.depositors.Get(addr)
}

// SetDepositor grants or revokes depositing into the locks of others.
func (e *Escrow) SetDepositor(env *xenv.Environment, addr thor.Address, allowed bool) error {
	if err := e.ownable.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	if allowed {
		if err := e.storage.depositors.Set(addr, true); err != nil {
			return err
		}
	} else {
		e.storage.depositors.Delete(addr)
	}
	return env.Log(e.addr, "Depositor", []thor.Bytes32{thor.BytesToBytes32(addr.Bytes())}, allowed)
}
