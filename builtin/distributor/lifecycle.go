// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distributor

import (
	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/xenv"
)

// Kill stops all claims for good and sends the whole reward balance to the
// emergency return. Calling it again forwards whatever arrived since.
func (d *Distributor) Kill(env *xenv.Environment) error {
	if err := d.ownable.RequireAdmin(env, "admin only"); err != nil {
		return err
	}
	d.storage.killed.Set(true)

	to, err := d.storage.emergencyReturn.Get()
	if err != nil {
		return err
	}
	balance, err := d.reward.BalanceOf(d.addr)
	if err != nil {
		return err
	}
	if err := d.reward.Transfer(d.self(env), to, balance); err != nil {
		return err
	}
	logger.Info("distributor killed", "distributor", d.name, "returned", balance)
	return env.Log(d.addr, "Killed", nil, to, balance)
}

// Sweep sends the whole balance of a foreign asset to the admin. The reward
// asset can not be swept.
func (d *Distributor) Sweep(env *xenv.Environment, a asset.Asset) error {
	if err := d.ownable.RequireAdmin(env, "!authorized"); err != nil {
		return err
	}
	if a.Address() == d.reward.Address() {
		return reverts.New(reverts.InvariantViolation, "!rewardToken")
	}
	balance, err := a.BalanceOf(d.addr)
	if err != nil {
		return err
	}
	if err := a.Transfer(d.self(env), env.Caller(), balance); err != nil {
		return err
	}
	return env.Log(d.addr, "Swept", nil, a.Address(), balance)
}
