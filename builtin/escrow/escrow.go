// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package escrow

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/ownable"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

const (
	MaxLockTime      = 2 * 365 * thor.Day
	MaxReplayPeriods = 255
)

// deposit kinds, as emitted in the Deposit event
const (
	DepositForType uint8 = iota
	CreateLockType
	IncreaseLockAmount
	IncreaseUnlockTime
)

var (
	logger = log.WithContext("pkg", "escrow")
	ether  = big.NewInt(1e18)
)

func SetLogger(l log.Logger) {
	logger = l
}

// Escrow implements the voting escrow ledger: owners lock an asset until a
// week boundary and hold voting power decaying to zero at unlock.
type Escrow struct {
	addr    thor.Address
	storage *storage
	ownable *ownable.Ownable
	locked  asset.Asset
}

// New binds the escrow at addr to a state. locked is the asset being locked.
func New(addr thor.Address, state *state.State, locked asset.Asset) *Escrow {
	s := newStorage(addr, state)
	return &Escrow{
		addr:    addr,
		storage: s,
		ownable: ownable.New(s.context),
		locked:  locked,
	}
}

func (e *Escrow) Address() thor.Address {
	return e.addr
}

// Token is the address of the locked asset.
func (e *Escrow) Token() thor.Address {
	return e.locked.Address()
}

// Init writes the sentinel global point and sets the admin.
func (e *Escrow) Init(env *xenv.Environment, admin thor.Address) error {
	n, err := e.storage.pointHistory.Len()
	if err != nil {
		return err
	}
	if n > 0 {
		return reverts.New(reverts.InvariantViolation, "already initialized")
	}
	e.ownable.Init(admin)
	return e.storage.PushPoint(&Point{
		Bias:      new(big.Int),
		Slope:     new(big.Int),
		Timestamp: env.Now(),
		Block:     env.BlockContext().Number,
	})
}

// CreateLock locks amount of the caller until unlockTime rounded down to the week.
func (e *Escrow) CreateLock(env *xenv.Environment, amount *big.Int, unlockTime uint64) error {
	user := env.Caller()
	logger.Debug("creating lock", "user", user, "amount", amount, "unlockTime", unlockTime)

	if err := e.createLock(env, user, amount, unlockTime); err != nil {
		logger.Debug("create lock failed", "user", user, "error", err)
		return err
	}
	metricLockOps().AddWithLabel(1, map[string]string{"op": "create"})
	logger.Debug("created lock", "user", user)
	return nil
}

func (e *Escrow) createLock(env *xenv.Environment, user thor.Address, amount *big.Int, unlockTime uint64) error {
	now := env.Now()
	unlockTime = thor.FloorWeek(unlockTime)

	lock, err := e.storage.GetLocked(user)
	if err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return reverts.New(reverts.InvariantViolation, "need non-zero value")
	}
	if lock.IsActive() {
		return reverts.New(reverts.InvariantViolation, "withdraw old tokens first")
	}
	if unlockTime <= now {
		return reverts.New(reverts.InvariantViolation, "can only lock until time in the future")
	}
	if unlockTime > now+MaxLockTime {
		return reverts.New(reverts.InvariantViolation, "voting lock can be 2 years max")
	}
	return e.depositFor(env, user, amount, unlockTime, lock, CreateLockType)
}

// IncreaseAmount adds extra of the caller to the active lock, keeping its end.
func (e *Escrow) IncreaseAmount(env *xenv.Environment, extra *big.Int) error {
	user := env.Caller()
	logger.Debug("increasing amount", "user", user, "extra", extra)

	if err := e.increase(env, user, extra, IncreaseLockAmount); err != nil {
		logger.Debug("increase amount failed", "user", user, "error", err)
		return err
	}
	metricLockOps().AddWithLabel(1, map[string]string{"op": "increase"})
	return nil
}

// DepositFor adds extra to the lock of owner, paid by the caller. Only the
// owner or an approved depositor may call.
func (e *Escrow) DepositFor(env *xenv.Environment, owner thor.Address, extra *big.Int) error {
	caller := env.Caller()
	logger.Debug("depositing for", "owner", owner, "caller", caller, "extra", extra)

	if caller != owner {
		ok, err := e.IsDepositor(caller)
		if err != nil {
			return err
		}
		if !ok {
			return reverts.New(reverts.Unauthorized, "not allowed to deposit for")
		}
	}
	if err := e.increase(env, owner, extra, DepositForType); err != nil {
		logger.Debug("deposit for failed", "owner", owner, "error", err)
		return err
	}
	metricLockOps().AddWithLabel(1, map[string]string{"op": "deposit_for"})
	return nil
}

func (e *Escrow) increase(env *xenv.Environment, user thor.Address, extra *big.Int, kind uint8) error {
	lock, err := e.storage.GetLocked(user)
	if err != nil {
		return err
	}
	if extra.Sign() <= 0 {
		return reverts.New(reverts.InvariantViolation, "need non-zero value")
	}
	if !lock.IsActive() {
		return reverts.New(reverts.InvariantViolation, "no existing lock found")
	}
	if lock.End <= env.Now() {
		return reverts.New(reverts.InvariantViolation, "cannot add to expired lock. withdraw")
	}
	return e.depositFor(env, user, extra, 0, lock, kind)
}

// ExtendUnlockTime moves the end of the caller's lock to newEnd rounded down to the week.
func (e *Escrow) ExtendUnlockTime(env *xenv.Environment, newEnd uint64) error {
	user := env.Caller()
	logger.Debug("extending unlock time", "user", user, "newEnd", newEnd)

	if err := e.extendUnlockTime(env, user, newEnd); err != nil {
		logger.Debug("extend unlock time failed", "user", user, "error", err)
		return err
	}
	metricLockOps().AddWithLabel(1, map[string]string{"op": "extend"})
	return nil
}

func (e *Escrow) extendUnlockTime(env *xenv.Environment, user thor.Address, newEnd uint64) error {
	now := env.Now()
	newEnd = thor.FloorWeek(newEnd)

	lock, err := e.storage.GetLocked(user)
	if err != nil {
		return err
	}
	if !lock.IsActive() {
		return reverts.New(reverts.InvariantViolation, "nothing is locked")
	}
	if lock.End <= now {
		return reverts.New(reverts.InvariantViolation, "lock expired")
	}
	if newEnd <= lock.End {
		return reverts.New(reverts.InvariantViolation, "can only increase lock duration")
	}
	if newEnd > now+MaxLockTime {
		return reverts.New(reverts.InvariantViolation, "voting lock can be 2 years max")
	}
	return e.depositFor(env, user, new(big.Int), newEnd, lock, IncreaseUnlockTime)
}

// depositFor rebuilds the line of user from its current balance plus value,
// ending at unlockTime, or at the current end when unlockTime is 0.
func (e *Escrow) depositFor(
	env *xenv.Environment,
	user thor.Address,
	value *big.Int,
	unlockTime uint64,
	old *LockedBalance,
	kind uint8,
) error {
	now := env.Now()

	oldLine, err := e.userLineAt(user, old, now)
	if err != nil {
		return err
	}
	end := old.End
	if unlockTime != 0 {
		end = unlockTime
	}
	newLine := NewLine(new(big.Int).Add(oldLine.Bias, value), now, end)

	lock := &LockedBalance{
		Amount: new(big.Int).Add(old.Amount, value),
		End:    end,
	}
	if err := e.storage.SetLocked(user, lock); err != nil {
		return err
	}
	prevSupply, err := e.addSupply(value)
	if err != nil {
		return err
	}
	if err := e.checkpoint(env, user, oldLine, old.End, newLine, end); err != nil {
		return err
	}
	if value.Sign() > 0 {
		if err := e.locked.TransferFrom(env.WithCaller(e.addr), env.Caller(), e.addr, value); err != nil {
			return err
		}
	}
	if err := env.Log(e.addr, "Deposit", []thor.Bytes32{thor.BytesToBytes32(user.Bytes())}, value, end, kind, now); err != nil {
		return err
	}
	return e.logSupply(env, prevSupply)
}

// Withdraw releases the whole lock of the caller once it expired, or any
// time while funds are unlocked.
func (e *Escrow) Withdraw(env *xenv.Environment) error {
	user := env.Caller()
	logger.Debug("withdrawing", "user", user)

	if err := e.withdraw(env, user); err != nil {
		logger.Debug("withdraw failed", "user", user, "error", err)
		return err
	}
	metricLockOps().AddWithLabel(1, map[string]string{"op": "withdraw"})
	logger.Debug("withdrew", "user", user)
	return nil
}

func (e *Escrow) withdraw(env *xenv.Environment, user thor.Address) error {
	now := env.Now()

	lock, err := e.storage.GetLocked(user)
	if err != nil {
		return err
	}
	if !lock.IsActive() {
		return reverts.New(reverts.InvariantViolation, "nothing to withdraw")
	}
	unlocked, err := e.storage.fundsUnlocked.Get()
	if err != nil {
		return err
	}
	if now < lock.End && !unlocked {
		return reverts.Newf(reverts.NotYetUnlocked, "the lock didn't expire, unlocks at %d", lock.End)
	}

	oldLine, err := e.userLineAt(user, lock, now)
	if err != nil {
		return err
	}
	value := lock.Amount
	if err := e.storage.SetLocked(user, &LockedBalance{Amount: new(big.Int)}); err != nil {
		return err
	}
	prevSupply, err := e.subSupply(value)
	if err != nil {
		return err
	}
	if err := e.checkpoint(env, user, oldLine, lock.End, zeroLine(), 0); err != nil {
		return err
	}
	if err := e.locked.Transfer(env.WithCaller(e.addr), user, value); err != nil {
		return err
	}
	if err := env.Log(e.addr, "Withdraw", []thor.Bytes32{thor.BytesToBytes32(user.Bytes())}, value, now); err != nil {
		return err
	}
	return e.logSupply(env, prevSupply)
}

// Checkpoint replays the global line up to now, at most MaxReplayPeriods weeks per call.
func (e *Escrow) Checkpoint(env *xenv.Environment) error {
	return e.checkpoint(env, thor.Address{}, zeroLine(), 0, zeroLine(), 0)
}

// userLineAt returns the line of user re-based at now, zero once the lock expired.
func (e *Escrow) userLineAt(user thor.Address, lock *LockedBalance, now uint64) (Line, error) {
	if !lock.IsActive() || lock.End <= now {
		return zeroLine(), nil
	}
	epoch, err := e.storage.UserEpoch(user)
	if err != nil {
		return Line{}, err
	}
	p, err := e.storage.GetUserPoint(user, epoch)
	if err != nil {
		return Line{}, err
	}
	return Line{Bias: p.ValueAt(now), Slope: new(big.Int).Set(p.Slope)}, nil
}

func (e *Escrow) addSupply(value *big.Int) (*big.Int, error) {
	prev, err := e.storage.supply.Get()
	if err != nil {
		return nil, err
	}
	return prev, e.storage.supply.Add(value)
}

func (e *Escrow) subSupply(value *big.Int) (*big.Int, error) {
	prev, err := e.storage.supply.Get()
	if err != nil {
		return nil, err
	}
	return prev, e.storage.supply.Sub(value)
}

func (e *Escrow) logSupply(env *xenv.Environment, prev *big.Int) error {
	supply, err := e.storage.supply.Get()
	if err != nil {
		return err
	}
	metricLockedSupply().Set(new(big.Int).Quo(supply, ether).Int64())
	return env.Log(e.addr, "Supply", nil, prev, supply)
}
