// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package distributor shares reward assets among lockers, week by week, pro
// rata to their voting power at the start of each week.
package distributor

import (
	"math/big"

	"github.com/vechain/veescrow/builtin/asset"
	"github.com/vechain/veescrow/builtin/escrow"
	"github.com/vechain/veescrow/builtin/ownable"
	"github.com/vechain/veescrow/builtin/reverts"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/metrics"
	"github.com/vechain/veescrow/state"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

const (
	MaxSupplyWeeks          = 20
	MaxClaimIterations      = 50
	MaxClaimMany            = 20
	TokenCheckpointDeadline = thor.Day
)

var (
	logger = log.WithContext("pkg", "distributor")

	metricClaims           = metrics.LazyLoadCounterVec("distributor_claims_count", []string{"distributor"})
	metricClaimIterations  = metrics.LazyLoadHistogram("distributor_claim_iterations", metrics.BucketIterations)
	metricTokenCheckpoints = metrics.LazyLoadCounterVec("distributor_token_checkpoints_count", []string{"distributor"})
	metricSupplyWeeks      = metrics.LazyLoadHistogram("distributor_supply_weeks", metrics.BucketIterations)
)

func SetLogger(l log.Logger) {
	logger = l
}

// Ledger is the voting power the distributor reads from.
type Ledger interface {
	Address() thor.Address
	Checkpoint(env *xenv.Environment) error
	SupplyAtWeek(ts uint64) (*big.Int, error)
	UserPointEpoch(user thor.Address) (uint64, error)
	UserPointHistory(user thor.Address, epoch uint64) (*escrow.Point, error)
	FindUserTimestampEpoch(user thor.Address, ts uint64, max uint64) (uint64, error)
	DepositFor(env *xenv.Environment, owner thor.Address, amount *big.Int) error
}

type approver interface {
	Approve(env *xenv.Environment, spender thor.Address, amount *big.Int) error
}

// Distributor binds a distributor contract at addr to a state. With relock
// set, claims are deposited into the claimer's lock instead of paid out.
type Distributor struct {
	addr    thor.Address
	name    string
	storage *storage
	ownable *ownable.Ownable
	ledger  Ledger
	reward  asset.Asset
	relock  bool
}

func New(name string, addr thor.Address, state *state.State, ledger Ledger, reward asset.Asset, relock bool) *Distributor {
	s := newStorage(addr, state)
	return &Distributor{
		addr:    addr,
		name:    name,
		storage: s,
		ownable: ownable.New(s.context),
		ledger:  ledger,
		reward:  reward,
		relock:  relock,
	}
}

// Init sets the first week to distribute, the admin and where funds go when killed.
func (d *Distributor) Init(env *xenv.Environment, startTime uint64, admin, emergencyReturn thor.Address) error {
	current, err := d.ownable.Admin()
	if err != nil {
		return err
	}
	if !current.IsZero() {
		return reverts.New(reverts.InvariantViolation, "already initialized")
	}
	t := thor.FloorWeek(startTime)
	if err := d.storage.startTime.Set(t); err != nil {
		return err
	}
	if err := d.storage.lastTokenTime.Set(t); err != nil {
		return err
	}
	if err := d.storage.timeCursor.Set(t); err != nil {
		return err
	}
	d.ownable.Init(admin)
	d.storage.emergencyReturn.Set(emergencyReturn)

	if d.relock {
		a, ok := d.reward.(approver)
		if !ok {
			return reverts.New(reverts.InvariantViolation, "reward asset can not be relocked")
		}
		unlimited := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		if err := a.Approve(env.WithCaller(d.addr), d.ledger.Address(), unlimited); err != nil {
			return err
		}
	}
	return nil
}

func (d *Distributor) Address() thor.Address { return d.addr }
func (d *Distributor) Name() string          { return d.name }
func (d *Distributor) Relock() bool          { return d.relock }
func (d *Distributor) Reward() asset.Asset   { return d.reward }

func (d *Distributor) StartTime() (uint64, error) {
	return d.storage.startTime.Get()
}

func (d *Distributor) LastTokenTime() (uint64, error) {
	return d.storage.lastTokenTime.Get()
}

func (d *Distributor) TokenLastBalance() (*big.Int, error) {
	return d.storage.tokenLastBalance.Get()
}

func (d *Distributor) TimeCursor() (uint64, error) {
	return d.storage.timeCursor.Get()
}

func (d *Distributor) TokensPerWeek(week uint64) (*big.Int, error) {
	return d.storage.GetTokensPerWeek(week)
}

func (d *Distributor) VeSupply(week uint64) (*big.Int, error) {
	return d.storage.GetVeSupply(week)
}

// UserCursor returns the next week to credit to user and the user epoch the walk stopped at.
func (d *Distributor) UserCursor(user thor.Address) (uint64, uint64, error) {
	c, err := d.storage.GetCursor(user)
	return c.week, c.epoch, err
}

func (d *Distributor) CanCheckpointToken() (bool, error) {
	return d.storage.canCheckpointToken.Get()
}

func (d *Distributor) IsKilled() (bool, error) {
	return d.storage.killed.Get()
}

func (d *Distributor) EmergencyReturn() (thor.Address, error) {
	return d.storage.emergencyReturn.Get()
}

func (d *Distributor) Admin() (thor.Address, error) {
	return d.ownable.Admin()
}

func (d *Distributor) FutureAdmin() (thor.Address, error) {
	return d.ownable.FutureAdmin()
}

func (d *Distributor) IsAdmin(addr thor.Address) (bool, error) {
	return d.ownable.IsAdmin(addr)
}

func (d *Distributor) CommitTransferOwnership(env *xenv.Environment, addr thor.Address) error {
	return d.ownable.CommitTransferOwnership(env, addr)
}

func (d *Distributor) ApplyTransferOwnership(env *xenv.Environment) error {
	return d.ownable.ApplyTransferOwnership(env)
}

func (d *Distributor) self(env *xenv.Environment) *xenv.Environment {
	return env.WithCaller(d.addr)
}

func (d *Distributor) labels() map[string]string {
	return map[string]string{"distributor": d.name}
}
