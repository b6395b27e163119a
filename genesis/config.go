// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/veescrow/thor"
)

// Config is the user customized genesis, read from YAML.
type Config struct {
	LaunchTime      uint64    `yaml:"launchTime"`
	Admin           Address   `yaml:"admin"`
	EmergencyReturn Address   `yaml:"emergencyReturn"`
	Distributors    StartTime `yaml:"distributors"`
	FundsUnlocked   bool      `yaml:"fundsUnlocked"`
	Accounts        []Account `yaml:"accounts"`
}

// StartTime of each distributor, the launch week when zero.
type StartTime struct {
	Fee     uint64 `yaml:"fee"`
	Penalty uint64 `yaml:"penalty"`
}

// Account is a pre-funded account. Balance is in the native asset, Tokens in
// the lockable token and LPTokens in the token staked into the gauge.
type Account struct {
	Address  Address `yaml:"address"`
	Balance  *Amount `yaml:"balance"`
	Tokens   *Amount `yaml:"tokens"`
	LPTokens *Amount `yaml:"lpTokens"`
}

// Address decodes a hex address.
type Address thor.Address

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	addr, err := thor.ParseAddress(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*a = Address(addr)
	return nil
}

func (a Address) MarshalYAML() (any, error) {
	return thor.Address(a).String(), nil
}

// Amount decodes a decimal or 0x prefixed hex integer.
type Amount big.Int

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, ok := math.ParseBig256(node.Value)
	if !ok {
		return errors.Errorf("line %d: invalid amount %q", node.Line, node.Value)
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	return (*big.Int)(a).String(), nil
}

func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// LoadConfig reads a genesis config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks what the builtin contracts would otherwise reject at build time.
func (c *Config) Validate() error {
	if c.LaunchTime == 0 {
		return errors.New("launchTime must be set")
	}
	if thor.Address(c.Admin).IsZero() {
		return errors.New("admin must be set")
	}
	if thor.Address(c.EmergencyReturn).IsZero() {
		return errors.New("emergencyReturn must be set")
	}
	seen := make(map[Address]bool)
	for _, acc := range c.Accounts {
		if seen[acc.Address] {
			return errors.Errorf("%v: duplicated account", thor.Address(acc.Address))
		}
		seen[acc.Address] = true
		if acc.Balance.Int().Sign() < 0 || acc.Tokens.Int().Sign() < 0 || acc.LPTokens.Int().Sign() < 0 {
			return errors.Errorf("%v: negative amount", thor.Address(acc.Address))
		}
	}
	return nil
}
