// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gauge

import (
	"math/big"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/veescrow/api/types"
	"github.com/vechain/veescrow/builtin"
	"github.com/vechain/veescrow/test/apitest"
	"github.com/vechain/veescrow/test/testchain"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

func ethers(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func initGaugeServer(t *testing.T) (*testchain.Chain, *apitest.Server) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)
	t.Cleanup(tc.Close)

	router := mux.NewRouter()
	New(tc.Runtime()).Mount(router, "/gauge")
	return tc, apitest.NewServer(t, router)
}

func approve(t *testing.T, tc *testchain.Chain, owner thor.Address) {
	_, err := tc.Exec(owner, func(env *xenv.Environment, c *builtin.Contracts) error {
		if err := c.LPToken.Approve(env, c.Gauge.Address(), ethers(1_000_000)); err != nil {
			return err
		}
		return c.Token.Approve(env, c.Gauge.Address(), ethers(1_000_000))
	})
	require.NoError(t, err)
}

func TestGauge(t *testing.T) {
	tc, ts := initGaugeServer(t)
	admin := tc.Admin()
	feeder := tc.Accounts()[1].Address
	alice := tc.Accounts()[2].Address
	tokenAddr := builtin.Token.Address
	approve(t, tc, alice)
	approve(t, tc, feeder)

	var state State
	ts.GetJSON(t, "/gauge", &state)
	assert.Equal(t, builtin.Gauge.Address, state.Address)
	assert.Equal(t, builtin.LPToken.Address, state.LP)
	assert.Equal(t, admin, state.Admin)
	assert.Empty(t, state.Rewards)

	_, status := ts.Post(t, "/gauge/admin/add-reward", alice, &AddRewardRequest{Token: &tokenAddr, Distributor: &feeder})
	assert.Equal(t, http.StatusForbidden, status)
	_, status = ts.Post(t, "/gauge/admin/add-reward", admin, &AddRewardRequest{Token: &tokenAddr})
	assert.Equal(t, http.StatusBadRequest, status)
	ts.PostJSON(t, "/gauge/admin/add-reward", admin, &AddRewardRequest{Token: &tokenAddr, Distributor: &feeder}, nil)

	_, status = ts.Post(t, "/gauge/deposit", thor.Address{}, &DepositRequest{Amount: types.Amount(ethers(100))})
	assert.Equal(t, http.StatusUnauthorized, status)

	var receipt types.Receipt
	ts.PostJSON(t, "/gauge/deposit", alice, &DepositRequest{Amount: types.Amount(ethers(100))}, &receipt)
	require.Len(t, receipt.Transfers, 2)
	assert.Equal(t, builtin.LPToken.Address, receipt.Transfers[0].Asset)
	assert.Equal(t, builtin.Gauge.Address, receipt.Transfers[0].Recipient)
	assert.Equal(t, builtin.Gauge.Address, receipt.Transfers[1].Asset)
	assert.Equal(t, alice, receipt.Transfers[1].Recipient)

	_, status = ts.Post(t, "/gauge/deposit-reward", alice, &DepositRewardRequest{Token: &tokenAddr, Amount: types.Amount(ethers(7))})
	assert.Equal(t, http.StatusForbidden, status)
	ts.PostJSON(t, "/gauge/deposit-reward", feeder, &DepositRewardRequest{Token: &tokenAddr, Amount: types.Amount(ethers(7))}, nil)

	ts.GetJSON(t, "/gauge", &state)
	assert.Equal(t, ethers(100), types.BigInt(state.TotalSupply))
	require.Len(t, state.Rewards, 1)
	assert.Equal(t, feeder, state.Rewards[0].Distributor)
	rate := types.BigInt(state.Rewards[0].Rate)
	assert.Equal(t, new(big.Int).Quo(ethers(7), new(big.Int).SetUint64(thor.Week)), rate)

	require.NoError(t, tc.Advance(thor.Week+thor.BlockInterval))

	want := new(big.Int).Mul(rate, new(big.Int).SetUint64(thor.Week))
	var user User
	ts.GetJSON(t, "/gauge/"+alice.String(), &user)
	assert.Equal(t, ethers(100), types.BigInt(user.Balance))
	assert.Equal(t, ethers(40), types.BigInt(user.WorkingBalance))
	require.Len(t, user.Rewards, 1)
	assert.Equal(t, want, types.BigInt(user.Rewards[0].Claimable))

	ts.PostJSON(t, "/gauge/claim", alice, nil, &receipt)
	require.Len(t, receipt.Transfers, 1)
	assert.Equal(t, builtin.Gauge.Address, receipt.Transfers[0].Sender)
	assert.Equal(t, alice, receipt.Transfers[0].Recipient)
	assert.Equal(t, want, types.BigInt(receipt.Transfers[0].Amount))

	ts.GetJSON(t, "/gauge/"+alice.String(), &user)
	assert.Equal(t, 0, types.BigInt(user.Rewards[0].Claimable).Sign())
	assert.Equal(t, want, types.BigInt(user.Rewards[0].Claimed))

	ts.PostJSON(t, "/gauge/withdraw", alice, &WithdrawRequest{Amount: types.Amount(ethers(100))}, &receipt)
	require.Len(t, receipt.Transfers, 2)
	assert.Equal(t, alice, receipt.Transfers[0].Recipient)
	assert.Equal(t, ethers(100), types.BigInt(receipt.Transfers[0].Amount))
}

func TestUserCheckpointAndKick(t *testing.T) {
	tc, ts := initGaugeServer(t)
	alice := tc.Accounts()[2].Address
	bob := tc.Accounts()[3].Address
	approve(t, tc, alice)
	ts.PostJSON(t, "/gauge/deposit", alice, &DepositRequest{Amount: types.Amount(ethers(10))}, nil)

	body, status := ts.Post(t, "/gauge/"+alice.String()+"/checkpoint", bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "unauthorized\n", string(body))
	ts.PostJSON(t, "/gauge/"+alice.String()+"/checkpoint", alice, nil, nil)

	body, status = ts.Post(t, "/gauge/"+alice.String()+"/kick", bob, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "kick not needed\n", string(body))

	_, status = ts.Post(t, "/gauge/0xbad/kick", bob, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestClaimRedirect(t *testing.T) {
	tc, ts := initGaugeServer(t)
	alice := tc.Accounts()[2].Address
	bob := tc.Accounts()[3].Address

	_, status := ts.Post(t, "/gauge/claim", bob, &ClaimRequest{User: &alice, Receiver: &bob})
	assert.Equal(t, http.StatusForbidden, status)

	ts.PostJSON(t, "/gauge/rewards-receiver", alice, &ReceiverRequest{Receiver: &bob}, nil)
	var user User
	ts.GetJSON(t, "/gauge/"+alice.String(), &user)
	assert.Equal(t, bob, user.RewardsReceiver)

	ts.PostJSON(t, "/gauge/claim", bob, &ClaimRequest{User: &alice}, nil)
}
