package service_test

import (
	"context"
	"sync"
	"testing"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumvault/custodian/common"
	"github.com/quorumvault/custodian/internal/assets"
	"github.com/quorumvault/custodian/internal/directory"
	"github.com/quorumvault/custodian/internal/oracle"
	"github.com/quorumvault/custodian/internal/registry"
	"github.com/quorumvault/custodian/internal/types"
	"github.com/quorumvault/custodian/service"
)

var (
	custodyAdmin     = gcommon.HexToAddress("0x00000000000000000000000000000000000000aa")
	custodySigner1   = gcommon.HexToAddress("0x0000000000000000000000000000000000000011")
	custodySigner2   = gcommon.HexToAddress("0x0000000000000000000000000000000000000022")
	custodySigner3   = gcommon.HexToAddress("0x0000000000000000000000000000000000000033")
	custodyRecipient = gcommon.HexToAddress("0x0000000000000000000000000000000000000055")
)

func newCustodyFixture(t *testing.T) (*service.Custody, string) {
	t.Helper()
	reg := registry.NewAccountRegistry(custodyAdmin)
	require.NoError(t, reg.SetEntry(custodyAdmin, registry.OracleGatewayKey, custodyAdmin))
	gateway := oracle.NewInMemoryGateway(custodyAdmin)
	dir := directory.New(reg, assets.NewBank(), gateway, nil, 10)

	custody, err := service.NewCustody(dir, reg, gateway, custodyAdmin, nil, nil)
	require.NoError(t, err)

	detail, err := custody.CreateWallet(context.Background(), types.WalletCreateRequest{
		Name:             "ops-treasury",
		Signers:          []string{custodySigner1.Hex(), custodySigner2.Hex(), custodySigner3.Hex()},
		MinimumApprovals: 3,
		PasswordHash:     common.PasswordCommitment("hunter2", "pepper").Hex(),
	})
	require.NoError(t, err)
	return custody, detail.Address.Hex()
}

func TestCustodyWalletLookup(t *testing.T) {
	custody, address := newCustodyFixture(t)

	detail, err := custody.WalletDetail(context.Background(), address)
	require.NoError(t, err)
	assert.Equal(t, "ops-treasury", detail.Name)
	assert.Equal(t, custodySigner1, detail.MainSigner)

	_, err = custody.Wallet("not-an-address")
	assert.ErrorIs(t, err, directory.ErrWalletNotFound)
}

// Two signers approving the same transaction at the same time must both
// succeed: requests against one wallet queue at the service layer instead of
// surfacing as reentrancy failures.
func TestConcurrentApprovalsQueue(t *testing.T) {
	ctx := context.Background()
	custody, address := newCustodyFixture(t)

	hash, err := custody.CreateTransaction(ctx, address, types.TransactionCreateRequest{
		SignedRequest: types.SignedRequest{Signer: custodySigner1.Hex()},
		Recipient:     custodyRecipient.Hex(),
		Amount:        "1",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, signer := range []gcommon.Address{custodySigner2, custodySigner3} {
		wg.Add(1)
		go func(i int, signer gcommon.Address) {
			defer wg.Done()
			errs[i] = custody.ApproveTransaction(ctx, address, hash.Hex(), types.SignedRequest{Signer: signer.Hex()})
		}(i, signer)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	ledger, err := custody.Wallet(address)
	require.NoError(t, err)
	view, err := ledger.Transaction(hash)
	require.NoError(t, err)
	assert.Equal(t, 3, view.ApprovalCount)
}
