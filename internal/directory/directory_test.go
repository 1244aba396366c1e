package directory

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumvault/custodian/common"
	"github.com/quorumvault/custodian/internal/assets"
	"github.com/quorumvault/custodian/internal/oracle"
	"github.com/quorumvault/custodian/internal/registry"
	"github.com/quorumvault/custodian/internal/wallet"
)

var (
	admin   = gcommon.HexToAddress("0x00000000000000000000000000000000000000aa")
	main    = gcommon.HexToAddress("0x0000000000000000000000000000000000000011")
	cosign1 = gcommon.HexToAddress("0x0000000000000000000000000000000000000022")
	cosign2 = gcommon.HexToAddress("0x0000000000000000000000000000000000000033")
)

func newDirectory(t *testing.T, maxOwned int) *Directory {
	t.Helper()
	bank := assets.NewBank()
	gateway := oracle.NewInMemoryGateway(admin)
	require.NoError(t, gateway.Register(admin, common.NativeAsset, big.NewInt(200000000000), 8))

	reg := registry.NewAccountRegistry(admin)
	require.NoError(t, reg.SetEntry(admin, registry.OracleGatewayKey, admin))

	return New(reg, bank, gateway, nil, maxOwned)
}

func create(t *testing.T, d *Directory, name string, signers []gcommon.Address) gcommon.Address {
	t.Helper()
	addr, err := d.CreateWallet(context.Background(), name, signers, 2,
		common.PasswordCommitment("hunter2", "pepper"))
	require.NoError(t, err)
	return addr
}

func TestCreateWallet(t *testing.T) {
	d := newDirectory(t, 10)
	signers := []gcommon.Address{main, cosign1, cosign2}

	addr := create(t, d, "ops", signers)
	assert.NotEqual(t, gcommon.Address{}, addr)

	ledger, err := d.Wallet(addr)
	require.NoError(t, err)
	assert.Equal(t, "ops", ledger.Name())
	assert.Equal(t, signers, ledger.Signers())

	detail := ledger.Detail()
	assert.Equal(t, main, detail.MainSigner)
}

func TestCreateWalletValidation(t *testing.T) {
	d := newDirectory(t, 10)

	_, err := d.CreateWallet(context.Background(), "w", nil, 2, gcommon.Hash{})
	assert.ErrorIs(t, err, wallet.ErrSignerCount)

	_, err = d.CreateWallet(context.Background(), "w",
		[]gcommon.Address{main, main}, 2, gcommon.Hash{})
	assert.ErrorIs(t, err, wallet.ErrDuplicateSigner)
}

func TestWalletNotFound(t *testing.T) {
	d := newDirectory(t, 10)

	_, err := d.Wallet(gcommon.Address{})
	assert.ErrorIs(t, err, ErrWalletNotFound)

	_, err = d.Wallet(gcommon.HexToAddress("0x00000000000000000000000000000000000000cc"))
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestOwnedWalletQuota(t *testing.T) {
	d := newDirectory(t, 3)
	signers := []gcommon.Address{main, cosign1}

	for i := 0; i < 3; i++ {
		create(t, d, fmt.Sprintf("wallet-%d", i), signers)
	}

	_, err := d.CreateWallet(context.Background(), "one-too-many", signers, 2, gcommon.Hash{})
	assert.ErrorIs(t, err, ErrMaxOwnedWallets)

	// the quota binds the main signer only
	addr, err := d.CreateWallet(context.Background(),
		"co-signed", []gcommon.Address{cosign1, main}, 2, gcommon.Hash{})
	require.NoError(t, err)
	assert.NotEqual(t, gcommon.Address{}, addr)
}

func TestSignerIndexes(t *testing.T) {
	d := newDirectory(t, 10)

	w1 := create(t, d, "first", []gcommon.Address{main, cosign1})
	w2 := create(t, d, "second", []gcommon.Address{main, cosign1, cosign2})
	w3 := create(t, d, "third", []gcommon.Address{cosign1, main})

	owned, err := d.Count(main, ScopeOwned)
	require.NoError(t, err)
	assert.Equal(t, 2, owned)

	associated, err := d.Count(main, ScopeAssociated)
	require.NoError(t, err)
	assert.Equal(t, 1, associated)

	all, err := d.Count(main, ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, 3, all)

	list, err := d.Wallets(main, ScopeOwned, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []gcommon.Address{w1, w2}, list, "creation order")

	list, err = d.Wallets(main, ScopeAssociated, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []gcommon.Address{w3}, list)

	list, err = d.Wallets(cosign2, ScopeAll, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []gcommon.Address{w2}, list)

	_, err = d.Wallets(main, Scope("bogus"), 0, 10)
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestWalletsPagination(t *testing.T) {
	d := newDirectory(t, 10)
	signers := []gcommon.Address{main, cosign1}

	var addrs []gcommon.Address
	for i := 0; i < 5; i++ {
		addrs = append(addrs, create(t, d, fmt.Sprintf("w-%d", i), signers))
	}

	page, err := d.Wallets(main, ScopeOwned, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, addrs[1:3], page)

	page, err = d.Wallets(main, ScopeOwned, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestWalletDetailsNewestFirst(t *testing.T) {
	d := newDirectory(t, 10)
	signers := []gcommon.Address{main, cosign1}

	var addrs []gcommon.Address
	for i := 0; i < 3; i++ {
		addrs = append(addrs, create(t, d, fmt.Sprintf("w-%d", i), signers))
	}

	details, err := d.WalletDetails(main, 0, 2)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, addrs[2], details[0].Address)
	assert.Equal(t, addrs[1], details[1].Address)

	details, err = d.WalletDetails(main, 3, 2)
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestCreateWalletRequiresOracleEntry(t *testing.T) {
	bank := assets.NewBank()
	gateway := oracle.NewInMemoryGateway(admin)
	reg := registry.NewAccountRegistry(admin) // no oracle-gateway entry

	d := New(reg, bank, gateway, nil, 10)
	_, err := d.CreateWallet(context.Background(), "w",
		[]gcommon.Address{main, cosign1}, 2, gcommon.Hash{})
	assert.ErrorIs(t, err, registry.ErrEntryNotFound)
}

func TestDistinctWalletAddresses(t *testing.T) {
	d := newDirectory(t, 10)
	signers := []gcommon.Address{main, cosign1}

	a := create(t, d, "same-name", signers)
	b := create(t, d, "same-name", signers)
	assert.NotEqual(t, a, b, "creation nonce keeps addresses distinct")
}
