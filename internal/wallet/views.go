package wallet

import (
	"context"
	"fmt"
	"math/big"

	gcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quorumvault/custodian/common"
	"github.com/quorumvault/custodian/internal/assets"
	"github.com/quorumvault/custodian/internal/pagination"
	"github.com/quorumvault/custodian/internal/types"
	"github.com/quorumvault/custodian/internal/valuation"
)

func (l *Ledger) Name() string             { return l.name }
func (l *Ledger) Address() gcommon.Address { return l.address }
func (l *Ledger) MinimumApprovals() int    { return l.minimumApprovals }

func (l *Ledger) Signers() []gcommon.Address {
	out := make([]gcommon.Address, len(l.signers))
	copy(out, l.signers)
	return out
}

// Detail returns the wallet's serializable summary.
func (l *Ledger) Detail() types.WalletDetail {
	return types.WalletDetail{
		Address:          l.address,
		Name:             l.name,
		Signers:          l.Signers(),
		MainSigner:       l.signers[0],
		MinimumApprovals: l.minimumApprovals,
		CreatedAt:        l.createdAt,
	}
}

// Balance returns the wallet's raw holding of asset.
func (l *Ledger) Balance(ctx context.Context, asset gcommon.Address) (*big.Int, error) {
	return l.backend.BalanceOf(ctx, l.address, asset)
}

// BalanceInUsd returns the USD value of the wallet's holding of asset at the
// current oracle price.
func (l *Ledger) BalanceInUsd(ctx context.Context, asset gcommon.Address) (*big.Int, error) {
	held, err := l.backend.BalanceOf(ctx, l.address, asset)
	if err != nil {
		return nil, err
	}
	return l.usdValueOf(ctx, asset, held)
}

// TotalBalanceInUsd values every held asset at live prices.
func (l *Ledger) TotalBalanceInUsd(ctx context.Context) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalBalanceInUsd(ctx)
}

func (l *Ledger) LockedBalanceInUsd() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.lockedUsd)
}

// UnlockedBalanceInUsd returns the spendable USD capacity: total minus
// locked, floored at zero when the lock exceeds the balance.
func (l *Ledger) UnlockedBalanceInUsd(ctx context.Context) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.unlockedBalanceInUsd(ctx)
}

// Tokens returns a page of tracked asset identifiers, in insertion (or, for
// newestFirst, reverse) order as adjusted by past swap-removes.
func (l *Ledger) Tokens(offset, limit int, newestFirst bool) []gcommon.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if newestFirst {
		return pagination.SliceDesc(l.tokens, offset, limit)
	}
	return pagination.Slice(l.tokens, offset, limit)
}

func (l *Ledger) TokenCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.tokens)
}

// Transaction returns the view of one transaction. The approver list is
// re-derived by scanning the fixed signer set.
func (l *Ledger) Transaction(hash gcommon.Hash) (types.TransactionView, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if hash == (gcommon.Hash{}) {
		return types.TransactionView{}, ErrTransactionNotFound
	}
	tx, ok := l.txs[hash]
	if !ok {
		return types.TransactionView{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash.Hex())
	}
	return l.view(tx), nil
}

// Transactions returns a newest-first page of the transaction history.
func (l *Ledger) Transactions(offset, limit int) []types.TransactionView {
	l.mu.RLock()
	defer l.mu.RUnlock()
	hashes := pagination.SliceDesc(l.txOrder, offset, limit)
	views := make([]types.TransactionView, 0, len(hashes))
	for _, h := range hashes {
		views = append(views, l.view(l.txs[h]))
	}
	return views
}

func (l *Ledger) TransactionCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txOrder)
}

func (l *Ledger) LastTransactionHash() gcommon.Hash {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastTx
}

func (l *Ledger) view(tx *transaction) types.TransactionView {
	approvers := make([]gcommon.Address, 0, tx.approvalCount)
	for _, s := range l.signers {
		if tx.approvals[s] {
			approvers = append(approvers, s)
		}
	}
	return types.TransactionView{
		Hash:          tx.hash,
		Asset:         tx.asset,
		Recipient:     tx.recipient,
		Amount:        tx.amount.String(),
		ApprovalCount: tx.approvalCount,
		Approvers:     approvers,
		CreatedAt:     tx.createdAt,
		ExecutedAt:    tx.executedAt,
		CancelledAt:   tx.cancelledAt,
	}
}

func (l *Ledger) totalBalanceInUsd(ctx context.Context) (*big.Int, error) {
	total := new(big.Int)

	native, err := l.backend.BalanceOf(ctx, l.address, common.NativeAsset)
	if err != nil {
		return nil, fmt.Errorf("fail to read native balance, err: %w", err)
	}
	if native.Sign() > 0 {
		value, err := l.usdValueOf(ctx, common.NativeAsset, native)
		if err != nil {
			return nil, err
		}
		total.Add(total, value)
	}

	for _, asset := range l.tokens {
		if asset == common.NativeAsset {
			continue
		}
		held, err := l.backend.BalanceOf(ctx, l.address, asset)
		if err != nil {
			return nil, fmt.Errorf("fail to read balance of %s, err: %w", asset.Hex(), err)
		}
		if held.Sign() == 0 {
			continue
		}
		value, err := l.usdValueOf(ctx, asset, held)
		if err != nil {
			return nil, err
		}
		total.Add(total, value)
	}
	return total, nil
}

func (l *Ledger) unlockedBalanceInUsd(ctx context.Context) (*big.Int, error) {
	total, err := l.totalBalanceInUsd(ctx)
	if err != nil {
		return nil, err
	}
	unlocked := new(big.Int).Sub(total, l.lockedUsd)
	if unlocked.Sign() < 0 {
		unlocked.SetInt64(0)
	}
	return unlocked, nil
}

func (l *Ledger) usdValueOf(ctx context.Context, asset gcommon.Address, amount *big.Int) (*big.Int, error) {
	var decimals uint8
	if asset == common.NativeAsset {
		decimals = assets.NativeDecimals
	} else {
		var err error
		decimals, err = l.backend.Decimals(ctx, asset)
		if err != nil {
			return nil, fmt.Errorf("fail to read decimals of %s, err: %w", asset.Hex(), err)
		}
	}
	price, priceDecimals, err := l.gateway.Price(ctx, asset)
	if err != nil {
		return nil, err
	}
	return valuation.ValueInUsd(amount, decimals, price, priceDecimals)
}
