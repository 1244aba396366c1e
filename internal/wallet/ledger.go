// Package wallet implements the multisig custody wallet: per-asset holdings,
// USD lock accounting, and the transaction approval state machine.
package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
	gmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/sirupsen/logrus"

	"github.com/quorumvault/custodian/common"
	"github.com/quorumvault/custodian/internal/assets"
	"github.com/quorumvault/custodian/internal/events"
	"github.com/quorumvault/custodian/internal/oracle"
	"github.com/quorumvault/custodian/internal/types"
)

const (
	MinSigners = 2
	MaxSigners = 10
)

// MaxAmount is the sentinel that means "everything" in lock and unlock calls.
var MaxAmount = gmath.MaxBig256

// Params fixes a wallet's immutable configuration.
type Params struct {
	Name             string
	Address          gcommon.Address
	Signers          []gcommon.Address
	MinimumApprovals int
	PasswordHash     gcommon.Hash
}

// Ledger is one custody wallet. Mutating entry points hold a fail-fast
// reentrancy guard for the duration of the call, including any nested backend
// or oracle calls; a nested guarded call fails instead of blocking. State is
// additionally protected by a read-write lock so views stay consistent when
// called concurrently with a mutation. Concurrent mutators from separate
// requests are expected to be serialized by the caller (the custody service
// queues them per wallet).
type Ledger struct {
	guard sync.Mutex
	mu    sync.RWMutex

	name             string
	address          gcommon.Address
	signers          []gcommon.Address
	isSigner         map[gcommon.Address]bool
	minimumApprovals int
	passwordHash     gcommon.Hash
	createdAt        time.Time

	// dense token list plus key-to-index map for O(1) swap-remove
	tokens     []gcommon.Address
	tokenIndex map[gcommon.Address]int

	lockedUsd *big.Int

	txs     map[gcommon.Hash]*transaction
	txOrder []gcommon.Hash
	lastTx  gcommon.Hash

	backend   assets.Backend
	gateway   oracle.Gateway
	publisher events.Publisher
	logger    *logrus.Entry
	now       func() time.Time
}

// New validates params and builds a wallet bound to its collaborators.
func New(params Params, backend assets.Backend, gateway oracle.Gateway, publisher events.Publisher) (*Ledger, error) {
	if len(params.Signers) < MinSigners || len(params.Signers) > MaxSigners {
		return nil, fmt.Errorf("%w: got %d", ErrSignerCount, len(params.Signers))
	}
	isSigner := make(map[gcommon.Address]bool, len(params.Signers))
	for _, s := range params.Signers {
		if s == (gcommon.Address{}) {
			return nil, ErrZeroSigner
		}
		if isSigner[s] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, s.Hex())
		}
		isSigner[s] = true
	}
	if params.MinimumApprovals < MinSigners || params.MinimumApprovals > len(params.Signers) {
		return nil, fmt.Errorf("%w: got %d with %d signers", ErrApprovalThreshold, params.MinimumApprovals, len(params.Signers))
	}
	if publisher == nil {
		publisher = events.Discard{}
	}
	signers := make([]gcommon.Address, len(params.Signers))
	copy(signers, params.Signers)
	return &Ledger{
		name:             params.Name,
		address:          params.Address,
		signers:          signers,
		isSigner:         isSigner,
		minimumApprovals: params.MinimumApprovals,
		passwordHash:     params.PasswordHash,
		createdAt:        time.Now().UTC(),
		tokenIndex:       make(map[gcommon.Address]int),
		lockedUsd:        new(big.Int),
		txs:              make(map[gcommon.Hash]*transaction),
		backend:          backend,
		gateway:          gateway,
		publisher:        publisher,
		logger:           logrus.WithField("module", "wallet"),
		now:              func() time.Time { return time.Now().UTC() },
	}, nil
}

// enter acquires the reentrancy guard and then the state lock. A nested call
// into any guarded entry point while the guard is held fails fast instead of
// blocking; the guard is checked first so a reentrant call never deadlocks on
// the state lock it already holds.
func (l *Ledger) enter() (func(), error) {
	if !l.guard.TryLock() {
		return nil, ErrReentrantCall
	}
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		l.guard.Unlock()
	}, nil
}

func (l *Ledger) requireSigner(actor gcommon.Address) error {
	if !l.isSigner[actor] {
		return fmt.Errorf("%w: %s", ErrNotSigner, actor.Hex())
	}
	return nil
}

// Deposit credits the wallet with amount of asset. Native deposits must
// attach a value equal to amount and must not mix in a token pull; token
// deposits pull the amount from the depositor and must attach no value.
func (l *Ledger) Deposit(ctx context.Context, from, asset gcommon.Address, amount, value *big.Int) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if asset == common.NativeAsset {
		if value == nil || value.Cmp(amount) != 0 {
			return ErrValueMismatch
		}
		if err := l.backend.Transfer(ctx, from, l.address, common.NativeAsset, amount); err != nil {
			return fmt.Errorf("fail to receive native deposit, err: %w", err)
		}
	} else {
		if value != nil && value.Sign() != 0 {
			return ErrValueMismatch
		}
		if err := l.backend.TransferFrom(ctx, from, l.address, asset, amount); err != nil {
			return fmt.Errorf("fail to pull token deposit, err: %w", err)
		}
	}
	l.registerAsset(asset)

	e := types.NewEvent(types.EventDeposit, l.address, from)
	e.Asset = asset
	e.Amount = amount.String()
	l.emit(ctx, e)
	return nil
}

// LockBalanceInUsd reserves a USD amount. MaxAmount locks the entire current
// total balance, computed fresh; any other amount is added to the running
// locked total without a ceiling check.
func (l *Ledger) LockBalanceInUsd(ctx context.Context, signer gcommon.Address, amount *big.Int) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	var delta *big.Int
	if amount.Cmp(MaxAmount) == 0 {
		total, err := l.totalBalanceInUsd(ctx)
		if err != nil {
			return err
		}
		delta = new(big.Int).Sub(total, l.lockedUsd)
		l.lockedUsd.Set(total)
	} else {
		delta = new(big.Int).Set(amount)
		l.lockedUsd.Add(l.lockedUsd, amount)
	}

	e := types.NewEvent(types.EventBalanceLocked, l.address, signer)
	e.Amount = delta.String()
	l.emit(ctx, e)
	return nil
}

// UnlockBalanceInUsd releases locked balance after checking the password
// commitment. MaxAmount, or any amount at or above the locked total, clears
// the lock entirely.
func (l *Ledger) UnlockBalanceInUsd(ctx context.Context, signer gcommon.Address, amount *big.Int, password, salt string) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if common.PasswordCommitment(password, salt) != l.passwordHash {
		return ErrInvalidPassword
	}

	var delta *big.Int
	if amount.Cmp(MaxAmount) == 0 || amount.Cmp(l.lockedUsd) >= 0 {
		delta = new(big.Int).Set(l.lockedUsd)
		l.lockedUsd.SetInt64(0)
	} else {
		delta = new(big.Int).Set(amount)
		l.lockedUsd.Sub(l.lockedUsd, amount)
	}

	e := types.NewEvent(types.EventBalanceUnlocked, l.address, signer)
	e.Amount = delta.String()
	l.emit(ctx, e)
	return nil
}

// AddToken starts tracking a token. The registered price feed is the
// authority on supported assets; the metadata probe is a secondary sanity
// check only.
func (l *Ledger) AddToken(ctx context.Context, signer, asset gcommon.Address) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	if _, exists := l.tokenIndex[asset]; exists {
		return fmt.Errorf("%w: %s", ErrTokenAlreadyAdded, asset.Hex())
	}
	if !l.gateway.Registered(ctx, asset) {
		return fmt.Errorf("%w: %s", ErrAssetNotSupported, asset.Hex())
	}
	name, err := l.backend.Name(ctx, asset)
	if err != nil {
		return fmt.Errorf("fail to probe asset metadata, err: %w", err)
	}
	if name == "" {
		return fmt.Errorf("%w: %s", ErrAssetMetadataMissing, asset.Hex())
	}
	l.registerAsset(asset)

	e := types.NewEvent(types.EventTokenAdded, l.address, signer)
	e.Asset = asset
	l.emit(ctx, e)
	return nil
}

// RemoveToken stops tracking a token. Swap-remove keeps the list dense but
// does not preserve the insertion order of the remaining tokens.
func (l *Ledger) RemoveToken(ctx context.Context, signer, asset gcommon.Address) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	idx, exists := l.tokenIndex[asset]
	if !exists {
		return fmt.Errorf("%w: %s", ErrTokenNotFound, asset.Hex())
	}
	last := len(l.tokens) - 1
	moved := l.tokens[last]
	l.tokens[idx] = moved
	l.tokenIndex[moved] = idx
	l.tokens = l.tokens[:last]
	delete(l.tokenIndex, asset)

	e := types.NewEvent(types.EventTokenRemoved, l.address, signer)
	e.Asset = asset
	l.emit(ctx, e)
	return nil
}

// CreateTransaction proposes a transfer and auto-approves it for the
// creator. The returned hash is the transaction's identity; proposing a
// second transaction with an identical hash is rejected.
func (l *Ledger) CreateTransaction(ctx context.Context, signer, asset, recipient gcommon.Address, amount *big.Int) (gcommon.Hash, error) {
	release, err := l.enter()
	if err != nil {
		return gcommon.Hash{}, err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return gcommon.Hash{}, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return gcommon.Hash{}, ErrZeroAmount
	}

	createdAt := l.now()
	hashAmount := amount
	if asset == common.NativeAsset {
		hashAmount = new(big.Int)
	}
	hash := common.TransactionHash(asset, recipient, hashAmount, createdAt)
	if _, exists := l.txs[hash]; exists {
		return gcommon.Hash{}, ErrTransactionExists
	}

	tx := &transaction{
		hash:          hash,
		asset:         asset,
		recipient:     recipient,
		amount:        new(big.Int).Set(amount),
		approvalCount: 1,
		approvals:     map[gcommon.Address]bool{signer: true},
		createdAt:     createdAt,
	}
	l.txs[hash] = tx
	l.txOrder = append(l.txOrder, hash)
	l.lastTx = hash

	e := types.NewEvent(types.EventTransactionCreated, l.address, signer)
	e.Asset = asset
	e.Recipient = recipient
	e.Amount = amount.String()
	e.TxHash = hash
	l.emit(ctx, e)
	return hash, nil
}

// ApproveTransaction records a signer's approval.
func (l *Ledger) ApproveTransaction(ctx context.Context, signer gcommon.Address, hash gcommon.Hash) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	tx, err := l.pending(hash)
	if err != nil {
		return err
	}
	if tx.approvals[signer] {
		return ErrAlreadyApproved
	}
	tx.approvals[signer] = true
	tx.approvalCount++

	e := types.NewEvent(types.EventTransactionApproved, l.address, signer)
	e.TxHash = hash
	l.emit(ctx, e)
	return nil
}

// RevokeTransaction withdraws a signer's prior approval. Revoking a
// transaction the signer never approved is the error condition.
func (l *Ledger) RevokeTransaction(ctx context.Context, signer gcommon.Address, hash gcommon.Hash) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	tx, err := l.pending(hash)
	if err != nil {
		return err
	}
	if !tx.approvals[signer] {
		return ErrNotApproved
	}
	delete(tx.approvals, signer)
	tx.approvalCount--

	e := types.NewEvent(types.EventTransactionRevoked, l.address, signer)
	e.TxHash = hash
	l.emit(ctx, e)
	return nil
}

// CancelTransaction marks a transaction cancelled. No approval count is
// required; cancelling twice is a hard error.
func (l *Ledger) CancelTransaction(ctx context.Context, signer gcommon.Address, hash gcommon.Hash) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	tx, err := l.pending(hash)
	if err != nil {
		return err
	}
	tx.cancelledAt = l.now()

	e := types.NewEvent(types.EventTransactionCancelled, l.address, signer)
	e.TxHash = hash
	l.emit(ctx, e)
	return nil
}

// ExecuteTransaction settles an approved transaction. State is marked
// executed before any external call; a failed transfer rolls the marker back
// so the whole operation is all-or-nothing. Balance and valuation are
// computed fresh here, never cached from creation time.
func (l *Ledger) ExecuteTransaction(ctx context.Context, signer gcommon.Address, hash gcommon.Hash) error {
	release, err := l.enter()
	if err != nil {
		return err
	}
	defer release()

	if err := l.requireSigner(signer); err != nil {
		return err
	}
	tx, err := l.pending(hash)
	if err != nil {
		return err
	}
	if tx.approvalCount < l.minimumApprovals {
		return fmt.Errorf("%w: have %d, need %d", ErrLacksApprovals, tx.approvalCount, l.minimumApprovals)
	}

	tx.executedAt = l.now()
	if err := l.settle(ctx, tx); err != nil {
		tx.executedAt = time.Time{}
		return err
	}

	e := types.NewEvent(types.EventTransactionExecuted, l.address, signer)
	e.Asset = tx.asset
	e.Recipient = tx.recipient
	e.Amount = tx.amount.String()
	e.TxHash = hash
	l.emit(ctx, e)
	return nil
}

// settle performs execute's external checks and the transfer itself.
func (l *Ledger) settle(ctx context.Context, tx *transaction) error {
	held, err := l.backend.BalanceOf(ctx, l.address, tx.asset)
	if err != nil {
		return fmt.Errorf("fail to read wallet balance, err: %w", err)
	}
	if held.Cmp(tx.amount) < 0 {
		return fmt.Errorf("%w: hold %s, need %s", ErrInsufficientBalance, held, tx.amount)
	}

	unlocked, err := l.unlockedBalanceInUsd(ctx)
	if err != nil {
		return err
	}
	txUsd, err := l.usdValueOf(ctx, tx.asset, tx.amount)
	if err != nil {
		return err
	}
	if txUsd.Cmp(unlocked) > 0 {
		return fmt.Errorf("%w: unlocked %s, need %s", ErrInsufficientUnlockedBalance, unlocked, txUsd)
	}

	if err := l.backend.Transfer(ctx, l.address, tx.recipient, tx.asset, tx.amount); err != nil {
		return fmt.Errorf("fail to transfer, err: %w", err)
	}
	return nil
}

// pending returns the transaction for hash if it is still actionable.
func (l *Ledger) pending(hash gcommon.Hash) (*transaction, error) {
	if hash == (gcommon.Hash{}) {
		return nil, ErrTransactionNotFound
	}
	tx, ok := l.txs[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash.Hex())
	}
	if tx.executed() {
		return nil, ErrTransactionExecuted
	}
	if tx.cancelled() {
		return nil, ErrTransactionCancelled
	}
	return tx, nil
}

// registerAsset adds asset to the tracked token arena on first sighting.
func (l *Ledger) registerAsset(asset gcommon.Address) {
	if _, exists := l.tokenIndex[asset]; exists {
		return
	}
	l.tokenIndex[asset] = len(l.tokens)
	l.tokens = append(l.tokens, asset)
}

func (l *Ledger) emit(ctx context.Context, e types.Event) {
	if err := l.publisher.Publish(ctx, e); err != nil {
		l.logger.Errorf("fail to publish audit event, err: %v", err)
	}
}
