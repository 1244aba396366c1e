package wallet

import "errors"

// Configuration errors, raised at construction only.
var (
	ErrSignerCount       = errors.New("signer count must be between 2 and 10")
	ErrZeroSigner        = errors.New("signer address must not be zero")
	ErrDuplicateSigner   = errors.New("duplicate signer address")
	ErrApprovalThreshold = errors.New("minimum approvals must be between 2 and the signer count")
)

// Authorization errors.
var (
	ErrNotSigner       = errors.New("caller is not a signer of this wallet")
	ErrInvalidPassword = errors.New("password commitment mismatch")
)

// State-precondition errors.
var (
	ErrReentrantCall        = errors.New("reentrant call")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrTransactionExists    = errors.New("transaction with identical parameters already exists")
	ErrTransactionExecuted  = errors.New("transaction already executed")
	ErrTransactionCancelled = errors.New("transaction already cancelled")
	ErrAlreadyApproved      = errors.New("transaction already approved by this signer")
	ErrNotApproved          = errors.New("transaction not approved by this signer")
	ErrLacksApprovals       = errors.New("transaction lacks the minimum approvals")
	ErrTokenAlreadyAdded    = errors.New("token already tracked")
	ErrTokenNotFound        = errors.New("token not tracked")
)

// Value errors.
var (
	ErrZeroAmount                  = errors.New("amount must be positive")
	ErrValueMismatch               = errors.New("attached value does not match the declared amount")
	ErrAssetNotSupported           = errors.New("asset has no registered price feed")
	ErrAssetMetadataMissing        = errors.New("asset exposes no metadata")
	ErrInsufficientBalance         = errors.New("wallet holds less than the requested amount")
	ErrInsufficientUnlockedBalance = errors.New("insufficient unlocked usd balance")
)
