package types

import (
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
)

// TransactionView is the serialized form of a pending or settled transfer
// request. Approvers is re-derived from the wallet's signer set at read time.
type TransactionView struct {
	Hash          gcommon.Hash      `json:"hash"`
	Asset         gcommon.Address   `json:"asset"`
	Recipient     gcommon.Address   `json:"recipient"`
	Amount        string            `json:"amount"`
	ApprovalCount int               `json:"approval_count"`
	Approvers     []gcommon.Address `json:"approvers"`
	CreatedAt     time.Time         `json:"created_at"`
	ExecutedAt    time.Time         `json:"executed_at,omitempty"`
	CancelledAt   time.Time         `json:"cancelled_at,omitempty"`
}

// Executed reports whether the transaction reached its terminal executed
// state.
func (t TransactionView) Executed() bool {
	return !t.ExecutedAt.IsZero()
}

// Cancelled reports whether the transaction was cancelled.
func (t TransactionView) Cancelled() bool {
	return !t.CancelledAt.IsZero()
}
