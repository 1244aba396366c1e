package types

import (
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type EventKind string

const (
	EventWalletCreated        EventKind = "wallet:created"
	EventDeposit              EventKind = "wallet:deposit"
	EventBalanceLocked        EventKind = "wallet:balance_locked"
	EventBalanceUnlocked      EventKind = "wallet:balance_unlocked"
	EventTokenAdded           EventKind = "wallet:token_added"
	EventTokenRemoved         EventKind = "wallet:token_removed"
	EventTransactionCreated   EventKind = "transaction:created"
	EventTransactionApproved  EventKind = "transaction:approved"
	EventTransactionRevoked   EventKind = "transaction:revoked"
	EventTransactionCancelled EventKind = "transaction:cancelled"
	EventTransactionExecuted  EventKind = "transaction:executed"
)

// Event is an audit record emitted on every successful state transition. It
// is published to the event stream and persisted by the worker.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Kind      EventKind         `json:"kind"`
	Wallet    gcommon.Address   `json:"wallet"`
	Actor     gcommon.Address   `json:"actor"`
	Asset     gcommon.Address   `json:"asset,omitempty"`
	Recipient gcommon.Address   `json:"recipient,omitempty"`
	Amount    string            `json:"amount,omitempty"`
	TxHash    gcommon.Hash      `json:"tx_hash,omitempty"`
	Signers   []gcommon.Address `json:"signers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewEvent stamps a fresh audit event.
func NewEvent(kind EventKind, wallet, actor gcommon.Address) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Wallet:    wallet,
		Actor:     actor,
		CreatedAt: time.Now().UTC(),
	}
}
