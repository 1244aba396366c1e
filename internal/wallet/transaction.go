package wallet

import (
	"math/big"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
)

// transaction is the internal record of a transfer request. Lifecycle:
// created, then approved or revoked, then executed or cancelled; executed and
// cancelled are terminal and mutually exclusive.
type transaction struct {
	hash          gcommon.Hash
	asset         gcommon.Address
	recipient     gcommon.Address
	amount        *big.Int
	approvalCount int
	approvals     map[gcommon.Address]bool
	createdAt     time.Time
	executedAt    time.Time
	cancelledAt   time.Time
}

func (t *transaction) executed() bool  { return !t.executedAt.IsZero() }
func (t *transaction) cancelled() bool { return !t.cancelledAt.IsZero() }
