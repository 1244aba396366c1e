package storage

import (
	"context"

	gcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quorumvault/custodian/internal/types"
)

// DatabaseStorage is the durable record of wallets and their audit history.
type DatabaseStorage interface {
	Close() error
	InsertWallet(ctx context.Context, detail types.WalletDetail) error
	FindWalletsBySigner(ctx context.Context, signer gcommon.Address) ([]gcommon.Address, error)
	InsertEvent(ctx context.Context, event types.Event) error
	GetEventsByWallet(ctx context.Context, wallet gcommon.Address, offset, limit int) ([]types.Event, error)
}
