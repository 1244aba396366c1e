package postgres

import (
	"context"
	"fmt"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/quorumvault/custodian/internal/types"
)

// InsertEvent persists one audit event. Inserting the same event twice is a
// no-op so the worker can retry safely.
func (p *PostgresBackend) InsertEvent(ctx context.Context, event types.Event) error {
	if p.pool == nil {
		return fmt.Errorf("database pool is nil")
	}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO audit_events (id, kind, wallet_address, actor, asset, recipient, amount, tx_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, string(event.Kind), event.Wallet.Hex(), event.Actor.Hex(),
		event.Asset.Hex(), event.Recipient.Hex(), event.Amount, event.TxHash.Hex(), event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// GetEventsByWallet returns a newest-first page of a wallet's audit history.
func (p *PostgresBackend) GetEventsByWallet(ctx context.Context, wallet gcommon.Address, offset, limit int) ([]types.Event, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("database pool is nil")
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, kind, wallet_address, actor, asset, recipient, amount, tx_hash, created_at
		FROM audit_events
		WHERE wallet_address = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, wallet.Hex(), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []types.Event
	for rows.Next() {
		var (
			id                        uuid.UUID
			kind                      string
			walletHex, actor, asset   string
			recipient, amount, txHash string
			createdAt                 time.Time
		)
		if err := rows.Scan(&id, &kind, &walletHex, &actor, &asset, &recipient, &amount, &txHash, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, types.Event{
			ID:        id,
			Kind:      types.EventKind(kind),
			Wallet:    gcommon.HexToAddress(walletHex),
			Actor:     gcommon.HexToAddress(actor),
			Asset:     gcommon.HexToAddress(asset),
			Recipient: gcommon.HexToAddress(recipient),
			Amount:    amount,
			TxHash:    gcommon.HexToHash(txHash),
			CreatedAt: createdAt,
		})
	}
	return events, rows.Err()
}
