package postgres

import (
	"context"
	"fmt"

	gcommon "github.com/ethereum/go-ethereum/common"

	"github.com/quorumvault/custodian/internal/types"
)

// InsertWallet records a newly created wallet and its signer associations in
// one transaction.
func (p *PostgresBackend) InsertWallet(ctx context.Context, detail types.WalletDetail) error {
	if p.pool == nil {
		return fmt.Errorf("database pool is nil")
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin db transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO wallets (address, name, main_signer, minimum_approvals, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, detail.Address.Hex(), detail.Name, detail.MainSigner.Hex(), detail.MinimumApprovals, detail.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}

	for _, signer := range detail.Signers {
		_, err = tx.Exec(ctx, `
			INSERT INTO wallet_signers (wallet_address, signer, is_main)
			VALUES ($1, $2, $3)
		`, detail.Address.Hex(), signer.Hex(), signer == detail.MainSigner)
		if err != nil {
			return fmt.Errorf("failed to insert wallet signer: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit db transaction: %w", err)
	}
	return nil
}

// FindWalletsBySigner returns the addresses of every recorded wallet the
// signer belongs to, in creation order.
func (p *PostgresBackend) FindWalletsBySigner(ctx context.Context, signer gcommon.Address) ([]gcommon.Address, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("database pool is nil")
	}

	rows, err := p.pool.Query(ctx, `
		SELECT w.address
		FROM wallets w
		JOIN wallet_signers ws ON ws.wallet_address = w.address
		WHERE ws.signer = $1
		ORDER BY w.created_at
	`, signer.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var addresses []gcommon.Address
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("failed to scan wallet address: %w", err)
		}
		addresses = append(addresses, gcommon.HexToAddress(addr))
	}
	return addresses, rows.Err()
}
