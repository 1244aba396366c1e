package types

import (
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
)

// WalletDetail is the read-only view of a wallet served to clients.
type WalletDetail struct {
	Address          gcommon.Address   `json:"address"`
	Name             string            `json:"name"`
	Signers          []gcommon.Address `json:"signers"`
	MainSigner       gcommon.Address   `json:"main_signer"`
	MinimumApprovals int               `json:"minimum_approvals"`
	CreatedAt        time.Time         `json:"created_at"`
}

// BalanceView reports one asset's holding in raw units and USD.
type BalanceView struct {
	Asset      gcommon.Address `json:"asset"`
	Raw        string          `json:"raw"`
	ValueInUsd string          `json:"value_in_usd"`
}

// UsdBalances is the wallet-level USD accounting snapshot.
type UsdBalances struct {
	Total    string `json:"total"`
	Locked   string `json:"locked"`
	Unlocked string `json:"unlocked"`
}
