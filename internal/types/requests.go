package types

import (
	"fmt"
	"math/big"

	gcommon "github.com/ethereum/go-ethereum/common"
)

// WalletCreateRequest creates a new multisig wallet. The first signer is the
// main (creating) signer.
type WalletCreateRequest struct {
	Name             string   `json:"name"`
	Signers          []string `json:"signers"`
	MinimumApprovals int      `json:"minimum_approvals"`
	PasswordHash     string   `json:"password_hash"`
}

func (r WalletCreateRequest) IsValid() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Signers) == 0 {
		return fmt.Errorf("signers are required")
	}
	for _, s := range r.Signers {
		if !gcommon.IsHexAddress(s) {
			return fmt.Errorf("invalid signer address: %s", s)
		}
	}
	if r.MinimumApprovals < 2 {
		return fmt.Errorf("minimum approvals must be at least 2")
	}
	if r.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}

func (r WalletCreateRequest) SignerAddresses() []gcommon.Address {
	signers := make([]gcommon.Address, 0, len(r.Signers))
	for _, s := range r.Signers {
		signers = append(signers, gcommon.HexToAddress(s))
	}
	return signers
}

// SignedRequest carries the acting signer of a wallet operation.
type SignedRequest struct {
	Signer string `json:"signer"`
}

func (r SignedRequest) IsValid() error {
	if !gcommon.IsHexAddress(r.Signer) {
		return fmt.Errorf("invalid signer address: %s", r.Signer)
	}
	return nil
}

func (r SignedRequest) SignerAddress() gcommon.Address {
	return gcommon.HexToAddress(r.Signer)
}

// DepositRequest credits the wallet with amount of asset. For native deposits
// Value must equal Amount; for token deposits Value must be absent.
type DepositRequest struct {
	SignedRequest
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
	Value  string `json:"value,omitempty"`
}

func (r DepositRequest) IsValid() error {
	if err := r.SignedRequest.IsValid(); err != nil {
		return err
	}
	if r.Asset != "" && !gcommon.IsHexAddress(r.Asset) {
		return fmt.Errorf("invalid asset address: %s", r.Asset)
	}
	if _, err := ParseAmount(r.Amount); err != nil {
		return err
	}
	if r.Value != "" {
		if _, err := ParseAmount(r.Value); err != nil {
			return err
		}
	}
	return nil
}

// LockRequest locks a USD amount; Max locks the full current balance.
type LockRequest struct {
	SignedRequest
	Amount string `json:"amount,omitempty"`
	Max    bool   `json:"max,omitempty"`
}

func (r LockRequest) IsValid() error {
	if err := r.SignedRequest.IsValid(); err != nil {
		return err
	}
	if !r.Max {
		if _, err := ParseAmount(r.Amount); err != nil {
			return err
		}
	}
	return nil
}

// UnlockRequest releases locked USD balance, gated by the password
// commitment.
type UnlockRequest struct {
	LockRequest
	Password string `json:"password"`
	Salt     string `json:"salt"`
}

func (r UnlockRequest) IsValid() error {
	if err := r.LockRequest.IsValid(); err != nil {
		return err
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// TokenRequest adds or removes a tracked token.
type TokenRequest struct {
	SignedRequest
	Asset string `json:"asset"`
}

func (r TokenRequest) IsValid() error {
	if err := r.SignedRequest.IsValid(); err != nil {
		return err
	}
	if !gcommon.IsHexAddress(r.Asset) {
		return fmt.Errorf("invalid asset address: %s", r.Asset)
	}
	return nil
}

// TransactionCreateRequest proposes a transfer out of the wallet.
type TransactionCreateRequest struct {
	SignedRequest
	Asset     string `json:"asset,omitempty"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

func (r TransactionCreateRequest) IsValid() error {
	if err := r.SignedRequest.IsValid(); err != nil {
		return err
	}
	if r.Asset != "" && !gcommon.IsHexAddress(r.Asset) {
		return fmt.Errorf("invalid asset address: %s", r.Asset)
	}
	if !gcommon.IsHexAddress(r.Recipient) {
		return fmt.Errorf("invalid recipient address: %s", r.Recipient)
	}
	if _, err := ParseAmount(r.Amount); err != nil {
		return err
	}
	return nil
}

// ParseAmount parses a base-10 amount string into a big integer.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("amount must be non-negative: %s", s)
	}
	return v, nil
}
