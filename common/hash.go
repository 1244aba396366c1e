package common

import (
	"math/big"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// NativeAsset is the sentinel identifier for the chain's base currency.
var NativeAsset = gcommon.Address{}

// TransactionHash derives the identity of a transfer request from its
// parameters and creation time. Token transfers fold the amount into the
// hash, native transfers use the attached value and hash a zero amount.
func TransactionHash(asset, recipient gcommon.Address, amount *big.Int, createdAt time.Time) gcommon.Hash {
	amt := make([]byte, 32)
	if amount != nil {
		amount.FillBytes(amt)
	}
	ts := big.NewInt(createdAt.Unix())
	tsBytes := make([]byte, 8)
	ts.FillBytes(tsBytes)
	return crypto.Keccak256Hash(asset.Bytes(), recipient.Bytes(), amt, tsBytes)
}

// PasswordCommitment hashes a password together with its salt. The result is
// stored at wallet creation and compared on unlock.
func PasswordCommitment(password, salt string) gcommon.Hash {
	return crypto.Keccak256Hash([]byte(password), []byte(salt))
}

// NameKey hashes a registry entry name for storage.
func NameKey(name string) gcommon.Hash {
	return crypto.Keccak256Hash([]byte(name))
}
