package common

import (
	"math/big"
	"testing"
	"time"

	gcommon "github.com/ethereum/go-ethereum/common"
)

func TestDataCompression(t *testing.T) {
	data := "message"
	compressedData, err := CompressData([]byte(data))
	if err != nil {
		t.Fatal(err)
	}

	decompressedData, err := DecompressData(compressedData)
	if err != nil {
		t.Fatal(err)
	}

	if string(decompressedData) != data {
		t.Fatalf("decompressed: %s, expected: %s", decompressedData, data)
	}
}

func TestTransactionHashDeterminism(t *testing.T) {
	asset := gcommon.HexToAddress("0x1000000000000000000000000000000000000001")
	recipient := gcommon.HexToAddress("0x2000000000000000000000000000000000000002")
	at := time.Unix(1700000000, 0)

	h1 := TransactionHash(asset, recipient, big.NewInt(5), at)
	h2 := TransactionHash(asset, recipient, big.NewInt(5), at)
	if h1 != h2 {
		t.Fatalf("same parameters produced different hashes: %s vs %s", h1, h2)
	}

	h3 := TransactionHash(asset, recipient, big.NewInt(5), at.Add(time.Second))
	if h1 == h3 {
		t.Fatal("different timestamps produced the same hash")
	}

	h4 := TransactionHash(asset, recipient, big.NewInt(6), at)
	if h1 == h4 {
		t.Fatal("different amounts produced the same hash")
	}
}

func TestPasswordCommitment(t *testing.T) {
	c := PasswordCommitment("password", "salt")
	if c != PasswordCommitment("password", "salt") {
		t.Fatal("commitment is not deterministic")
	}
	if c == PasswordCommitment("password", "other-salt") {
		t.Fatal("salt does not affect the commitment")
	}
	if c == PasswordCommitment("other-password", "salt") {
		t.Fatal("password does not affect the commitment")
	}
}
