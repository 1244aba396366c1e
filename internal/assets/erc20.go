package assets

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

const erc20ABI = `[
  {"constant":true,"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
  {"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
  {"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"type":"function"},
  {"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
  {"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// ChainBackend reads balances and moves assets on a live chain through an rpc
// client. Transfers are signed with the custodian's operator key; on-chain
// wallets for which the operator does not hold the key cannot be moved here.
type ChainBackend struct {
	client   *ethclient.Client
	abi      abi.ABI
	chainID  *big.Int
	operator gcommon.Address
	key      *ecdsa.PrivateKey
	logger   *logrus.Logger
}

func NewChainBackend(client *ethclient.Client, chainID *big.Int, operator gcommon.Address, key *ecdsa.PrivateKey) (*ChainBackend, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("fail to parse erc20 abi, err: %w", err)
	}
	return &ChainBackend{
		client:   client,
		abi:      parsed,
		chainID:  chainID,
		operator: operator,
		key:      key,
		logger:   logrus.WithField("module", "chain_backend").Logger,
	}, nil
}

func (c *ChainBackend) BalanceOf(ctx context.Context, account, asset gcommon.Address) (*big.Int, error) {
	if asset == (gcommon.Address{}) {
		return c.client.BalanceAt(ctx, account, nil)
	}
	var out []interface{}
	if err := c.bound(asset).Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", account); err != nil {
		return nil, fmt.Errorf("fail to read balance of %s, err: %w", asset.Hex(), err)
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("token %s returned an invalid balance", asset.Hex())
	}
	return bal, nil
}

func (c *ChainBackend) Transfer(ctx context.Context, from, to, asset gcommon.Address, amount *big.Int) error {
	if from != c.operator {
		return fmt.Errorf("%w: backend can only move funds held by %s", ErrTransferFailed, c.operator.Hex())
	}
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return fmt.Errorf("fail to build transactor, err: %w", err)
	}
	auth.Context = ctx

	if asset == (gcommon.Address{}) {
		return c.sendNative(ctx, to, amount)
	}
	tx, err := c.bound(asset).Transact(auth, "transfer", to, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	c.logger.WithField("tx", tx.Hash().Hex()).Info("token transfer submitted")
	return nil
}

func (c *ChainBackend) TransferFrom(ctx context.Context, owner, recipient, asset gcommon.Address, amount *big.Int) error {
	if asset == (gcommon.Address{}) {
		return fmt.Errorf("%w: native asset cannot be pulled", ErrTransferFailed)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return fmt.Errorf("fail to build transactor, err: %w", err)
	}
	auth.Context = ctx

	tx, err := c.bound(asset).Transact(auth, "transferFrom", owner, recipient, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	c.logger.WithField("tx", tx.Hash().Hex()).Info("token pull submitted")
	return nil
}

func (c *ChainBackend) Decimals(ctx context.Context, asset gcommon.Address) (uint8, error) {
	if asset == (gcommon.Address{}) {
		return NativeDecimals, nil
	}
	var out []interface{}
	if err := c.bound(asset).Call(&bind.CallOpts{Context: ctx}, &out, "decimals"); err != nil {
		return 0, fmt.Errorf("fail to read decimals of %s, err: %w", asset.Hex(), err)
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("token %s returned invalid decimals", asset.Hex())
	}
	return decimals, nil
}

func (c *ChainBackend) Name(ctx context.Context, asset gcommon.Address) (string, error) {
	if asset == (gcommon.Address{}) {
		return "Native", nil
	}
	var out []interface{}
	if err := c.bound(asset).Call(&bind.CallOpts{Context: ctx}, &out, "name"); err != nil {
		// metadata probe only, absence of a name is not a transport error
		return "", nil
	}
	name, ok := out[0].(string)
	if !ok {
		return "", nil
	}
	return name, nil
}

func (c *ChainBackend) bound(asset gcommon.Address) *bind.BoundContract {
	return bind.NewBoundContract(asset, c.abi, c.client, c.client, c.client)
}

func (c *ChainBackend) sendNative(ctx context.Context, to gcommon.Address, amount *big.Int) error {
	nonce, err := c.client.PendingNonceAt(ctx, c.operator)
	if err != nil {
		return fmt.Errorf("fail to fetch nonce, err: %w", err)
	}
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return fmt.Errorf("fail to suggest gas price, err: %w", err)
	}
	tx := types.NewTransaction(nonce, to, amount, 21000, gasPrice, nil)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return fmt.Errorf("fail to sign native transfer, err: %w", err)
	}
	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	c.logger.WithField("tx", signed.Hash().Hex()).Info("native transfer submitted")
	return nil
}
