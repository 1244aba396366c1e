package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	gcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

const aggregatorABI = `[
  {"inputs":[],"name":"latestRoundData","outputs":[
    {"internalType":"uint80","name":"roundId","type":"uint80"},
    {"internalType":"int256","name":"answer","type":"int256"},
    {"internalType":"uint256","name":"startedAt","type":"uint256"},
    {"internalType":"uint256","name":"updatedAt","type":"uint256"},
    {"internalType":"uint80","name":"answeredInRound","type":"uint80"}],
   "stateMutability":"view","type":"function"},
  {"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],
   "stateMutability":"view","type":"function"}
]`

// FeedGateway resolves prices from chainlink-style aggregator contracts, one
// feed address per asset.
type FeedGateway struct {
	mu     sync.RWMutex
	owner  gcommon.Address
	client *ethclient.Client
	feeds  map[gcommon.Address]gcommon.Address
	abi    abi.ABI
	logger *logrus.Logger
}

func NewFeedGateway(owner gcommon.Address, client *ethclient.Client) (*FeedGateway, error) {
	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("fail to parse aggregator abi, err: %w", err)
	}
	return &FeedGateway{
		owner:  owner,
		client: client,
		feeds:  make(map[gcommon.Address]gcommon.Address),
		abi:    parsed,
		logger: logrus.WithField("module", "oracle").Logger,
	}, nil
}

// Register binds asset to its aggregator contract. Only the owner may call it.
func (g *FeedGateway) Register(caller, asset, feed gcommon.Address) error {
	if caller != g.owner {
		return ErrNotOwner
	}
	if feed == (gcommon.Address{}) {
		return fmt.Errorf("feed address is required")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.feeds[asset] = feed
	return nil
}

func (g *FeedGateway) Price(ctx context.Context, asset gcommon.Address) (*big.Int, uint8, error) {
	g.mu.RLock()
	feed, ok := g.feeds[asset]
	g.mu.RUnlock()
	if !ok {
		if asset == (gcommon.Address{}) {
			return nil, 0, ErrNativeFeedNotRegistered
		}
		return nil, 0, fmt.Errorf("%w: %s", ErrFeedNotRegistered, asset.Hex())
	}

	answer, err := g.call(ctx, feed, "latestRoundData")
	if err != nil {
		return nil, 0, fmt.Errorf("fail to read latest round from feed %s, err: %w", feed.Hex(), err)
	}
	price, ok := answer[1].(*big.Int)
	if !ok || price.Sign() < 0 {
		return nil, 0, fmt.Errorf("feed %s returned an invalid answer", feed.Hex())
	}

	decRes, err := g.call(ctx, feed, "decimals")
	if err != nil {
		return nil, 0, fmt.Errorf("fail to read decimals from feed %s, err: %w", feed.Hex(), err)
	}
	decimals, ok := decRes[0].(uint8)
	if !ok {
		return nil, 0, fmt.Errorf("feed %s returned invalid decimals", feed.Hex())
	}
	return price, decimals, nil
}

func (g *FeedGateway) Registered(_ context.Context, asset gcommon.Address) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.feeds[asset]
	return ok
}

func (g *FeedGateway) call(ctx context.Context, feed gcommon.Address, method string) ([]interface{}, error) {
	data, err := g.abi.Pack(method)
	if err != nil {
		return nil, err
	}
	raw, err := g.client.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	return g.abi.Unpack(method, raw)
}
