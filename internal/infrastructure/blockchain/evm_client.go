package blockchain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	domainerrors "ether-wallet.backend/internal/domain/errors"
)

var (
	dialEVMClient    = ethclient.Dial
	getClientChainID = func(client *ethclient.Client, ctx context.Context) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// EVMClient is the thin façade over a chain node used by the transaction
// engine. It keeps no state beyond the cached chain id.
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
	rpcURL  string
}

// NewEVMClient dials the node and caches its chain id
func NewEVMClient(rpcURL string) (*EVMClient, error) {
	client, err := dialEVMClient(rpcURL)
	if err != nil {
		return nil, err
	}

	chainID, err := getClientChainID(client, context.Background())
	if err != nil {
		return nil, err
	}

	return &EVMClient{
		client:  client,
		chainID: chainID,
		rpcURL:  rpcURL,
	}, nil
}

// ChainID returns the cached chain ID
func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

// PendingNonceAt returns the next nonce for an address
func (c *EVMClient) PendingNonceAt(ctx context.Context, address common.Address) (uint64, error) {
	nonce, err := c.client.PendingNonceAt(ctx, address)
	if err != nil {
		return 0, domainerrors.NewError("failed to fetch nonce", domainerrors.ErrChainUnavailable)
	}
	return nonce, nil
}

// SuggestGasPrice returns the node's current gas price
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, domainerrors.NewError("failed to fetch gas price", domainerrors.ErrChainUnavailable)
	}
	return price, nil
}

// EstimateGas estimates gas for a call message
func (c *EVMClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	gas, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, domainerrors.NewError("gas estimation failed", domainerrors.ErrChainUnavailable)
	}
	return gas, nil
}

// BalanceAt returns the native balance of an address
func (c *EVMClient) BalanceAt(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, domainerrors.NewError("failed to fetch balance", domainerrors.ErrChainUnavailable)
	}
	return balance, nil
}

// SendTransaction submits a signed transaction and returns its canonical
// hash as assigned at submission
func (c *EVMClient) SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	if err := c.client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, domainerrors.NewError("transaction submission failed", domainerrors.ErrChainUnavailable)
	}
	return tx.Hash(), nil
}

// TransactionReceipt looks up a receipt once. A nil block number means
// the transaction is not yet mined.
func (c *EVMClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*big.Int, error) {
	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, domainerrors.NewError("receipt lookup failed", domainerrors.ErrChainUnavailable)
	}
	if receipt == nil || receipt.BlockNumber == nil {
		return nil, nil
	}
	return receipt.BlockNumber, nil
}

// Close closes the client connection
func (c *EVMClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
