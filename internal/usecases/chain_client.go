package usecases

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the node surface the transaction engine consumes.
// Satisfied by blockchain.EVMClient; tests substitute a stub. Every
// failure is propagated to the caller, there is no retry below this
// interface.
type ChainClient interface {
	ChainID() *big.Int
	PendingNonceAt(ctx context.Context, address common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	// TransactionReceipt returns the containing block number, or nil
	// when the transaction is not yet mined.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*big.Int, error)
}
