package usecases

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
)

// TxManager builds, signs and submits one transfer at a time. It holds
// the unlocked signing key between Unlock and Lock; the key must never
// be logged or persisted while held.
type TxManager struct {
	chain   ChainClient
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address
}

// NewTxManager creates a manager bound to the client's chain ID.
func NewTxManager(chain ChainClient) *TxManager {
	return &TxManager{
		chain:   chain,
		chainID: chain.ChainID(),
	}
}

// Unlock parses hex key material and binds it to the manager.
func (m *TxManager) Unlock(privateKeyHex string) error {
	keyHex := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	key, err := ethcrypto.HexToECDSA(keyHex)
	if err != nil {
		return domainerrors.NewError("failed to parse private key", domainerrors.ErrKeyMalformed)
	}

	m.key = key
	m.from = ethcrypto.PubkeyToAddress(key.PublicKey)
	return nil
}

// Lock drops the key reference. Safe to call when already locked.
func (m *TxManager) Lock() {
	m.key = nil
	m.from = common.Address{}
}

// Build fetches nonce, gas price and a gas estimate and assembles a
// legacy-format transfer request. The three calls run sequentially and
// the first failure aborts the build.
func (m *TxManager) Build(ctx context.Context, to common.Address, amount *big.Int) (*entities.TxRequest, error) {
	if m.key == nil {
		return nil, domainerrors.ErrKeyNotUnlocked
	}

	nonce, err := m.chain.PendingNonceAt(ctx, m.from)
	if err != nil {
		return nil, err
	}

	gasPrice, err := m.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	gas, err := m.chain.EstimateGas(ctx, ethereum.CallMsg{
		From:     m.from,
		To:       &to,
		Value:    amount,
		GasPrice: gasPrice,
	})
	if err != nil {
		return nil, err
	}

	return &entities.TxRequest{
		From:     m.from,
		To:       to,
		Value:    amount,
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		ChainID:  m.chainID,
	}, nil
}

// Sign produces an EIP-155 signed transaction from a built request.
func (m *TxManager) Sign(req *entities.TxRequest) (*types.Transaction, error) {
	if m.key == nil {
		return nil, domainerrors.ErrKeyNotUnlocked
	}

	tx := types.NewTransaction(req.Nonce, req.To, req.Value, req.Gas, req.GasPrice, nil)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(m.chainID), m.key)
	if err != nil {
		return nil, domainerrors.NewError("failed to sign transaction", domainerrors.ErrKeyMalformed)
	}
	return signed, nil
}

// Submit broadcasts a signed transaction and returns the hash assigned
// at submission.
func (m *TxManager) Submit(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	return m.chain.SendTransaction(ctx, tx)
}

// PollStatus performs a single receipt lookup. A nil block number means
// the transaction is still pending.
func (m *TxManager) PollStatus(ctx context.Context, txHash common.Hash) (*big.Int, error) {
	return m.chain.TransactionReceipt(ctx, txHash)
}
