package usecases

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "ether-wallet.backend/internal/domain/errors"
)

// Anvil account zero, a well-known throwaway key.
const testPrivateKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const testFromAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

func TestTxManager_UnlockMalformed(t *testing.T) {
	m := NewTxManager(newStubChainClient())

	for _, material := range []string{"", "zz", "0x1234", "not a key at all"} {
		err := m.Unlock(material)
		assert.ErrorIs(t, err, domainerrors.ErrKeyMalformed, "material=%q", material)
	}
}

func TestTxManager_UnlockAcceptsPrefixedKey(t *testing.T) {
	m := NewTxManager(newStubChainClient())
	require.NoError(t, m.Unlock("0x"+testPrivateKeyHex))
	assert.Equal(t, common.HexToAddress(testFromAddress), m.from)
}

func TestTxManager_RequiresUnlock(t *testing.T) {
	m := NewTxManager(newStubChainClient())

	_, err := m.Build(context.Background(), common.Address{}, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrKeyNotUnlocked)

	_, err = m.Sign(nil)
	assert.ErrorIs(t, err, domainerrors.ErrKeyNotUnlocked)
}

func TestTxManager_BuildSignSubmit(t *testing.T) {
	chain := newStubChainClient()
	chain.nonce = 7
	chain.gasPrice = big.NewInt(2_000_000_000)
	m := NewTxManager(chain)
	require.NoError(t, m.Unlock(testPrivateKeyHex))

	to := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	amount := big.NewInt(1_000_000_000_000_000_000)

	req, err := m.Build(context.Background(), to, amount)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testFromAddress), req.From)
	assert.Equal(t, to, req.To)
	assert.Equal(t, uint64(7), req.Nonce)
	assert.Equal(t, "2000000000", req.GasPrice.String())
	assert.Equal(t, uint64(21000), req.Gas)
	assert.Equal(t, chain.chainID, req.ChainID)

	signed, err := m.Sign(req)
	require.NoError(t, err)

	sender, err := types.Sender(types.NewEIP155Signer(chain.chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, req.From, sender)

	hash, err := m.Submit(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, chain.submitHash, hash)
}

func TestTxManager_BuildAbortsOnFirstFailure(t *testing.T) {
	boom := errors.New("rpc down")

	cases := []struct {
		name string
		prep func(*stubChainClient)
	}{
		{"nonce", func(c *stubChainClient) { c.nonceErr = boom }},
		{"gas price", func(c *stubChainClient) { c.gasPriceErr = boom }},
		{"gas estimate", func(c *stubChainClient) { c.estimateErr = boom }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chain := newStubChainClient()
			tc.prep(chain)
			m := NewTxManager(chain)
			require.NoError(t, m.Unlock(testPrivateKeyHex))

			_, err := m.Build(context.Background(), common.Address{}, big.NewInt(1))
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestTxManager_LockDropsKey(t *testing.T) {
	m := NewTxManager(newStubChainClient())
	require.NoError(t, m.Unlock(testPrivateKeyHex))

	m.Lock()
	assert.Nil(t, m.key)
	assert.Equal(t, common.Address{}, m.from)

	_, err := m.Build(context.Background(), common.Address{}, big.NewInt(1))
	assert.ErrorIs(t, err, domainerrors.ErrKeyNotUnlocked)
}

func TestTxManager_PollStatus(t *testing.T) {
	chain := newStubChainClient()
	chain.receipts = []*big.Int{nil, big.NewInt(42)}
	m := NewTxManager(chain)

	block, err := m.PollStatus(context.Background(), chain.submitHash)
	require.NoError(t, err)
	assert.Nil(t, block)

	block, err = m.PollStatus(context.Background(), chain.submitHash)
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.Equal(t, int64(42), block.Int64())
}
