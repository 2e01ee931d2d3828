package handlers

import (
	"errors"
	"math/big"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ether-wallet.backend/internal/usecases"
)

const (
	testMnemonic  = "test test test test test test test test test test test junk"
	testPassword  = "secret-pass"
	testAddress   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testRecipient = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func newWalletRouter(chain usecases.ChainClient) (*gin.Engine, uuid.UUID) {
	userID := uuid.New()
	stores := usecases.NewWalletStores(chain, newWalletRepoStub(), time.Millisecond, 5)
	h := NewWalletHandler(stores)

	router := gin.New()
	group := router.Group("/api/v1/wallet", testAuth(userID))
	group.GET("", h.GetWallet)
	group.POST("/generate", h.GenerateWallet)
	group.POST("/send", h.SendTransaction)
	group.GET("/status", h.GetTransactionStatus)
	group.POST("/reset-status", h.ResetTransactionStatus)
	group.POST("/refresh-balance", h.RefreshBalance)
	group.GET("/transactions", h.GetTransactions)
	return router, userID
}

func generateWallet(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/generate", gin.H{
		"mnemonic": testMnemonic,
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func currentStatusState(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := performJSON(t, router, http.MethodGet, "/api/v1/wallet/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	status := body["status"].(map[string]interface{})
	return status["state"].(string)
}

func TestWalletHandler_GetWallet_NotSetUp(t *testing.T) {
	router, _ := newWalletRouter(newChainStub())

	w := performJSON(t, router, http.MethodGet, "/api/v1/wallet", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWalletHandler_GenerateAndGet(t *testing.T) {
	router, _ := newWalletRouter(newChainStub())

	generateWallet(t, router)

	w := performJSON(t, router, http.MethodGet, "/api/v1/wallet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	wallet := body["wallet"].(map[string]interface{})
	assert.Equal(t, testAddress, wallet["address"])
	assert.NotContains(t, wallet, "encryptedPrivateKey")
	assert.NotContains(t, wallet, "salt")
}

func TestWalletHandler_Generate_InvalidMnemonic(t *testing.T) {
	router, _ := newWalletRouter(newChainStub())

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/generate", gin.H{
		"mnemonic": "twelve words of pure nonsense that fail checksum validation here now",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_SendTransaction_Flow(t *testing.T) {
	chain := newChainStub()
	chain.receipts = []*big.Int{nil, big.NewInt(42)}
	router, _ := newWalletRouter(chain)
	generateWallet(t, router)

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to":       testRecipient,
		"amount":   "1000000000000000000",
		"password": testPassword,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Eventually(t, func() bool {
		return currentStatusState(t, router) == "CONFIRMED"
	}, 5*time.Second, 10*time.Millisecond)

	w = performJSON(t, router, http.MethodGet, "/api/v1/wallet/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	records := body["transactions"].([]interface{})
	require.Len(t, records, 1)
	record := records[0].(map[string]interface{})
	assert.Equal(t, chain.sendHash.Hex(), record["id"])
	assert.Equal(t, testRecipient, record["recipient"])

	meta := body["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, meta["totalCount"])
}

func TestWalletHandler_SendTransaction_WrongPassword(t *testing.T) {
	router, _ := newWalletRouter(newChainStub())
	generateWallet(t, router)

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to":       testRecipient,
		"amount":   "1",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "NONE", currentStatusState(t, router))
}

func TestWalletHandler_SendTransaction_NoWallet(t *testing.T) {
	router, _ := newWalletRouter(newChainStub())

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to":       testRecipient,
		"amount":   "1",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWalletHandler_SendTransaction_Validation(t *testing.T) {
	router, _ := newWalletRouter(newChainStub())
	generateWallet(t, router)

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to":       "not-an-address",
		"amount":   "1",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to": testRecipient,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletHandler_FailedSendAndReset(t *testing.T) {
	chain := newChainStub()
	chain.estimateErr = errors.New("estimate_gas failed")
	router, _ := newWalletRouter(chain)
	generateWallet(t, router)

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to":       testRecipient,
		"amount":   "1",
		"password": testPassword,
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return currentStatusState(t, router) == "FAILED"
	}, 5*time.Second, 10*time.Millisecond)

	// a second send is rejected until the status is reset
	w = performJSON(t, router, http.MethodPost, "/api/v1/wallet/send", gin.H{
		"to":       testRecipient,
		"amount":   "1",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performJSON(t, router, http.MethodPost, "/api/v1/wallet/reset-status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NONE", currentStatusState(t, router))
}

func TestWalletHandler_RefreshBalance(t *testing.T) {
	chain := newChainStub()
	chain.balance = big.NewInt(1_500_000_000_000_000_000)
	router, _ := newWalletRouter(chain)
	generateWallet(t, router)

	w := performJSON(t, router, http.MethodPost, "/api/v1/wallet/refresh-balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	wallet := body["wallet"].(map[string]interface{})
	assert.Equal(t, "1.5", wallet["balance"])
}
