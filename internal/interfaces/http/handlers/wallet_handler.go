package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
	"ether-wallet.backend/internal/interfaces/http/middleware"
	"ether-wallet.backend/internal/interfaces/http/response"
	"ether-wallet.backend/internal/usecases"
	"ether-wallet.backend/pkg/utils"
)

// WalletHandler exposes the wallet engine over HTTP. All routes are
// session scoped; the store registry hands out one store per user.
type WalletHandler struct {
	stores *usecases.WalletStores
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(stores *usecases.WalletStores) *WalletHandler {
	return &WalletHandler{stores: stores}
}

func (h *WalletHandler) storeFor(c *gin.Context) (*usecases.WalletStore, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return nil, false
	}

	store, err := h.stores.For(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return store, true
}

// walletView strips key material out of the wallet for responses. The
// ciphertext itself is opaque but there is no reason to hand it out.
func walletView(wallet *entities.Wallet) gin.H {
	return gin.H{
		"id":            wallet.ID,
		"address":       wallet.Address,
		"balance":       wallet.Balance,
		"tokenDecimals": wallet.TokenDecimals,
		"lastSyncedAt":  wallet.LastSyncedAt,
		"createdAt":     wallet.CreatedAt,
		"updatedAt":     wallet.UpdatedAt,
	}
}

// GetWallet returns the current user's wallet
// GET /api/v1/wallet
func (h *WalletHandler) GetWallet(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	wallet := store.Wallet()
	if wallet == nil {
		response.Error(c, domainerrors.NotFound("Wallet not set up"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": walletView(wallet)})
}

// GenerateWallet commits a mnemonic and creates (or replaces) the wallet
// POST /api/v1/wallet/generate
func (h *WalletHandler) GenerateWallet(c *gin.Context) {
	var input entities.GenerateWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	wallet, err := store.GenerateWallet(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrMnemonicInvalid) {
			response.Error(c, domainerrors.BadRequest("Invalid recovery phrase"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"wallet": walletView(wallet)})
}

// SendTransaction starts an asynchronous transfer
// POST /api/v1/wallet/send
func (h *WalletHandler) SendTransaction(c *gin.Context) {
	var input entities.SendTransactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	if err := store.SendTransaction(c.Request.Context(), &input); err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrWalletNotFound):
			response.Error(c, domainerrors.NotFound("Wallet not set up"))
		case errors.Is(err, domainerrors.ErrDecryptionFailed):
			response.Error(c, domainerrors.Unauthorized("Wrong wallet password"))
		case errors.Is(err, domainerrors.ErrTransferInFlight):
			response.Error(c, domainerrors.Conflict("A transfer is already in progress"))
		default:
			response.Error(c, err)
		}
		return
	}

	// The transfer continues in the background; progress is observable
	// via the status endpoint.
	response.Success(c, http.StatusAccepted, gin.H{"status": store.TransactionStatus()})
}

// GetTransactionStatus returns the displayed lifecycle status
// GET /api/v1/wallet/status
func (h *WalletHandler) GetTransactionStatus(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	status := store.TransactionStatus()
	payload := gin.H{
		"status":  status,
		"display": status.String(),
	}
	if lastErr := store.LastError(); lastErr != nil {
		payload["lastError"] = lastErr
	}
	response.Success(c, http.StatusOK, payload)
}

// ResetTransactionStatus clears a terminal status back to none
// POST /api/v1/wallet/reset-status
func (h *WalletHandler) ResetTransactionStatus(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	if err := store.ResetTransactionStatus(); err != nil {
		if errors.Is(err, domainerrors.ErrTransactionIncomplete) {
			response.Error(c, domainerrors.Conflict("A transfer is still running"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": store.TransactionStatus()})
}

// RefreshBalance re-reads the chain balance
// POST /api/v1/wallet/refresh-balance
func (h *WalletHandler) RefreshBalance(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	wallet, err := store.RefreshBalance(c.Request.Context())
	if err != nil {
		if errors.Is(err, domainerrors.ErrWalletNotFound) {
			response.Error(c, domainerrors.NotFound("Wallet not set up"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallet": walletView(wallet)})
}

// GetTransactions returns the transaction log, newest first, paginated
// GET /api/v1/wallet/transactions?page=1&limit=20
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	store, ok := h.storeFor(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	params := utils.GetPaginationParams(page, limit)

	records := store.Transactions()
	// newest first
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	total := int64(len(records))
	start := params.CalculateOffset()
	if start > len(records) {
		start = len(records)
	}
	end := len(records)
	if params.Limit > 0 && start+params.Limit < end {
		end = start + params.Limit
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": records[start:end],
		"pagination":   utils.CalculateMeta(total, params.Page, params.Limit),
	})
}
