package usecases

import (
	"context"
	"encoding/base64"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
	"ether-wallet.backend/internal/domain/repositories"
	"ether-wallet.backend/pkg/crypto"
	"ether-wallet.backend/pkg/hdwallet"
	"ether-wallet.backend/pkg/logger"
)

const walletPersistTimeout = 10 * time.Second

var (
	hdwalletFromMnemonic = hdwallet.FromMnemonic
	decryptWalletKey     = crypto.DecryptKey
)

// WalletStore is the single mutable owner of one user's wallet, displayed
// transaction status, transaction log and last error. Every mutation goes
// through the store's mutex; nothing outside the store writes this state.
type WalletStore struct {
	userID       uuid.UUID
	chain        ChainClient
	walletRepo   repositories.WalletRepository
	pollInterval time.Duration
	maxAttempts  int

	mu           sync.Mutex
	wallet       *entities.Wallet
	status       entities.TransactionStatus
	transactions []entities.TransactionRecord
	lastError    *entities.WalletError
	inFlight     bool
}

// NewWalletStore creates an empty store for one user. Call Hydrate to
// load the persisted wallet record.
func NewWalletStore(
	userID uuid.UUID,
	chain ChainClient,
	walletRepo repositories.WalletRepository,
	pollInterval time.Duration,
	maxAttempts int,
) *WalletStore {
	return &WalletStore{
		userID:       userID,
		chain:        chain,
		walletRepo:   walletRepo,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		status:       entities.NoTransaction(),
	}
}

// Hydrate loads the persisted wallet. A user without a wallet is not an
// error; the store simply starts empty.
func (s *WalletStore) Hydrate(ctx context.Context) error {
	wallet, err := s.walletRepo.GetByUserID(ctx, s.userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrWalletNotFound) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.wallet = wallet
	s.mu.Unlock()
	return nil
}

// GenerateWallet derives a key from the mnemonic, encrypts it under the
// password with a fresh salt and persists the record. Re-running setup
// replaces the previous wallet and clears transient state.
func (s *WalletStore) GenerateWallet(ctx context.Context, input *entities.GenerateWalletInput) (*entities.Wallet, error) {
	derived, err := hdwalletFromMnemonic(input.Mnemonic)
	if err != nil {
		return nil, domainerrors.NewError("failed to derive wallet from mnemonic", domainerrors.ErrMnemonicInvalid)
	}

	salt, err := crypto.GenerateSalt(crypto.VaultSaltLength)
	if err != nil {
		return nil, err
	}

	ciphertext, err := crypto.EncryptKey(derived.PrivateKeyHex, input.Password, salt)
	if err != nil {
		return nil, err
	}

	wallet := &entities.Wallet{
		UserID:              s.userID,
		EncryptedPrivateKey: base64.StdEncoding.EncodeToString(ciphertext),
		Address:             derived.Address,
		Balance:             decimal.Zero,
		Salt:                salt,
		TokenDecimals:       18,
	}

	saved, err := s.walletRepo.Upsert(ctx, wallet)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.wallet = saved
	s.status = entities.NoTransaction()
	s.transactions = nil
	s.lastError = nil
	s.mu.Unlock()

	logger.Info(ctx, "wallet generated", zap.String("address", saved.Address))
	return saved, nil
}

// SendTransaction validates the request, decrypts the signing key and
// spawns a worker for the transfer. The decrypted key exists only for
// the lifetime of that worker run. At most one transfer per wallet is
// in flight at a time.
func (s *WalletStore) SendTransaction(ctx context.Context, input *entities.SendTransactionInput) error {
	if !common.IsHexAddress(input.To) {
		return domainerrors.BadRequest("invalid recipient address")
	}
	amount, ok := new(big.Int).SetString(input.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		return domainerrors.BadRequest("invalid transfer amount")
	}
	to := common.HexToAddress(input.To)

	s.mu.Lock()
	if s.wallet == nil {
		s.mu.Unlock()
		return domainerrors.ErrWalletNotFound
	}
	if s.inFlight {
		s.mu.Unlock()
		return domainerrors.NewError("a transfer is already running for this wallet", domainerrors.ErrTransferInFlight)
	}
	if s.status.State != entities.StatusNone {
		s.mu.Unlock()
		return domainerrors.NewError("reset the previous transaction status before a new transfer", domainerrors.ErrBadRequest)
	}
	wallet := *s.wallet
	s.mu.Unlock()

	// Decrypt before any network call so a wrong password never reaches
	// the chain and never touches the transaction status.
	ciphertext, err := base64.StdEncoding.DecodeString(wallet.EncryptedPrivateKey)
	if err != nil {
		s.setLastError("stored key material is corrupted")
		return domainerrors.ErrDecryptionFailed
	}
	privateKeyHex, err := decryptWalletKey(ciphertext, input.Password, wallet.Salt)
	if err != nil {
		s.setLastError("failed to decrypt private key")
		return domainerrors.ErrDecryptionFailed
	}

	// Re-check the full guard: another transfer may have started, or the
	// running one reached a terminal status, while the lock was released
	// for decryption.
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return domainerrors.NewError("a transfer is already running for this wallet", domainerrors.ErrTransferInFlight)
	}
	if s.status.State != entities.StatusNone {
		s.mu.Unlock()
		return domainerrors.NewError("reset the previous transaction status before a new transfer", domainerrors.ErrBadRequest)
	}
	s.inFlight = true
	s.mu.Unlock()

	worker := NewTxWorker(s.chain, s.pollInterval, s.maxAttempts)

	// The worker outlives the HTTP request that triggered it.
	go worker.Process(context.Background(), to, amount, privateKeyHex)
	go s.consume(worker.Events(), input.To, amount.String())

	return nil
}

// consume drains one worker's event stream in FIFO order, folding each
// event into state before receiving the next.
func (s *WalletStore) consume(events <-chan entities.TransactionEvent, recipient, amount string) {
	for ev := range events {
		s.applyEvent(ev, recipient, amount)
	}
}

func (s *WalletStore) applyEvent(ev entities.TransactionEvent, recipient, amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.IsTerminal() {
		s.inFlight = false
	}

	if !s.applyStatusLocked(entities.StatusForEvent(ev)) {
		return
	}

	if !ev.IsTerminal() {
		return
	}

	record := entities.TransactionRecord{
		Amount:    amount,
		Recipient: recipient,
		Date:      time.Now(),
	}
	if ev.IsError() {
		record.ID = "failed-" + uuid.New().String()
		record.Failed = true
		msg := "transaction failed"
		if ev.Err != nil {
			msg = ev.Err.Error()
		}
		s.lastError = &entities.WalletError{Message: msg, Timestamp: time.Now()}
	} else {
		record.ID = ev.TxHash.Hex()
	}
	s.transactions = append(s.transactions, record)

	if s.wallet != nil {
		snapshot := *s.wallet
		go s.persistWallet(snapshot)
	}
}

// applyStatusLocked enforces the terminal gate: once Confirmed or
// Failed, updates are logged and dropped until an explicit reset.
func (s *WalletStore) applyStatusLocked(next entities.TransactionStatus) bool {
	if s.status.IsComplete() {
		logger.Warn(context.Background(), "ignoring status update after terminal status",
			zap.String("current", string(s.status.State)),
			zap.String("rejected", string(next.State)),
		)
		return false
	}
	s.status = next
	return true
}

// UpdateTransactionStatus applies a status directly, subject to the
// terminal gate.
func (s *WalletStore) UpdateTransactionStatus(next entities.TransactionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyStatusLocked(next)
}

// ResetTransactionStatus returns the status to None so a new transfer
// can start. Rejected while a transfer is still running.
func (s *WalletStore) ResetTransactionStatus() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return domainerrors.ErrTransactionIncomplete
	}
	s.status = entities.NoTransaction()
	s.lastError = nil
	return nil
}

// RefreshBalance reads the chain balance and updates the cached record.
// The chain is the source of truth; a persistence failure keeps the
// refreshed value in memory and is only logged.
func (s *WalletStore) RefreshBalance(ctx context.Context) (*entities.Wallet, error) {
	s.mu.Lock()
	if s.wallet == nil {
		s.mu.Unlock()
		return nil, domainerrors.ErrWalletNotFound
	}
	address := s.wallet.Address
	decimals := s.wallet.TokenDecimals
	s.mu.Unlock()

	wei, err := s.chain.BalanceAt(ctx, common.HexToAddress(address))
	if err != nil {
		return nil, err
	}
	balance := decimal.NewFromBigInt(wei, 0).Shift(-int32(decimals))

	s.mu.Lock()
	s.wallet.Balance = balance
	s.wallet.LastSyncedAt = null.TimeFrom(time.Now())
	wallet := *s.wallet
	s.mu.Unlock()

	if err := s.walletRepo.UpdateBalance(ctx, s.userID, balance); err != nil {
		logger.Error(ctx, "failed to persist refreshed balance", zap.Error(err))
	}
	return &wallet, nil
}

// persistWallet saves a wallet snapshot after a terminal event. Failures
// are logged and never roll back in-memory state.
func (s *WalletStore) persistWallet(snapshot entities.Wallet) {
	ctx, cancel := context.WithTimeout(context.Background(), walletPersistTimeout)
	defer cancel()

	if _, err := s.walletRepo.Upsert(ctx, &snapshot); err != nil {
		logger.Error(ctx, "failed to persist wallet after transaction",
			zap.String("address", snapshot.Address),
			zap.Error(err),
		)
	}
}

func (s *WalletStore) setLastError(message string) {
	s.mu.Lock()
	s.lastError = &entities.WalletError{Message: message, Timestamp: time.Now()}
	s.mu.Unlock()
}

// Wallet returns the current wallet record, or nil before setup.
func (s *WalletStore) Wallet() *entities.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wallet == nil {
		return nil
	}
	wallet := *s.wallet
	return &wallet
}

// TransactionStatus returns the displayed status.
func (s *WalletStore) TransactionStatus() entities.TransactionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Transactions returns the append-only transaction log, newest last.
func (s *WalletStore) Transactions() []entities.TransactionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.TransactionRecord, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// LastError returns the most recent store-level error, or nil.
func (s *WalletStore) LastError() *entities.WalletError {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastError == nil {
		return nil
	}
	lastErr := *s.lastError
	return &lastErr
}

// WalletStores hands out one WalletStore per user, created lazily and
// hydrated from persistence on first use.
type WalletStores struct {
	chain        ChainClient
	walletRepo   repositories.WalletRepository
	pollInterval time.Duration
	maxAttempts  int

	mu     sync.Mutex
	stores map[uuid.UUID]*WalletStore
}

// NewWalletStores creates the per-user store registry.
func NewWalletStores(
	chain ChainClient,
	walletRepo repositories.WalletRepository,
	pollInterval time.Duration,
	maxAttempts int,
) *WalletStores {
	return &WalletStores{
		chain:        chain,
		walletRepo:   walletRepo,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		stores:       make(map[uuid.UUID]*WalletStore),
	}
}

// For returns the user's store, creating and hydrating it on first use.
func (r *WalletStores) For(ctx context.Context, userID uuid.UUID) (*WalletStore, error) {
	r.mu.Lock()
	store, ok := r.stores[userID]
	if !ok {
		store = NewWalletStore(userID, r.chain, r.walletRepo, r.pollInterval, r.maxAttempts)
		r.stores[userID] = store
	}
	r.mu.Unlock()

	if !ok {
		if err := store.Hydrate(ctx); err != nil {
			return nil, err
		}
	}
	return store, nil
}
