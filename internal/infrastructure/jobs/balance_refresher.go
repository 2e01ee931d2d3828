package jobs

import (
	"context"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ether-wallet.backend/internal/domain/entities"
)

type balanceWalletRepo interface {
	ListAll(ctx context.Context) ([]*entities.Wallet, error)
	UpdateBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error
}

type chainBalanceReader interface {
	BalanceAt(ctx context.Context, address common.Address) (*big.Int, error)
}

// BalanceRefresherJob periodically refreshes stored wallet balances from
// the chain. RPC failures are tolerated per wallet; the next tick tries
// again.
type BalanceRefresherJob struct {
	repo     balanceWalletRepo
	chain    chainBalanceReader
	interval time.Duration
	stop     chan struct{}
}

func NewBalanceRefresherJob(repo balanceWalletRepo, chain chainBalanceReader, interval time.Duration) *BalanceRefresherJob {
	return &BalanceRefresherJob{
		repo:     repo,
		chain:    chain,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (j *BalanceRefresherJob) Start(ctx context.Context) {
	log.Println("🕐 Starting wallet balance refresher job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Balance refresher job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Balance refresher job stopped")
			return
		case <-ticker.C:
			j.refreshBalances(ctx)
		}
	}
}

func (j *BalanceRefresherJob) Stop() {
	close(j.stop)
}

func (j *BalanceRefresherJob) refreshBalances(ctx context.Context) {
	wallets, err := j.repo.ListAll(ctx)
	if err != nil {
		log.Printf("❌ Error listing wallets for balance refresh: %v", err)
		return
	}

	if len(wallets) == 0 {
		return
	}

	refreshed := 0
	for _, wallet := range wallets {
		wei, err := j.chain.BalanceAt(ctx, common.HexToAddress(wallet.Address))
		if err != nil {
			log.Printf("❌ Error fetching balance for %s: %v", wallet.Address, err)
			continue
		}

		balance := decimal.NewFromBigInt(wei, 0).Shift(-int32(wallet.TokenDecimals))
		if err := j.repo.UpdateBalance(ctx, wallet.UserID, balance); err != nil {
			log.Printf("❌ Error saving balance for %s: %v", wallet.Address, err)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		log.Printf("✅ Refreshed %d wallet balances", refreshed)
	}
}
