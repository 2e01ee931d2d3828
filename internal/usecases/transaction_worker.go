package usecases

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"ether-wallet.backend/internal/domain/entities"
	domainerrors "ether-wallet.backend/internal/domain/errors"
	"ether-wallet.backend/pkg/metrics"
)

// TxWorker drives one transfer end to end, emitting a lifecycle event
// per transition onto its channel. Events arrive in emission order and
// exactly one terminal event closes every run; the channel is closed
// after it.
type TxWorker struct {
	manager      *TxManager
	events       chan entities.TransactionEvent
	pollInterval time.Duration
	maxAttempts  int
}

// NewTxWorker creates a worker for a single transfer attempt.
func NewTxWorker(chain ChainClient, pollInterval time.Duration, maxAttempts int) *TxWorker {
	return &TxWorker{
		manager:      NewTxManager(chain),
		events:       make(chan entities.TransactionEvent, 16),
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
	}
}

// Events is the worker's lifecycle stream. Closed when Process returns.
func (w *TxWorker) Events() <-chan entities.TransactionEvent {
	return w.events
}

func (w *TxWorker) emit(ev entities.TransactionEvent) {
	metrics.TransactionEvents.WithLabelValues(string(ev.Kind)).Inc()
	w.events <- ev
}

func (w *TxWorker) fail(err error) {
	metrics.TransactionOutcomes.WithLabelValues("failed").Inc()
	w.emit(entities.TransactionEvent{Kind: entities.EventFailed, Err: err})
}

// Process runs unlock, build, sign, submit and the confirmation poll.
// Any step failure converts into a Failed event; nothing panics the
// caller. The key is scrubbed from the manager before returning.
func (w *TxWorker) Process(ctx context.Context, to common.Address, amount *big.Int, privateKeyHex string) {
	defer close(w.events)
	defer w.manager.Lock()

	w.emit(entities.TransactionEvent{Kind: entities.EventStarted})
	if err := w.manager.Unlock(privateKeyHex); err != nil {
		w.fail(err)
		return
	}

	w.emit(entities.TransactionEvent{Kind: entities.EventBuilding})
	req, err := w.manager.Build(ctx, to, amount)
	if err != nil {
		w.fail(err)
		return
	}
	w.emit(entities.TransactionEvent{Kind: entities.EventBuilt, Request: req})

	w.emit(entities.TransactionEvent{Kind: entities.EventSigning})
	signed, err := w.manager.Sign(req)
	if err != nil {
		w.fail(err)
		return
	}
	w.emit(entities.TransactionEvent{Kind: entities.EventSigned, SignedTx: signed})

	txHash, err := w.manager.Submit(ctx, signed)
	if err != nil {
		w.fail(err)
		return
	}
	w.emit(entities.TransactionEvent{Kind: entities.EventSubmitted, TxHash: txHash})

	w.awaitConfirmation(ctx, txHash)
}

// awaitConfirmation polls the receipt at a fixed interval until the
// transaction is mined, the attempt budget runs out or the context is
// cancelled. The poll is bounded; exhaustion is a Failed outcome.
func (w *TxWorker) awaitConfirmation(ctx context.Context, txHash common.Hash) {
	for attempt := 0; attempt < w.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				w.fail(domainerrors.NewError("confirmation cancelled", domainerrors.ErrConfirmationTimeout))
				return
			case <-time.After(w.pollInterval):
			}
		}

		metrics.ConfirmationPolls.Inc()
		block, err := w.manager.PollStatus(ctx, txHash)
		if err != nil {
			w.fail(err)
			return
		}
		if block != nil {
			metrics.TransactionOutcomes.WithLabelValues("confirmed").Inc()
			w.emit(entities.TransactionEvent{
				Kind:        entities.EventConfirmed,
				TxHash:      txHash,
				BlockNumber: block.Uint64(),
			})
			return
		}
	}

	w.fail(domainerrors.NewError("transaction not confirmed in time", domainerrors.ErrConfirmationTimeout))
}
