package entities

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransactionRecord is one completed or failed transfer attempt.
// Records are append-only; failed attempts keep their own synthetic ID so
// the audit trail survives retries.
type TransactionRecord struct {
	ID        string    `json:"id"`
	Amount    string    `json:"amount"` // wei, base-10
	Recipient string    `json:"recipient"`
	Date      time.Time `json:"date"`
	Failed    bool      `json:"failed,omitempty"`
}

// TxRequest is an unsigned legacy-format transaction with live chain
// parameters filled in.
type TxRequest struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	ChainID  *big.Int
}

// TransactionEventKind enumerates worker lifecycle emissions.
type TransactionEventKind string

const (
	EventStarted   TransactionEventKind = "STARTED"
	EventBuilding  TransactionEventKind = "BUILDING"
	EventBuilt     TransactionEventKind = "BUILT"
	EventSigning   TransactionEventKind = "SIGNING"
	EventSigned    TransactionEventKind = "SIGNED"
	EventSubmitted TransactionEventKind = "SUBMITTED"
	EventConfirmed TransactionEventKind = "CONFIRMED"
	EventFailed    TransactionEventKind = "FAILED"
)

// TransactionEvent is one worker lifecycle emission. Payload fields are
// populated per kind: Request on Built, SignedTx on Signed, TxHash from
// Submitted onward, BlockNumber on Confirmed, Err on Failed.
type TransactionEvent struct {
	Kind        TransactionEventKind
	Request     *TxRequest
	SignedTx    *types.Transaction
	TxHash      common.Hash
	BlockNumber uint64
	Err         error
}

// IsTerminal reports whether the event ends a worker run.
func (e TransactionEvent) IsTerminal() bool {
	return e.Kind == EventConfirmed || e.Kind == EventFailed
}

// IsError reports whether the event is a failure.
func (e TransactionEvent) IsError() bool {
	return e.Kind == EventFailed
}

// TransactionState enumerates displayed transaction states.
type TransactionState string

const (
	StatusNone       TransactionState = "NONE"
	StatusPreparing  TransactionState = "PREPARING"
	StatusBuilding   TransactionState = "BUILDING"
	StatusSigning    TransactionState = "SIGNING"
	StatusSubmitting TransactionState = "SUBMITTING"
	StatusConfirmed  TransactionState = "CONFIRMED"
	StatusFailed     TransactionState = "FAILED"
)

// TransactionStatus is the single displayed status governing UI
// enablement. Exactly one lives in the store at a time.
type TransactionStatus struct {
	State       TransactionState `json:"state"`
	TxHash      *common.Hash     `json:"txHash,omitempty"`
	BlockNumber uint64           `json:"blockNumber,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// NoTransaction is the reset status.
func NoTransaction() TransactionStatus {
	return TransactionStatus{State: StatusNone}
}

// IsComplete reports whether the status is terminal. A terminal status
// rejects further updates until explicitly reset.
func (s TransactionStatus) IsComplete() bool {
	return s.State == StatusConfirmed || s.State == StatusFailed
}

// IsError reports whether the status is a failure.
func (s TransactionStatus) IsError() bool {
	return s.State == StatusFailed
}

// GetTxHash returns the hash once one is known.
func (s TransactionStatus) GetTxHash() *common.Hash {
	return s.TxHash
}

func (s TransactionStatus) String() string {
	switch s.State {
	case StatusNone:
		return "No transaction"
	case StatusPreparing:
		return "Preparing transaction"
	case StatusBuilding:
		return "Building transaction"
	case StatusSigning:
		return "Signing transaction"
	case StatusSubmitting:
		if s.TxHash != nil {
			return fmt.Sprintf("Transaction submitted: %s", s.TxHash.Hex())
		}
		return "Submitting transaction"
	case StatusConfirmed:
		return fmt.Sprintf("Transaction %s confirmed in block %d", s.TxHash.Hex(), s.BlockNumber)
	case StatusFailed:
		return fmt.Sprintf("Transaction failed: %s", s.Error)
	default:
		return string(s.State)
	}
}

// StatusForEvent projects a worker event onto the displayed status. The
// mapping is total and pure; Built folds into Building and Signed into
// Signing, so the status stream is coarser than the event stream.
func StatusForEvent(e TransactionEvent) TransactionStatus {
	switch e.Kind {
	case EventStarted:
		return TransactionStatus{State: StatusPreparing}
	case EventBuilding, EventBuilt:
		return TransactionStatus{State: StatusBuilding}
	case EventSigning, EventSigned:
		return TransactionStatus{State: StatusSigning}
	case EventSubmitted:
		hash := e.TxHash
		return TransactionStatus{State: StatusSubmitting, TxHash: &hash}
	case EventConfirmed:
		hash := e.TxHash
		return TransactionStatus{State: StatusConfirmed, TxHash: &hash, BlockNumber: e.BlockNumber}
	case EventFailed:
		msg := "unknown error"
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return TransactionStatus{State: StatusFailed, Error: msg}
	default:
		return NoTransaction()
	}
}
