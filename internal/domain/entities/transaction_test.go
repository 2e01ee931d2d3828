package entities

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestStatusForEventProjection(t *testing.T) {
	hash := common.HexToHash("0xdef")

	cases := []struct {
		event TransactionEvent
		state TransactionState
	}{
		{TransactionEvent{Kind: EventStarted}, StatusPreparing},
		{TransactionEvent{Kind: EventBuilding}, StatusBuilding},
		{TransactionEvent{Kind: EventBuilt, Request: &TxRequest{}}, StatusBuilding},
		{TransactionEvent{Kind: EventSigning}, StatusSigning},
		{TransactionEvent{Kind: EventSigned}, StatusSigning},
		{TransactionEvent{Kind: EventSubmitted, TxHash: hash}, StatusSubmitting},
		{TransactionEvent{Kind: EventConfirmed, TxHash: hash, BlockNumber: 42}, StatusConfirmed},
		{TransactionEvent{Kind: EventFailed, Err: errors.New("gas estimate failed")}, StatusFailed},
	}

	for _, c := range cases {
		got := StatusForEvent(c.event)
		assert.Equal(t, c.state, got.State, "event %s", c.event.Kind)
	}
}

func TestStatusForEventPayloads(t *testing.T) {
	hash := common.HexToHash("0xdef")

	submitted := StatusForEvent(TransactionEvent{Kind: EventSubmitted, TxHash: hash})
	if assert.NotNil(t, submitted.GetTxHash()) {
		assert.Equal(t, hash, *submitted.GetTxHash())
	}

	confirmed := StatusForEvent(TransactionEvent{Kind: EventConfirmed, TxHash: hash, BlockNumber: 42})
	assert.Equal(t, uint64(42), confirmed.BlockNumber)
	assert.True(t, confirmed.IsComplete())
	assert.False(t, confirmed.IsError())

	failed := StatusForEvent(TransactionEvent{Kind: EventFailed, Err: errors.New("boom")})
	assert.True(t, failed.IsComplete())
	assert.True(t, failed.IsError())
	assert.Equal(t, "boom", failed.Error)

	// a Failed event without a cause still maps somewhere sensible
	failed = StatusForEvent(TransactionEvent{Kind: EventFailed})
	assert.Equal(t, "unknown error", failed.Error)
}

func TestEventTerminality(t *testing.T) {
	assert.True(t, TransactionEvent{Kind: EventConfirmed}.IsTerminal())
	assert.True(t, TransactionEvent{Kind: EventFailed}.IsTerminal())
	assert.True(t, TransactionEvent{Kind: EventFailed}.IsError())
	assert.False(t, TransactionEvent{Kind: EventConfirmed}.IsError())

	for _, kind := range []TransactionEventKind{
		EventStarted, EventBuilding, EventBuilt, EventSigning, EventSigned, EventSubmitted,
	} {
		assert.False(t, TransactionEvent{Kind: kind}.IsTerminal(), "kind %s", kind)
	}
}

func TestTransactionStatusString(t *testing.T) {
	hash := common.HexToHash("0xdef")

	assert.Equal(t, "No transaction", NoTransaction().String())
	assert.Equal(t, "Preparing transaction", TransactionStatus{State: StatusPreparing}.String())
	assert.Equal(t, "Submitting transaction", TransactionStatus{State: StatusSubmitting}.String())
	assert.Contains(t, TransactionStatus{State: StatusSubmitting, TxHash: &hash}.String(), hash.Hex())

	confirmed := TransactionStatus{State: StatusConfirmed, TxHash: &hash, BlockNumber: 42}
	assert.Contains(t, confirmed.String(), "block 42")

	failed := TransactionStatus{State: StatusFailed, Error: "no gas"}
	assert.Contains(t, failed.String(), "no gas")
}
