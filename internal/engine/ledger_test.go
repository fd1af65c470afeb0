package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/payments-engine/internal/model"
)

func amount(v float64) *float64 {
	return &v
}

func deposit(client uint16, txID uint32, v float64) model.Transaction {
	return model.Transaction{Kind: model.Deposit, Client: client, TxID: txID, Amount: amount(v)}
}

func withdrawal(client uint16, txID uint32, v float64) model.Transaction {
	return model.Transaction{Kind: model.Withdrawal, Client: client, TxID: txID, Amount: amount(v)}
}

func disputeAction(kind model.Kind, client uint16, txID uint32) model.Transaction {
	return model.Transaction{Kind: kind, Client: client, TxID: txID}
}

// assertBalanced checks the core bookkeeping invariant after every applied
// transaction: total == available + held.
func assertBalanced(t *testing.T, account model.Account) {
	t.Helper()
	assert.InDelta(t, account.Available+account.Held, account.Total, 1e-9)
}

func applyAll(t *testing.T, ledger *ClientLedger, txs ...model.Transaction) {
	t.Helper()
	for _, tx := range txs {
		ledger.Apply(tx)
		assertBalanced(t, ledger.Account())
	}
}

func TestLedger_Deposit(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger, deposit(1, 1, 100.0))

	account := ledger.Account()
	assert.Equal(t, 100.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.Equal(t, 100.0, account.Total)
	assert.False(t, account.Locked)
}

func TestLedger_DepositThenWithdrawal(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		withdrawal(1, 2, 30.0),
	)

	account := ledger.Account()
	assert.Equal(t, 70.0, account.Available)
	assert.Equal(t, 70.0, account.Total)
}

func TestLedger_WithdrawalInsufficientFunds(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger, withdrawal(1, 1, 50.0))

	account := ledger.Account()
	assert.Equal(t, 0.0, account.Available)
	assert.Equal(t, 0.0, account.Total)
}

func TestLedger_DisputeDeposit(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		disputeAction(model.Dispute, 1, 1),
	)

	account := ledger.Account()
	assert.Equal(t, 0.0, account.Available)
	assert.Equal(t, 100.0, account.Held)
	assert.Equal(t, 100.0, account.Total)
}

func TestLedger_ResolveDepositDispute(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		disputeAction(model.Dispute, 1, 1),
		disputeAction(model.Resolve, 1, 1),
	)

	account := ledger.Account()
	assert.Equal(t, 100.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.Equal(t, 100.0, account.Total)
	assert.False(t, account.Locked)
}

func TestLedger_ChargebackDepositDispute(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		disputeAction(model.Dispute, 1, 1),
		disputeAction(model.Chargeback, 1, 1),
	)

	account := ledger.Account()
	assert.Equal(t, 0.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.Equal(t, 0.0, account.Total)
	assert.True(t, account.Locked)

	// The account is frozen: new deposits no longer apply.
	applyAll(t, ledger, deposit(1, 3, 50.0))
	assert.Equal(t, 0.0, ledger.Account().Total)
}

func TestLedger_DisputeWithdrawal(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		withdrawal(1, 2, 40.0),
		disputeAction(model.Dispute, 1, 2),
	)

	// The withdrawn 40 is re-added under held: total grows back to 100.
	account := ledger.Account()
	assert.Equal(t, 60.0, account.Available)
	assert.Equal(t, 40.0, account.Held)
	assert.Equal(t, 100.0, account.Total)
}

func TestLedger_ResolveWithdrawalDispute(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		withdrawal(1, 2, 40.0),
		disputeAction(model.Dispute, 1, 2),
		disputeAction(model.Resolve, 1, 2),
	)

	// The withdrawal stood: back to the post-withdrawal balances.
	account := ledger.Account()
	assert.Equal(t, 60.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.Equal(t, 60.0, account.Total)
	assert.False(t, account.Locked)
}

func TestLedger_ChargebackWithdrawalDispute(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		withdrawal(1, 2, 40.0),
		disputeAction(model.Dispute, 1, 2),
		disputeAction(model.Chargeback, 1, 2),
	)

	// The withdrawal was fraudulent: funds return to available.
	account := ledger.Account()
	assert.Equal(t, 100.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.Equal(t, 100.0, account.Total)
	assert.True(t, account.Locked)
}

func TestLedger_DisputeUnknownTx(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		disputeAction(model.Dispute, 1, 99),
	)

	account := ledger.Account()
	assert.Equal(t, 100.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
}

func TestLedger_DoubleDisputeIsNoOp(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		disputeAction(model.Dispute, 1, 1),
		disputeAction(model.Dispute, 1, 1),
	)

	account := ledger.Account()
	assert.Equal(t, 0.0, account.Available)
	assert.Equal(t, 100.0, account.Held)
	assert.Equal(t, 100.0, account.Total)
}

func TestLedger_ResolveWithoutDisputeIsNoOp(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		disputeAction(model.Resolve, 1, 1),
		disputeAction(model.Chargeback, 1, 1),
	)

	account := ledger.Account()
	assert.Equal(t, 100.0, account.Available)
	assert.Equal(t, 0.0, account.Held)
	assert.False(t, account.Locked)
}

func TestLedger_InvalidAmountsDropped(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		model.Transaction{Kind: model.Deposit, Client: 1, TxID: 1},
		model.Transaction{Kind: model.Deposit, Client: 1, TxID: 2, Amount: amount(0.0)},
		model.Transaction{Kind: model.Withdrawal, Client: 1, TxID: 3, Amount: amount(-10.0)},
	)

	assert.Equal(t, 0.0, ledger.Account().Total)

	// A dropped deposit leaves no record behind to dispute.
	applyAll(t, ledger, disputeAction(model.Dispute, 1, 1))
	assert.Equal(t, 0.0, ledger.Account().Held)
}

func TestLedger_LockedAccountStillAcceptsDisputeActions(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		deposit(1, 2, 50.0),
		disputeAction(model.Dispute, 1, 1),
		disputeAction(model.Chargeback, 1, 1),
	)
	require.True(t, ledger.Account().Locked)

	// Deposits and withdrawals are rejected once locked...
	applyAll(t, ledger,
		deposit(1, 3, 25.0),
		withdrawal(1, 4, 10.0),
	)
	assert.Equal(t, 50.0, ledger.Account().Total)

	// ...but disputes on pre-existing records still apply.
	applyAll(t, ledger,
		disputeAction(model.Dispute, 1, 2),
		disputeAction(model.Resolve, 1, 2),
	)
	assert.Equal(t, 50.0, ledger.Account().Available)
	assert.True(t, ledger.Account().Locked)
}

// Adversarial sequences can drive balances negative. That is current,
// documented behavior: the state machine does not clamp.
func TestLedger_NegativeBalancesNotClamped(t *testing.T) {
	ledger := NewClientLedger(1)
	applyAll(t, ledger,
		deposit(1, 1, 100.0),
		withdrawal(1, 2, 100.0),
		disputeAction(model.Dispute, 1, 1),
		disputeAction(model.Chargeback, 1, 1),
	)

	account := ledger.Account()
	assert.Equal(t, -100.0, account.Available)
	assert.Equal(t, -100.0, account.Total)
	assert.True(t, account.Locked)
}
