package engine

import (
	"github.com/example/payments-engine/internal/model"
)

// record is the retained history entry for an accepted deposit or withdrawal.
// Dispute-class transactions carry no amount of their own; their effect is
// derived entirely from the referenced record.
type record struct {
	amount    float64
	disputed  bool
	isDeposit bool
}

// ClientLedger pairs one client's account with its transaction history. A
// ledger is owned exclusively by the worker holding its partition, so no
// synchronization is needed.
type ClientLedger struct {
	account model.Account
	history map[uint32]*record
}

// NewClientLedger creates an empty ledger for the client.
func NewClientLedger(client uint16) *ClientLedger {
	return &ClientLedger{
		account: model.NewAccount(client),
		history: make(map[uint32]*record),
	}
}

// Account returns the current balances projection.
func (l *ClientLedger) Account() model.Account {
	return l.account
}

// Apply runs one transaction through the state machine. Any transaction whose
// preconditions are not met does not apply and leaves the ledger unchanged;
// that is a normal outcome, not an error. The invariant
// total == available + held holds after every call.
func (l *ClientLedger) Apply(tx model.Transaction) {
	if !tx.Valid() {
		return
	}

	// A locked account accepts no new exposure. Dispute actions still apply
	// because they operate on pre-existing records.
	if l.account.Locked && !tx.IsDisputeAction() {
		return
	}

	switch tx.Kind {
	case model.Deposit:
		l.deposit(tx.TxID, *tx.Amount)
	case model.Withdrawal:
		l.withdraw(tx.TxID, *tx.Amount)
	case model.Dispute:
		l.dispute(tx.TxID)
	case model.Resolve:
		l.resolve(tx.TxID)
	case model.Chargeback:
		l.chargeback(tx.TxID)
	}
}

func (l *ClientLedger) deposit(txID uint32, amount float64) {
	l.account.Available += amount
	l.account.Total += amount

	l.history[txID] = &record{amount: amount, isDeposit: true}
}

func (l *ClientLedger) withdraw(txID uint32, amount float64) {
	if l.account.Available < amount {
		return
	}

	l.account.Available -= amount
	l.account.Total -= amount

	l.history[txID] = &record{amount: amount, isDeposit: false}
}

func (l *ClientLedger) dispute(txID uint32) {
	rec, ok := l.history[txID]
	if !ok || rec.disputed {
		return
	}

	if rec.isDeposit {
		// Disputing a deposit freezes already-counted funds: they move from
		// available into held, total unchanged.
		l.account.Available -= rec.amount
		l.account.Held += rec.amount
	} else {
		// Disputing a withdrawal reverses money that already left the books:
		// the amount is re-added under held, so total grows back.
		l.account.Held += rec.amount
		l.account.Total += rec.amount
	}
	rec.disputed = true
}

func (l *ClientLedger) resolve(txID uint32) {
	rec, ok := l.history[txID]
	if !ok || !rec.disputed {
		return
	}

	if rec.isDeposit {
		// The deposit stands: release the hold back into available.
		l.account.Available += rec.amount
		l.account.Held -= rec.amount
	} else {
		// The withdrawal stands: drop the reservation and re-reduce total.
		l.account.Held -= rec.amount
		l.account.Total -= rec.amount
	}
	rec.disputed = false
}

func (l *ClientLedger) chargeback(txID uint32) {
	rec, ok := l.history[txID]
	if !ok || !rec.disputed {
		return
	}

	if rec.isDeposit {
		// The deposit was illegitimate: the held funds leave the books.
		l.account.Held -= rec.amount
		l.account.Total -= rec.amount
	} else {
		// The withdrawal was illegitimate: the held funds return to available.
		l.account.Held -= rec.amount
		l.account.Available += rec.amount
	}
	// Locked is monotonic: once set it is never reset.
	l.account.Locked = true
}
