package model

import "fmt"

// Kind represents the type of a transaction record.
type Kind string

const (
	Deposit    Kind = "deposit"
	Withdrawal Kind = "withdrawal"
	Dispute    Kind = "dispute"
	Resolve    Kind = "resolve"
	Chargeback Kind = "chargeback"
)

// ParseKind maps a lowercase type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Deposit, Withdrawal, Dispute, Resolve, Chargeback:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is one decoded input record.
type Transaction struct {
	Kind   Kind
	Client uint16
	TxID   uint32
	Amount *float64
}

// RequiresAmount reports whether this transaction type carries an amount.
func (t Transaction) RequiresAmount() bool {
	return t.Kind == Deposit || t.Kind == Withdrawal
}

// IsDisputeAction reports whether this transaction operates on an existing
// record rather than creating new exposure.
func (t Transaction) IsDisputeAction() bool {
	return t.Kind == Dispute || t.Kind == Resolve || t.Kind == Chargeback
}

// Valid reports whether the transaction passes soft validation. Deposits and
// withdrawals must carry a positive amount; the dispute actions must not be
// judged by their (ignored) amount field. Invalid transactions are dropped
// before they reach any ledger.
func (t Transaction) Valid() bool {
	if t.RequiresAmount() {
		return t.Amount != nil && *t.Amount > 0
	}
	return true
}

// Account holds one client's balances.
type Account struct {
	Client    uint16
	Available float64
	Held      float64
	Total     float64
	Locked    bool
}

// NewAccount creates an empty, unlocked account for the client.
func NewAccount(client uint16) Account {
	return Account{Client: client}
}
