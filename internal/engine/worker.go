package engine

import (
	"log/slog"

	"github.com/example/payments-engine/internal/model"
)

// runWorker consumes the worker's private queue until it is closed and
// drained, then returns the ledgers it accumulated. Processing is strictly
// sequential, which is what guarantees per-client ordering: all transactions
// for one client arrive on this one queue in arrival order.
func runWorker(id int, queue <-chan model.Transaction, logger *slog.Logger) map[uint16]*ClientLedger {
	ledgers := make(map[uint16]*ClientLedger)

	for tx := range queue {
		ledger, ok := ledgers[tx.Client]
		if !ok {
			ledger = NewClientLedger(tx.Client)
			ledgers[tx.Client] = ledger
		}
		ledger.Apply(tx)
	}

	logger.Debug("worker drained", "worker", id, "clients", len(ledgers))
	return ledgers
}
