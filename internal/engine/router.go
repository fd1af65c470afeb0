package engine

import (
	"errors"
	"fmt"
	"io"

	"github.com/example/payments-engine/internal/model"
)

// Source is the ordered stream of transactions the router drives. Read
// returns io.EOF when the stream is exhausted; any other error is a fatal
// decode failure that aborts the run.
type Source interface {
	Read() (model.Transaction, error)
}

// partition maps a client id to its owning worker. The mapping is
// deterministic for the life of a run, so each client's ledger is only ever
// mutated by one worker.
func partition(client uint16, workers int) int {
	return int(client) % workers
}

// route consumes the source once, in order, delivering each transaction to
// its owning worker's queue. Amount positivity is not checked here; that is
// the ledger's soft validation, not a routing concern.
func route(src Source, queues []chan model.Transaction) error {
	workers := len(queues)

	for {
		tx, err := src.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode input: %w", err)
		}

		queues[partition(tx.Client, workers)] <- tx
	}
}
