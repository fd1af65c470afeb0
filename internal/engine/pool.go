package engine

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/example/payments-engine/internal/model"
)

// queueCapacity bounds each worker's inbound queue. A full queue blocks the
// router, trading throughput for bounded memory under backlog.
const queueCapacity = 1024

// PartitionCollisionError reports a client id that surfaced in more than one
// worker's final map. The partition function makes this unreachable; seeing
// one means the router is broken.
type PartitionCollisionError struct {
	Client uint16
}

func (e *PartitionCollisionError) Error() string {
	return fmt.Sprintf("partition invariant violated: client %d owned by multiple workers", e.Client)
}

// Pool supervises a fixed set of workers over one run: spawn, route, drain,
// join, merge.
type Pool struct {
	workers int
	logger  *slog.Logger
}

// NewPool creates a supervisor for the given worker count.
func NewPool(workers int, logger *slog.Logger) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", workers)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{workers: workers, logger: logger}, nil
}

// Run drives the source through the router and returns the merged final
// ledgers. On any fatal condition (decode failure, worker panic, partition
// collision) it returns an error and no result; partial output is never
// produced.
func (p *Pool) Run(src Source) (map[uint16]*ClientLedger, error) {
	queues := make([]chan model.Transaction, p.workers)
	results := make([]map[uint16]*ClientLedger, p.workers)

	var group errgroup.Group
	for i := range queues {
		i := i // capture per-iteration; this module builds with pre-1.22 loopvar semantics
		queues[i] = make(chan model.Transaction, queueCapacity)

		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker %d panicked: %v", i, r)
					// Keep draining so the router never wedges on a full
					// queue whose consumer is gone.
					for range queues[i] {
					}
				}
			}()
			results[i] = runWorker(i, queues[i], p.logger)
			return nil
		})
	}

	routeErr := route(src, queues)

	// Shutdown only after the entire input has been routed: closing the
	// queues lets every worker finish whatever is still buffered before it
	// returns its map.
	for _, queue := range queues {
		close(queue)
	}

	workerErr := group.Wait()
	if routeErr != nil {
		return nil, routeErr
	}
	if workerErr != nil {
		return nil, workerErr
	}

	return mergeLedgers(results)
}

// mergeLedgers folds the per-worker maps into one result set. Partitioning is
// injective per client id, so the union must be disjoint; a duplicate is a
// fatal invariant violation rather than a silent overwrite.
func mergeLedgers(results []map[uint16]*ClientLedger) (map[uint16]*ClientLedger, error) {
	merged := make(map[uint16]*ClientLedger)

	for _, ledgers := range results {
		for client, ledger := range ledgers {
			if _, exists := merged[client]; exists {
				return nil, &PartitionCollisionError{Client: client}
			}
			merged[client] = ledger
		}
	}

	return merged, nil
}
