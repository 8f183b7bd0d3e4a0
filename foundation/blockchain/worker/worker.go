// Package worker implements background sealing and mining for the node.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// =============================================================================

// Worker manages the sealing and POW workflows for the node.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	ticker       *time.Ticker
	timeout      time.Duration
	shut         chan struct{}
	startMining  chan bool
	cancelMining chan bool
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes. When sealInterval is positive the
// worker seals and mines pending transactions on that interval; otherwise it
// only acts when signaled. When miningTimeout is positive each search gives
// up after that long and leaves its block sealed but unmined.
func Run(st *state.State, sealInterval time.Duration, miningTimeout time.Duration, evHandler state.EventHandler) *Worker {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	w := Worker{
		state:        st,
		timeout:      miningTimeout,
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan bool, 1),
		evHandler:    ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	if sealInterval > 0 {
		w.ticker = time.NewTicker(sealInterval)
		operations = append(operations, w.sealOperations)
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	if w.ticker != nil {
		w.evHandler("worker: shutdown: stop ticker")
		w.ticker.Stop()
	}

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a sealing and mining operation. If there is
// already a signal pending in the channel, just return since an operation
// will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// sealOperations signals a mining operation on every tick.
func (w *Worker) sealOperations() {
	w.evHandler("worker: sealOperations: G started")
	defer w.evHandler("worker: sealOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() && w.state.QueryPendingLength() > 0 {
				w.SignalStartMining()
			}
		case <-w.shut:
			w.evHandler("worker: sealOperations: received shut signal")
			return
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
