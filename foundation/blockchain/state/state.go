// Package state is the core API for the ledger node. It owns the chain and
// the miner and serializes every operation against them, since neither is
// safe for concurrent use on its own.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/miner"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing background sealing and mining for the node.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// Recorder interface represents the behavior required to be implemented by
// any package collecting measurements about blocks.
type Recorder interface {
	BlockSealed(block database.Block)
	BlockMined(block database.Block, attempts uint64, duration time.Duration)
}

// =============================================================================

// Config represents the configuration required to start the node.
type Config struct {
	Host        string
	Difficulty  uint
	MaxAttempts uint64
	Clock       database.Clock
	KnownPeers  *peer.PeerSet
	Recorder    Recorder
	EvHandler   EventHandler
}

// State manages the ledger for the node.
type State struct {
	mu     sync.Mutex
	mining atomic.Bool

	host       string
	difficulty uint
	evHandler  EventHandler
	recorder   Recorder

	knownPeers *peer.PeerSet
	chain      *database.Chain
	miner      *miner.Miner

	Worker Worker
}

// New constructs a new state holding a chain with a sealed genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	chain := database.New(database.Config{
		Clock:     cfg.Clock,
		Peers:     knownPeers,
		EvHandler: ev,
	})

	mnr := miner.New(miner.Config{
		Chain:       chain,
		MaxAttempts: cfg.MaxAttempts,
		EvHandler:   ev,
	})

	state := State{
		host:       cfg.Host,
		difficulty: cfg.Difficulty,
		evHandler:  ev,
		recorder:   cfg.Recorder,

		knownPeers: knownPeers,
		chain:      chain,
		miner:      mnr,
	}

	if genesis, exists := chain.LastBlock(); exists {
		state.recordSealed(*genesis)
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all background sealing and mining.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

func (s *State) recordSealed(block database.Block) {
	if s.recorder != nil {
		s.recorder.BlockSealed(block)
	}
}

func (s *State) recordMined(sol miner.Solution) {
	if s.recorder != nil {
		s.recorder.BlockMined(sol.Block.Copy(), sol.Attempts, sol.Duration)
	}
}
