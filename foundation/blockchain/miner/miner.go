// Package miner implements the proof of work search that perturbs a block's
// nonce until its hash has the required number of leading zeros.
package miner

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// DefaultDifficulty is the number of leading zero hex digits required when
// no difficulty is specified.
const DefaultDifficulty uint = 4

// nonceEntropy is the number of random bytes hashed into each nonce.
const nonceEntropy = 32

// reportEvery controls how often progress is logged during a search.
const reportEvery = 1_000_000

// Set of error variables for mining.
var (
	ErrAttemptsExhausted = errors.New("mining attempts exhausted")
	ErrNoBlock           = errors.New("no block to mine")
)

// =============================================================================

// Config represents the configuration for a miner.
type Config struct {
	Chain       *database.Chain
	MaxAttempts uint64
	EvHandler   func(v string, args ...any)
	Progress    func(attempts uint64)
}

// Miner searches for nonces on blocks held by a chain.
type Miner struct {
	chain       *database.Chain
	maxAttempts uint64
	evHandler   func(v string, args ...any)
	progress    func(attempts uint64)
}

// New constructs a miner. A zero MaxAttempts means the search runs until it
// succeeds or the context is cancelled.
func New(cfg Config) *Miner {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &Miner{
		chain:       cfg.Chain,
		maxAttempts: cfg.MaxAttempts,
		evHandler:   ev,
		progress:    cfg.Progress,
	}
}

// Solution describes the outcome of a successful search.
type Solution struct {
	Block    *database.Block
	Attempts uint64
	Duration time.Duration
}

// Mine searches for a nonce that makes the block's hash acceptable at the
// specified difficulty. When blk is nil the chain's latest block is mined.
// The block is modified in place and returned carrying the winning nonce
// and hash.
func (m *Miner) Mine(ctx context.Context, blk *database.Block, difficulty uint) (*database.Block, error) {
	sol, err := m.Search(ctx, blk, difficulty)
	if err != nil {
		return nil, err
	}

	return sol.Block, nil
}

// Search performs the same work as Mine but also reports how much work
// the search took.
func (m *Miner) Search(ctx context.Context, blk *database.Block, difficulty uint) (Solution, error) {
	if blk == nil {
		if m.chain == nil {
			return Solution{}, ErrNoBlock
		}

		last, exists := m.chain.LastBlock()
		if !exists {
			return Solution{}, ErrNoBlock
		}
		blk = last
	}

	m.evHandler("miner: Search: MINING: started: blk[%d]: difficulty[%d]", blk.Index, difficulty)
	defer m.evHandler("miner: Search: MINING: completed: blk[%d]", blk.Index)

	start := time.Now()

	// A failed search must leave the block as it found it.
	nonce, hash := blk.Nonce, blk.Hash
	restore := func() {
		blk.Nonce, blk.Hash = nonce, hash
	}

	var attempts uint64
	for {
		if ctx.Err() != nil {
			restore()
			m.evHandler("miner: Search: MINING: CANCELLED: attempts[%d]", attempts)
			return Solution{}, ctx.Err()
		}

		if m.maxAttempts > 0 && attempts >= m.maxAttempts {
			restore()
			m.evHandler("miner: Search: MINING: EXHAUSTED: attempts[%d]", attempts)
			return Solution{}, fmt.Errorf("blk[%d] after %d attempts: %w", blk.Index, attempts, ErrAttemptsExhausted)
		}

		candidate, err := GenerateNonce()
		if err != nil {
			restore()
			return Solution{}, err
		}

		attempts++
		if attempts%reportEvery == 0 {
			m.evHandler("miner: Search: MINING: attempts[%d]", attempts)
		}
		if m.progress != nil {
			m.progress(attempts)
		}

		blk.Nonce = candidate
		blk.Seal()

		if !IsAcceptable(blk.Hash, difficulty) {
			continue
		}

		m.evHandler("miner: Search: MINING: SOLVED: blk[%d]: hash[%s]: nonce[%s]", blk.Index, blk.Hash, blk.Nonce)
		m.evHandler("miner: Search: MINING: attempts[%d]", attempts)

		sol := Solution{
			Block:    blk,
			Attempts: attempts,
			Duration: time.Since(start),
		}

		return sol, nil
	}
}

// =============================================================================

// GenerateNonce produces a new nonce by hashing a fresh batch of
// cryptographically secure random bytes.
func GenerateNonce() (string, error) {
	entropy := make([]byte, nonceEntropy)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("reading entropy: %w", err)
	}

	return digest.Sum(entropy), nil
}

// IsAcceptable checks the hash begins with difficulty zero digits. A
// difficulty of zero accepts any hash.
func IsAcceptable(hash string, difficulty uint) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	return strings.Count(hash[:difficulty], "0") == int(difficulty)
}
