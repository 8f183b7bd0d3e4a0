package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryPendingLength returns the number of pending transactions.
func (s *State) QueryPendingLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.chain.Pending())
}

// QueryBlocksByNumber returns the set of blocks between the specified
// indexes, inclusive. Indexes past the end of the chain are clamped.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	length := uint64(s.chain.Length())
	if length == 0 {
		return nil
	}

	latest := length - 1
	if from == QueryLatest {
		from = latest
	}
	if to == QueryLatest || to > latest {
		to = latest
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		blk, exists := s.chain.BlockByIndex(i)
		if !exists {
			break
		}
		out = append(out, blk.Copy())
	}

	return out
}

// VerifyChain checks the hash and link invariants of every block.
func (s *State) VerifyChain() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Verify()
}
