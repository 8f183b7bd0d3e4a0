package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/miner"
)

// Set of error variables for block processing.
var (
	ErrNoTransactions = errors.New("no pending transactions")
	ErrBlockNotFound  = errors.New("block not found")
)

// =============================================================================

// NewBlock seals the pending transactions into a new block using the
// previous hash and nonce as given.
func (s *State) NewBlock(previousHash string, nonce string) database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	block := s.chain.NewBlock(previousHash, nonce).Copy()
	s.recordSealed(block)

	return block
}

// SealPending seals the pending transactions into a new block linked to the
// current latest block.
func (s *State) SealPending() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, err := s.sealPending()
	if err != nil {
		return database.Block{}, err
	}

	return block.Copy(), nil
}

// SealAndMine seals the pending transactions into a new block linked to the
// current latest block and performs the proof of work on it. No other block
// can be appended between the two steps. When the search fails the block
// stays in the chain as sealed.
func (s *State) SealAndMine(ctx context.Context, difficulty uint) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, err := s.sealPending()
	if err != nil {
		return database.Block{}, err
	}

	return s.mine(ctx, block, difficulty)
}

// MineLatest performs the proof of work search on the latest block.
func (s *State) MineLatest(ctx context.Context, difficulty uint) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mine(ctx, nil, difficulty)
}

// MineBlock performs the proof of work search on the block at the specified
// index. The block's nonce and hash are rewritten in place; blocks that link
// to it are not updated.
func (s *State) MineBlock(ctx context.Context, index uint64, difficulty uint) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blk, exists := s.chain.BlockByIndex(index)
	if !exists {
		return database.Block{}, fmt.Errorf("index[%d]: %w", index, ErrBlockNotFound)
	}

	if last, _ := s.chain.LastBlock(); last != blk {
		s.evHandler("state: MineBlock: WARNING: mining historical block[%d]", index)
	}

	return s.mine(ctx, blk, difficulty)
}

// sealPending must be called with the lock held.
func (s *State) sealPending() (*database.Block, error) {
	if len(s.chain.Pending()) == 0 {
		return nil, ErrNoTransactions
	}

	var previousHash string
	if last, exists := s.chain.LastBlock(); exists {
		previousHash = last.Hash
	}

	block := s.chain.NewBlock(previousHash, "")
	s.recordSealed(block.Copy())

	return block, nil
}

// mine must be called with the lock held.
func (s *State) mine(ctx context.Context, blk *database.Block, difficulty uint) (database.Block, error) {
	s.mining.Store(true)
	defer s.mining.Store(false)

	sol, err := s.miner.Search(ctx, blk, difficulty)
	if err != nil {
		if errors.Is(err, miner.ErrNoBlock) {
			return database.Block{}, ErrBlockNotFound
		}
		return database.Block{}, err
	}

	s.recordMined(sol)

	return sol.Block.Copy(), nil
}
