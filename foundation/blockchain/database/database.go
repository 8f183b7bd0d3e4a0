// Package database maintains the in-memory ledger of blocks and the buffer
// of transactions waiting to be sealed into the next block.
package database

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// ErrBrokenLink is returned by Verify when a block's previous hash does not
// match the hash of the block before it.
var ErrBrokenLink = errors.New("previous hash does not match parent block")

// =============================================================================

// Config represents the collaborators a chain needs.
type Config struct {
	Clock     Clock
	Peers     *peer.PeerSet
	EvHandler func(v string, args ...any)
}

// Chain owns the ordered sequence of blocks and the pending transactions.
// A Chain is not safe for concurrent use; callers sharing one must provide
// their own synchronization.
type Chain struct {
	clock     Clock
	evHandler func(v string, args ...any)
	peers     *peer.PeerSet

	blocks  []*Block
	pending []Tx
}

// New constructs a chain holding a sealed genesis block.
func New(cfg Config) *Chain {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}

	peers := cfg.Peers
	if peers == nil {
		peers = peer.NewPeerSet()
	}

	c := Chain{
		clock:     clock,
		evHandler: ev,
		peers:     peers,
	}

	// The genesis block has no transactions, no previous hash and no nonce.
	c.NewBlock("", "")

	return &c
}

// NewBlock seals every pending transaction into a new block and appends it
// to the chain. The previous hash and nonce are recorded as given.
func (c *Chain) NewBlock(previousHash string, nonce string) *Block {
	blk := Block{
		Index:        uint64(len(c.blocks)),
		Timestamp:    c.clock.Now(),
		Transactions: copyTxs(c.pending),
		PreviousHash: previousHash,
		Nonce:        nonce,
	}
	blk.Seal()

	c.evHandler("database: NewBlock: created block[%d]: txs[%d]: hash[%s]", blk.Index, len(blk.Transactions), blk.Hash)

	c.blocks = append(c.blocks, &blk)
	c.pending = []Tx{}

	return &blk
}

// SubmitTx adds a transaction to the pending buffer.
func (c *Chain) SubmitTx(tx Tx) {
	c.pending = append(c.pending, tx)
}

// LastBlock returns the most recently appended block. The block is returned
// by pointer since a mining pass is allowed to rewrite its nonce and hash.
func (c *Chain) LastBlock() (*Block, bool) {
	if len(c.blocks) == 0 {
		return nil, false
	}

	return c.blocks[len(c.blocks)-1], true
}

// BlockByIndex returns the block stored at the specified position.
func (c *Chain) BlockByIndex(index uint64) (*Block, bool) {
	if index >= uint64(len(c.blocks)) {
		return nil, false
	}

	return c.blocks[index], true
}

// Length returns the number of blocks in the chain.
func (c *Chain) Length() int {
	return len(c.blocks)
}

// Blocks returns a copy of every block in chain order.
func (c *Chain) Blocks() []Block {
	blocks := make([]Block, len(c.blocks))
	for i, blk := range c.blocks {
		blocks[i] = blk.Copy()
	}

	return blocks
}

// Pending returns a copy of the transactions waiting for the next block.
func (c *Chain) Pending() []Tx {
	return copyTxs(c.pending)
}

// AddPeer records a host in the chain's peer set.
func (c *Chain) AddPeer(host string) bool {
	return c.peers.Add(peer.New(host))
}

// RemovePeer drops a host from the chain's peer set.
func (c *Chain) RemovePeer(host string) bool {
	return c.peers.Remove(peer.New(host))
}

// Peers returns the set of known hosts.
func (c *Chain) Peers() []peer.Peer {
	return c.peers.Copy("")
}

// Verify walks the chain and checks every block sits at its own index, still
// carries the hash of its content, and links to its parent. Genesis is the
// only block allowed to have no previous hash.
func (c *Chain) Verify() error {
	for i, blk := range c.blocks {
		if blk.Index != uint64(i) {
			return fmt.Errorf("block at position %d has index %d", i, blk.Index)
		}

		if err := blk.Verify(); err != nil {
			return err
		}

		if i == 0 {
			continue
		}

		if parent := c.blocks[i-1]; blk.PreviousHash != parent.Hash {
			return fmt.Errorf("block[%d]: got %q, exp %q: %w", blk.Index, blk.PreviousHash, parent.Hash, ErrBrokenLink)
		}
	}

	return nil
}
