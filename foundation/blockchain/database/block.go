package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
)

// TimestampLayout is the format a block timestamp takes inside the hashed
// text. It is always rendered in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// =============================================================================

// Block represents a group of transactions batched together. An empty
// PreviousHash or Nonce means the value is absent.
type Block struct {
	Index        uint64    `json:"index"`
	Timestamp    time.Time `json:"timestamp"`
	Transactions []Tx      `json:"transactions"`
	PreviousHash string    `json:"previous_hash,omitempty"`
	Nonce        string    `json:"nonce,omitempty"`
	Hash         string    `json:"hash"`
}

// canonicalBlock is the form of a block that is hashed. Fields are declared
// in lexicographic key order and that order must never change, since every
// hash already computed depends on it.
type canonicalBlock struct {
	Hash         *string       `json:"hash,omitempty"`
	Index        uint64        `json:"index"`
	Nonce        *string       `json:"nonce"`
	PreviousHash *string       `json:"previousHash,omitempty"`
	Timestamp    string        `json:"timestamp"`
	Transactions []canonicalTx `json:"transactions"`
}

// canonicalTx is the hashed form of a transaction. The hashed key set is
// limited to the block's own keys, so every transaction encodes as an empty
// object and only the number of transactions feeds the digest.
type canonicalTx struct{}

// Canonical returns the exact text that is hashed to produce the block's
// hash. The hash key always carries its unset value, which encodes as an
// omitted key.
func (b Block) Canonical() ([]byte, error) {
	return digest.Canonical(b.canonical())
}

// Digest returns the content hash for the block based on every field
// except Hash itself. The canonical form holds only strings, numbers and
// empty objects, so encoding it can't fail and an empty result is never
// returned in practice.
func (b Block) Digest() string {
	hash, err := digest.Hash(b.canonical())
	if err != nil {
		return ""
	}

	return hash
}

func (b Block) canonical() canonicalBlock {
	cb := canonicalBlock{
		Index:        b.Index,
		Timestamp:    b.Timestamp.UTC().Format(TimestampLayout),
		Transactions: make([]canonicalTx, len(b.Transactions)),
	}

	if b.Nonce != "" {
		nonce := b.Nonce
		cb.Nonce = &nonce
	}

	if b.PreviousHash != "" {
		prev := b.PreviousHash
		cb.PreviousHash = &prev
	}

	return cb
}

// Seal computes the block's hash from its current content. Pointer
// semantics are being used since the hash is being recorded.
func (b *Block) Seal() {
	b.Hash = b.Digest()
}

// Verify checks the recorded hash still matches the block's content.
func (b Block) Verify() error {
	if exp := b.Digest(); b.Hash != exp {
		return fmt.Errorf("block[%d] hash mismatch, got %s, exp %s", b.Index, b.Hash, exp)
	}

	return nil
}

// Copy returns a deep copy of the block so callers can't mutate the
// transactions held by the chain.
func (b Block) Copy() Block {
	b.Transactions = copyTxs(b.Transactions)
	return b
}
