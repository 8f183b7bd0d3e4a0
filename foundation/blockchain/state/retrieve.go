package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// IsMining reports whether a proof of work search is running. It does not
// wait on the state lock, so it is safe to call while a search holds it.
func (s *State) IsMining() bool {
	return s.mining.Load()
}

// RetrieveDifficulty returns the difficulty used when none is specified.
func (s *State) RetrieveDifficulty() uint {
	return s.difficulty
}

// RetrieveLatestBlock returns a copy of the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, exists := s.chain.LastBlock()
	if !exists {
		return database.Block{}
	}

	return last.Copy()
}

// RetrievePending returns a copy of the pending transactions.
func (s *State) RetrievePending() []database.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Pending()
}

// RetrieveKnownPeers retrieves a copy of the known peer list, leaving out
// this node.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// RetrieveStatus returns the information other nodes need about this node.
func (s *State) RetrieveStatus() peer.PeerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := peer.PeerStatus{
		Host:       s.host,
		PendingTxs: len(s.chain.Pending()),
		KnownPeers: s.knownPeers.Copy(s.host),
	}

	if last, exists := s.chain.LastBlock(); exists {
		status.LatestBlockHash = last.Hash
		status.LatestBlockIndex = last.Index
	}

	return status
}
