package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// AddKnownPeer provides the ability to add a new peer. It reports false when
// the peer was already known.
func (s *State) AddKnownPeer(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := s.chain.AddPeer(host)
	if added {
		s.evHandler("state: AddKnownPeer: host[%s]", host)
	}

	return added
}

// RemoveKnownPeer removes a peer from the set of known peers. It reports
// false when the peer was not known.
func (s *State) RemoveKnownPeer(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.chain.RemovePeer(host)
	if removed {
		s.evHandler("state: RemoveKnownPeer: host[%s]", host)
	}

	return removed
}

// SubmitTransaction adds a new transaction to the pending buffer.
func (s *State) SubmitTransaction(tx database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: tx[%s]", tx)
	s.chain.SubmitTx(tx)
}
