// Package peer maintains the set of hosts this node knows about. A host is
// an opaque identity; no network behavior is implied.
package peer

import (
	"sort"
	"sync"
)

// Peer represents a known node identified by its host.
type Peer struct {
	Host string `json:"host"`
}

// New constructs a new peer value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this peer.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// =============================================================================

// PeerStatus represents information about the status of any given node.
type PeerStatus struct {
	Host             string `json:"host"`
	LatestBlockHash  string `json:"latest_block_hash"`
	LatestBlockIndex uint64 `json:"latest_block_index"`
	PendingTxs       int    `json:"pending_txs"`
	KnownPeers       []Peer `json:"known_peers"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known peers.
type PeerSet struct {
	mu  sync.RWMutex
	set map[Peer]struct{}
}

// NewPeerSet constructs a new set to manage peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{
		set: make(map[Peer]struct{}),
	}
}

// Add adds a new peer to the set. It reports false when the peer was
// already known.
func (ps *PeerSet) Add(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; exists {
		return false
	}

	ps.set[peer] = struct{}{}
	return true
}

// Remove removes a peer from the set. It reports false when the peer was
// not known.
func (ps *PeerSet) Remove(peer Peer) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, exists := ps.set[peer]; !exists {
		return false
	}

	delete(ps.set, peer)
	return true
}

// Len returns the number of known peers.
func (ps *PeerSet) Len() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.set)
}

// Copy returns the known peers ordered by host, leaving out the specified
// host. Pass an empty host to get every peer.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	peers := make([]Peer, 0, len(ps.set))
	for peer := range ps.set {
		if host != "" && peer.Match(host) {
			continue
		}
		peers = append(peers, peer)
	}

	sort.Slice(peers, func(i, j int) bool {
		return peers[i].Host < peers[j].Host
	})

	return peers
}
