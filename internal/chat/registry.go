package chat

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const registryShards = 32

// Entry is one registered peer as seen by a snapshot.
type Entry struct {
	Addr    string
	Mailbox *Mailbox
}

type shard struct {
	mu    sync.RWMutex
	peers map[string]*Mailbox
}

// Registry maps connection addresses to mailboxes. Entries are spread over
// independently locked shards so inserts, removals and snapshots from many
// sessions rarely contend.
type Registry struct {
	shards [registryShards]*shard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{peers: make(map[string]*Mailbox)}
	}
	return r
}

func (r *Registry) shardFor(addr string) *shard {
	return r.shards[xxhash.Sum64String(addr)%registryShards]
}

// Insert registers mb under addr. It fails with ErrPeerExists if addr is
// already present.
func (r *Registry) Insert(addr string, mb *Mailbox) error {
	s := r.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.peers[addr]; exists {
		return ErrPeerExists
	}
	s.peers[addr] = mb
	ConnectedPeers.Inc()
	return nil
}

// Remove deletes addr and reports whether an entry was present. Removing an
// absent address is a no-op.
func (r *Registry) Remove(addr string) bool {
	s := r.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.peers[addr]; !ok {
		return false
	}
	delete(s.peers, addr)
	ConnectedPeers.Dec()
	return true
}

// RemoveIf deletes addr only while it still maps to mb.
func (r *Registry) RemoveIf(addr string, mb *Mailbox) bool {
	s := r.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.peers[addr]; !ok || cur != mb {
		return false
	}
	delete(s.peers, addr)
	ConnectedPeers.Dec()
	return true
}

func (r *Registry) Get(addr string) (*Mailbox, bool) {
	s := r.shardFor(addr)
	s.mu.RLock()
	defer s.mu.RUnlock()

	mb, ok := s.peers[addr]
	return mb, ok
}

// Snapshot copies the current entries one shard at a time. Entries inserted or
// removed while it runs may or may not be included. Order is unspecified.
func (r *Registry) Snapshot() []Entry {
	entries := make([]Entry, 0, r.Len())
	for _, s := range r.shards {
		s.mu.RLock()
		for addr, mb := range s.peers {
			entries = append(entries, Entry{Addr: addr, Mailbox: mb})
		}
		s.mu.RUnlock()
	}
	return entries
}

func (r *Registry) Len() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.peers)
		s.mu.RUnlock()
	}
	return n
}
