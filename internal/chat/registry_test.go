package chat

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestRegistry_InsertRejectsDuplicateAddress(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	addr := uuid.NewString()

	req.NoError(r.Insert(addr, NewMailbox(1)))
	req.ErrorIs(r.Insert(addr, NewMailbox(1)), ErrPeerExists)
	req.Equal(1, r.Len())
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	addr := uuid.NewString()
	req.NoError(r.Insert(addr, NewMailbox(1)))

	req.True(r.Remove(addr))
	req.False(r.Remove(addr))
	req.False(r.Remove(uuid.NewString()))
	req.Zero(r.Len())
}

func TestRegistry_RemoveIfOnlyMatchingMailbox(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	addr := uuid.NewString()
	stale := NewMailbox(1)
	current := NewMailbox(1)

	req.NoError(r.Insert(addr, current))
	req.False(r.RemoveIf(addr, stale))

	got, ok := r.Get(addr)
	req.True(ok)
	req.Same(current, got)

	req.True(r.RemoveIf(addr, current))
	_, ok = r.Get(addr)
	req.False(ok)
}

func TestRegistry_SnapshotListsEveryEntry(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	addrs := lo.Times(100, func(int) string { return uuid.NewString() })
	for _, addr := range addrs {
		req.NoError(r.Insert(addr, NewMailbox(1)))
	}

	snap := r.Snapshot()
	req.Len(snap, len(addrs))
	req.ElementsMatch(addrs, lo.Map(snap, func(e Entry, _ int) string { return e.Addr }))
}

func TestRegistry_ConcurrentJoinsAndLeaves(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	const peers = 200
	addrs := lo.Times(peers, func(int) string { return uuid.NewString() })

	var wg sync.WaitGroup
	for i, addr := range addrs {
		wg.Add(1)
		go func(i int, addr string) {
			defer wg.Done()
			if err := r.Insert(addr, NewMailbox(1)); err != nil {
				t.Errorf("insert %s: %v", addr, err)
				return
			}
			// Every third peer leaves again, some of them twice.
			if i%3 == 0 {
				r.Remove(addr)
				r.Remove(addr)
			}
			_ = r.Snapshot()
		}(i, addr)
	}
	wg.Wait()

	left := lo.Filter(addrs, func(_ string, i int) bool { return i%3 == 0 })
	req.Equal(peers-len(left), r.Len())

	snap := lo.Map(r.Snapshot(), func(e Entry, _ int) string { return e.Addr })
	req.Len(lo.Uniq(snap), len(snap))
	req.ElementsMatch(lo.Without(addrs, left...), snap)
}
