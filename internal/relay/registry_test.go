package relay

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melodiia/voicerelay/internal/domain"
)

// fakeSink records delivered frames; shared by the registry, router and
// session tests.
type fakeSink struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (f *fakeSink) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("transport gone")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeSink) last(t *testing.T) Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.frames)
	env, err := DecodeEnvelope(f.frames[len(f.frames)-1])
	require.NoError(t, err)
	return env
}

func TestRegisterIsInsertIfAbsent(t *testing.T) {
	reg := NewRegistry()
	first, second := &fakeSink{}, &fakeSink{}

	require.True(t, reg.Register("band-42", "u1", first))
	require.False(t, reg.Register("band-42", "u1", second))

	// The original connection still holds the slot.
	sink, ok := reg.Lookup("band-42", "u1")
	require.True(t, ok)
	assert.Same(t, first, sink.(*fakeSink))
}

func TestDeregisterPrunesEmptyRooms(t *testing.T) {
	reg := NewRegistry()
	reg.Register("band-42", "u1", &fakeSink{})
	reg.Register("band-42", "u2", &fakeSink{})

	reg.Deregister("band-42", "u1")
	assert.Len(t, reg.rooms, 1)

	reg.Deregister("band-42", "u2")
	assert.Empty(t, reg.rooms, "empty room must not leak")

	// Deregistering a gone member or room is harmless.
	reg.Deregister("band-42", "u2")
	reg.Deregister("ghost-room", "u1")
}

func TestListOthersExcludesCaller(t *testing.T) {
	reg := NewRegistry()
	reg.Register("band-42", "u1", &fakeSink{})
	reg.Register("band-42", "u2", &fakeSink{})
	reg.Register("band-42", "u3", &fakeSink{})
	reg.Register("other", "u9", &fakeSink{})

	assert.ElementsMatch(t,
		[]domain.Identity{"u2", "u3"},
		reg.ListOthers("band-42", "u1"))
	assert.Empty(t, reg.ListOthers("other", "u9"))
	assert.Empty(t, reg.ListOthers("no-such-room", "u1"))
}

func TestPeersSnapshot(t *testing.T) {
	reg := NewRegistry()
	s2, s3 := &fakeSink{}, &fakeSink{}
	reg.Register("band-42", "u1", &fakeSink{})
	reg.Register("band-42", "u2", s2)
	reg.Register("band-42", "u3", s3)

	peers := reg.Peers("band-42", "u1")
	require.Len(t, peers, 2)
	for _, p := range peers {
		assert.NotEqual(t, domain.Identity("u1"), p.ID)
	}
}

func TestRegistryConcurrentChurn(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := domain.RoomID(fmt.Sprintf("room-%d", i%4))
			id := domain.Identity(fmt.Sprintf("u%d", i))
			for j := 0; j < 100; j++ {
				reg.Register(room, id, &fakeSink{})
				reg.ListOthers(room, id)
				reg.Peers(room, id)
				reg.Lookup(room, id)
				reg.Deregister(room, id)
			}
		}(i)
	}
	wg.Wait()
	assert.Empty(t, reg.rooms)
}
