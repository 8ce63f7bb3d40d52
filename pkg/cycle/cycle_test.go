package cycle

import (
	"context"
	goSync "sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/dirsync/pkg/hash"
	"github.com/sidkik/dirsync/pkg/sync"
)

type pass struct {
	from, to string
	mode     sync.Mode
}

type mockSyncer struct {
	lock   goSync.Mutex
	passes []pass
}

func (s *mockSyncer) Sync(from, to string, mode sync.Mode) sync.Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.passes = append(s.passes, pass{from, to, mode})
	return sync.Stats{Created: 1}
}

func (s *mockSyncer) getPasses() []pass {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]pass{}, s.passes...)
}

func TestRunOnce(t *testing.T) {
	logger, _ := test.NewNullLogger()
	syncer := &mockSyncer{}
	runner := Runner{
		Source:  "/src",
		Replica: "/replica",
		Syncer:  syncer,
		Log:     logger,
	}

	assert.Equal(t, sync.Stats{Created: 2}, runner.RunOnce())
	assert.Equal(t, []pass{
		{"/src", "/replica", sync.Mirror},
		{"/replica", "/src", sync.Purge},
	}, syncer.getPasses())
}

func TestRun(t *testing.T) {
	logger, _ := test.NewNullLogger()
	clock := clockwork.NewFakeClock()
	syncer := &mockSyncer{}
	runner := Runner{
		Source:   "/src",
		Replica:  "/replica",
		Interval: 10 * time.Second,
		Syncer:   syncer,
		Clock:    clock,
		Log:      logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- runner.Run(ctx)
	}()

	// The first cycle runs immediately.
	clock.BlockUntil(1)
	assert.Len(t, syncer.getPasses(), 2)

	// The next cycle doesn't start until the interval has passed.
	clock.Advance(9 * time.Second)
	assert.Len(t, syncer.getPasses(), 2)

	clock.Advance(time.Second)
	clock.BlockUntil(1)
	assert.Len(t, syncer.getPasses(), 4)

	cancel()
	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run didn't return after cancellation")
	}
	assert.Len(t, syncer.getPasses(), 4)
}

func TestRunWithSynchronizer(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src/sub", 0755))
	require.NoError(t, fs.MkdirAll("/replica/stale", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/sub/b.txt", []byte("world"), 0644))

	logger, hook := test.NewNullLogger()
	runner := Runner{
		Source:  "/src",
		Replica: "/replica",
		Syncer:  sync.New(fs, hash.New(fs, hash.SHA256), logger),
		Log:     logger,
	}

	assert.Equal(t, sync.Stats{Created: 2, Deleted: 1}, runner.RunOnce())
	assert.Len(t, hook.AllEntries(), 3)

	hook.Reset()
	assert.Equal(t, sync.Stats{}, runner.RunOnce())
	assert.Empty(t, hook.AllEntries())
}
