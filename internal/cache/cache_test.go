package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/breachwatch/breachwatch/internal/model"
)

// fakeClock is a controllable time source for TTL tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func envelopeAt(ts time.Time) model.Envelope {
	env := model.NewEnvelope()
	env.Meta.Timestamp = ts
	return env
}

func TestGet_EmptyCacheMisses(t *testing.T) {
	c := New(time.Hour, nil)
	if _, ok := c.Get(); ok {
		t.Error("Get on empty cache = hit, want miss")
	}
}

func TestGet_WithinTTLHits(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New(time.Hour, clock.Now)

	want := envelopeAt(clock.Now())
	c.Put(want)

	clock.Advance(59 * time.Minute)
	got, ok := c.Get()
	if !ok {
		t.Fatal("Get within TTL = miss, want hit")
	}
	if !got.Meta.Timestamp.Equal(want.Meta.Timestamp) {
		t.Errorf("cached timestamp = %v, want frozen %v", got.Meta.Timestamp, want.Meta.Timestamp)
	}
}

func TestGet_AtTTLBoundaryMisses(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New(time.Hour, clock.Now)
	c.Put(envelopeAt(clock.Now()))

	// now - fetchedAt >= TTL is stale, boundary included.
	clock.Advance(time.Hour)
	if _, ok := c.Get(); ok {
		t.Error("Get at exactly TTL = hit, want miss")
	}
}

func TestPut_OverwritesAndResetsClock(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New(time.Hour, clock.Now)

	c.Put(envelopeAt(clock.Now()))
	clock.Advance(50 * time.Minute)

	second := envelopeAt(clock.Now())
	c.Put(second)
	clock.Advance(50 * time.Minute)

	got, ok := c.Get()
	if !ok {
		t.Fatal("Get after overwrite = miss, want hit (fetchedAt must reset)")
	}
	if !got.Meta.Timestamp.Equal(second.Meta.Timestamp) {
		t.Errorf("got first envelope back, want the overwrite to win")
	}
}

func TestGetOrBuild_BuildsOnceWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New(time.Hour, clock.Now)

	var builds int32
	build := func() (model.Envelope, error) {
		atomic.AddInt32(&builds, 1)
		return envelopeAt(clock.Now()), nil
	}

	first, err := c.GetOrBuild(build)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	clock.Advance(10 * time.Minute)
	second, err := c.GetOrBuild(build)
	if err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}

	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("builds = %d, want 1", n)
	}
	if !first.Meta.Timestamp.Equal(second.Meta.Timestamp) {
		t.Error("second request within TTL returned a different envelope")
	}
}

func TestGetOrBuild_RebuildsAfterExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	c := New(time.Hour, clock.Now)

	var builds int32
	build := func() (model.Envelope, error) {
		atomic.AddInt32(&builds, 1)
		return envelopeAt(clock.Now()), nil
	}

	if _, err := c.GetOrBuild(build); err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}
	clock.Advance(time.Hour + time.Second)
	if _, err := c.GetOrBuild(build); err != nil {
		t.Fatalf("GetOrBuild: %v", err)
	}

	if n := atomic.LoadInt32(&builds); n != 2 {
		t.Errorf("builds = %d, want 2 after expiry", n)
	}
}

func TestGetOrBuild_ErrorNotCached(t *testing.T) {
	c := New(time.Hour, nil)

	boom := errors.New("session launch failed")
	if _, err := c.GetOrBuild(func() (model.Envelope, error) {
		return model.Envelope{}, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("GetOrBuild error = %v, want %v", err, boom)
	}

	if _, ok := c.Get(); ok {
		t.Error("failed build left an entry in the cache")
	}
}

func TestGetOrBuild_ConcurrentCallersShareOneBuild(t *testing.T) {
	c := New(time.Hour, nil)

	var builds int32
	release := make(chan struct{})
	build := func() (model.Envelope, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return model.NewEnvelope(), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.GetOrBuild(build)
		}(i)
	}

	// Give every caller time to reach the singleflight gate, then let
	// the one in-flight build finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("builds = %d, want exactly 1 shared rebuild", n)
	}
}
