package queue

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"skipjack/internal/music/engine"
)

type fakeStream struct {
	track engine.Track
}

func (f fakeStream) Track() engine.Track { return f.track }

func (f fakeStream) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type fakeResolver struct {
	err error
}

func (f fakeResolver) Resolve(_ context.Context, input string) (engine.Stream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return fakeStream{track: engine.Track{Title: input}}, nil
}

type fakeHandle struct {
	mu      sync.Mutex
	played  []string
	playErr error
	stops   int
	pauses  int
	resumes int
}

func (f *fakeHandle) Play(st engine.Stream) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.played = append(f.played, st.Track().Title)
	return nil
}

func (f *fakeHandle) Pause() error  { f.mu.Lock(); defer f.mu.Unlock(); f.pauses++; return nil }
func (f *fakeHandle) Resume() error { f.mu.Lock(); defer f.mu.Unlock(); f.resumes++; return nil }

func (f *fakeHandle) StopCurrent() { f.mu.Lock(); defer f.mu.Unlock(); f.stops++ }

func (f *fakeHandle) Events() <-chan engine.Event { return nil }
func (f *fakeHandle) Close()                      {}

func (f *fakeHandle) playedTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func TestEnqueueStartsIdleQueue(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{})

	track, pos, err := q.Enqueue(context.Background(), "first")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 1 || track.Title != "first" {
		t.Fatalf("got pos=%d title=%q", pos, track.Title)
	}
	if got := h.playedTitles(); len(got) != 1 || got[0] != "first" {
		t.Fatalf("played = %v, want [first]", got)
	}
}

func TestEnqueueKeepsArrivalOrder(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{})

	for n, in := range []string{"a", "b", "c"} {
		_, pos, err := q.Enqueue(context.Background(), in)
		if err != nil {
			t.Fatal(err)
		}
		if pos != n+1 {
			t.Fatalf("position = %d, want %d", pos, n+1)
		}
	}

	list := q.List()
	if len(list) != 3 || list[0].Title != "a" || list[1].Title != "b" || list[2].Title != "c" {
		t.Fatalf("list = %v", list)
	}
	// Only the head plays; b and c wait their turn.
	if got := h.playedTitles(); len(got) != 1 {
		t.Fatalf("played = %v, want just the head", got)
	}
}

func TestEnqueueResolveFailureLeavesQueueUntouched(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{err: errors.New("boom")})

	if _, _, err := q.Enqueue(context.Background(), "x"); err == nil {
		t.Fatal("expected resolve error")
	}
	if q.Len() != 0 {
		t.Fatalf("len = %d, want 0", q.Len())
	}
}

func TestAdvancePopsAndPlaysNext(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{})
	_, _, _ = q.Enqueue(context.Background(), "a")
	_, _, _ = q.Enqueue(context.Background(), "b")

	var next engine.Track
	var ok bool
	if err := q.Advance(func(n engine.Track, o bool) { next, ok = n, o }); err != nil {
		t.Fatal(err)
	}
	if !ok || next.Title != "b" {
		t.Fatalf("advance reacted with ok=%v title=%q", ok, next.Title)
	}
	if got := h.playedTitles(); len(got) != 2 || got[1] != "b" {
		t.Fatalf("played = %v", got)
	}

	if err := q.Advance(func(n engine.Track, o bool) { next, ok = n, o }); err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected empty-queue reaction")
	}
	if _, playing := q.Current(); playing {
		t.Fatal("queue still reports a current track")
	}
}

func TestEnqueueAfterFailedAdvancePlaysHead(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{})
	_, _, _ = q.Enqueue(context.Background(), "a")
	_, _, _ = q.Enqueue(context.Background(), "b")

	// Advance pops "a" but fails to start "b", leaving the queue idle with
	// "b" still at the head.
	h.playErr = errors.New("voice hiccup")
	if err := q.Advance(nil); err == nil {
		t.Fatal("expected play failure from advance")
	}
	h.playErr = nil

	_, pos, err := q.Enqueue(context.Background(), "c")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 2 {
		t.Fatalf("position = %d, want 2", pos)
	}
	// The restart picks up the stranded head, not the new arrival.
	if got := h.playedTitles(); got[len(got)-1] != "b" {
		t.Fatalf("played = %v, want b last", got)
	}
	if cur, ok := q.Current(); !ok || cur.Title != "b" {
		t.Fatalf("current = %+v ok=%v, want b", cur, ok)
	}
}

func TestStopPurgesPendingTracks(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{})
	_, _, _ = q.Enqueue(context.Background(), "a")
	_, _, _ = q.Enqueue(context.Background(), "b")
	_, _, _ = q.Enqueue(context.Background(), "c")

	if err := q.Stop(); err != nil {
		t.Fatal(err)
	}
	if h.stops != 1 {
		t.Fatalf("stops = %d, want 1", h.stops)
	}

	// The ended event fires Advance, which must find nothing left.
	var ok bool
	_ = q.Advance(func(_ engine.Track, o bool) { ok = o })
	if ok || q.Len() != 0 {
		t.Fatalf("queue not empty after stop: ok=%v len=%d", ok, q.Len())
	}
}

func TestSkipDoesNotPopDirectly(t *testing.T) {
	h := &fakeHandle{}
	q := New(h, fakeResolver{})
	_, _, _ = q.Enqueue(context.Background(), "a")
	_, _, _ = q.Enqueue(context.Background(), "b")

	if err := q.Skip(); err != nil {
		t.Fatal(err)
	}
	if h.stops != 1 {
		t.Fatalf("stops = %d, want 1", h.stops)
	}
	// The pop belongs to the ended-event path, not to the command.
	if q.Len() != 2 {
		t.Fatalf("len = %d, want 2 before the ended event", q.Len())
	}
}

func TestControlsRequirePlayback(t *testing.T) {
	q := New(&fakeHandle{}, fakeResolver{})

	for name, fn := range map[string]func() error{
		"pause":  q.Pause,
		"resume": q.Resume,
		"skip":   q.Skip,
		"stop":   q.Stop,
	} {
		if err := fn(); !errors.Is(err, ErrNothingPlaying) {
			t.Fatalf("%s: err = %v, want ErrNothingPlaying", name, err)
		}
	}
}
