// Package queue owns the per-guild track order. The head of the queue is the
// track the engine is playing; everything behind it is pending. All reads and
// writes go through one mutex so commands and the playback-finished reaction
// never observe a half-mutated queue.
package queue

import (
	"context"
	"errors"
	"sync"

	"skipjack/internal/music/engine"
)

var ErrNothingPlaying = errors.New("no track is currently playing")

// StreamResolver turns a user-supplied source into a playable stream.
type StreamResolver interface {
	Resolve(ctx context.Context, input string) (engine.Stream, error)
}

type Queue struct {
	mu       sync.Mutex
	handle   engine.Handle
	resolver StreamResolver
	tracks   []engine.Stream
	playing  bool
}

func New(handle engine.Handle, resolver StreamResolver) *Queue {
	return &Queue{handle: handle, resolver: resolver}
}

// Enqueue resolves the source and appends it. If nothing is playing the new
// track starts immediately. On resolution failure the queue is untouched.
// The returned position is 1-based; position 1 is now playing.
func (q *Queue) Enqueue(ctx context.Context, input string) (engine.Track, int, error) {
	st, err := q.resolver.Resolve(ctx, input)
	if err != nil {
		return engine.Track{}, 0, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.tracks = append(q.tracks, st)
	pos := len(q.tracks)

	// Always start the head. It differs from st when a failed Play during
	// a previous Advance left the queue idle but non-empty.
	if !q.playing {
		if err := q.handle.Play(q.tracks[0]); err != nil {
			q.tracks = q.tracks[:len(q.tracks)-1]
			return engine.Track{}, 0, err
		}
		q.playing = true
	}

	return st.Track(), pos, nil
}

// List returns a snapshot of the queue including the now-playing head.
func (q *Queue) List() []engine.Track {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]engine.Track, len(q.tracks))
	for i, st := range q.tracks {
		out[i] = st.Track()
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// Current returns the now-playing track, if any.
func (q *Queue) Current() (engine.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.playing || len(q.tracks) == 0 {
		return engine.Track{}, false
	}
	return q.tracks[0].Track(), true
}

func (q *Queue) Pause() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.playing {
		return ErrNothingPlaying
	}
	return q.handle.Pause()
}

func (q *Queue) Resume() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.playing {
		return ErrNothingPlaying
	}
	return q.handle.Resume()
}

// Skip aborts the current track. The head is not popped here; the engine's
// ended event drives Advance, which pops and starts the next track.
func (q *Queue) Skip() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.playing {
		return ErrNothingPlaying
	}
	q.handle.StopCurrent()
	return nil
}

// Stop drops every pending track and aborts the current one, so the ended
// event finds an empty queue.
func (q *Queue) Stop() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.playing {
		return ErrNothingPlaying
	}
	q.tracks = q.tracks[:1]
	q.handle.StopCurrent()
	return nil
}

// Advance is the playback-finished reaction: pop the head, start the next
// track if there is one, and invoke react with the outcome. react runs under
// the queue mutex, so no later command can observe the post-pop queue before
// the reaction completed.
func (q *Queue) Advance(react func(next engine.Track, ok bool)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) > 0 {
		q.tracks = q.tracks[1:]
	}

	if len(q.tracks) == 0 {
		q.playing = false
		if react != nil {
			react(engine.Track{}, false)
		}
		return nil
	}

	next := q.tracks[0]
	if err := q.handle.Play(next); err != nil {
		q.playing = false
		return err
	}
	q.playing = true
	if react != nil {
		react(next.Track(), true)
	}
	return nil
}
