// Package engine is the playback boundary: it turns a PCM stream into audio
// in a voice channel and reports when the stream ends. Queue order is not its
// business; the queue layer decides what plays next.
package engine

import (
	"context"
	"io"
	"time"
)

// Track is the displayable metadata of a playable stream. Every field is
// optional; a zero Duration means live/unbounded.
type Track struct {
	Title     string
	SourceURL string
	Duration  time.Duration
	Thumbnail string
}

// DisplayTitle is the fallback chain used anywhere a track is shown to users.
func (t Track) DisplayTitle() string {
	switch {
	case t.Title != "":
		return t.Title
	case t.SourceURL != "":
		return t.SourceURL
	default:
		return "Unknown track"
	}
}

// Stream is one playable audio source. Open returns 48kHz signed 16-bit
// little-endian stereo PCM.
type Stream interface {
	Track() Track
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Event signals that the current stream finished, whether it ran out of
// audio, failed, or was stopped.
type Event struct {
	Err error
}

// Handle is the per-guild playback handle. Play starts at most one stream at
// a time; callers must wait for the ended Event before starting the next.
type Handle interface {
	Play(st Stream) error
	Pause() error
	Resume() error
	// StopCurrent aborts the playing stream. The ended Event is still
	// emitted, so stop/skip flow through the same completion path.
	StopCurrent()
	// Events delivers exactly one Event per started stream, in order.
	// The channel closes after Close.
	Events() <-chan Event
	Close()
}

// Engine attaches playback handles to voice channels.
type Engine interface {
	Join(ctx context.Context, guildID, channelID string) (Handle, error)
}
