// Package session ties a guild to its voice attachment: one playback handle,
// one track queue, and the goroutine that reacts to track-finished events.
package session

import (
	"github.com/rs/zerolog"

	"skipjack/internal/music/engine"
	"skipjack/internal/music/queue"
)

// Notifier posts user-visible playback notifications. Delivery failures are
// the implementation's problem (logged, never escalated); playback state does
// not depend on them.
type Notifier interface {
	NowPlaying(channelID string, t engine.Track)
	QueueEmpty(channelID string)
}

// Presence owns the bot-wide presence line.
type Presence interface {
	Listening(title string)
	Reset()
}

type Session struct {
	GuildID        string
	VoiceChannelID string
	// TextChannelID is where the join command was issued; now-playing and
	// queue-empty notifications land there.
	TextChannelID string

	Queue *queue.Queue

	handle   engine.Handle
	notifier Notifier
	presence Presence
	log      zerolog.Logger
	done     chan struct{}
}

func newSession(guildID, voiceChannelID, textChannelID string, h engine.Handle, q *queue.Queue, n Notifier, p Presence, log zerolog.Logger) *Session {
	s := &Session{
		GuildID:        guildID,
		VoiceChannelID: voiceChannelID,
		TextChannelID:  textChannelID,
		Queue:          q,
		handle:         h,
		notifier:       n,
		presence:       p,
		log:            log,
		done:           make(chan struct{}),
	}
	go s.watch()
	return s
}

// watch consumes the engine's ended events in order and applies the pop
// under the queue lock. It exits when the handle closes.
func (s *Session) watch() {
	defer close(s.done)

	for ev := range s.handle.Events() {
		if ev.Err != nil {
			s.log.Warn().Err(ev.Err).Msg("track ended with error")
		}

		err := s.Queue.Advance(func(next engine.Track, ok bool) {
			if ok {
				s.presence.Listening(next.DisplayTitle())
				s.notifier.NowPlaying(s.TextChannelID, next)
				return
			}
			s.presence.Reset()
			s.notifier.QueueEmpty(s.TextChannelID)
		})
		if err != nil {
			s.log.Debug().Err(err).Msg("queue advance aborted")
		}
	}
}

// Close detaches from voice and waits for the watch loop to drain.
func (s *Session) Close() {
	s.handle.Close()
	<-s.done
	s.presence.Reset()
}
