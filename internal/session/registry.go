package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"skipjack/internal/music/engine"
	"skipjack/internal/music/queue"
)

var ErrNotJoined = errors.New("not joined to a voice channel")

// Registry guarantees at most one live session per guild.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	engine   engine.Engine
	resolver queue.StreamResolver
	notifier Notifier
	presence Presence
	log      zerolog.Logger

	// group collapses concurrent joins for the same guild: the losing
	// request observes the winner's session instead of creating a second.
	group singleflight.Group

	// onCount, when set, receives the live session count after every
	// create/destroy (feeds the metrics gauge).
	onCount func(n int)
}

func NewRegistry(eng engine.Engine, res queue.StreamResolver, n Notifier, p Presence, log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		engine:   eng,
		resolver: res,
		notifier: n,
		presence: p,
		log:      log,
	}
}

// OnCountChange installs the session-count hook.
func (r *Registry) OnCountChange(fn func(n int)) { r.onCount = fn }

// Create attaches the bot to the given voice channel, or returns the guild's
// existing session when one is already live. created reports which happened.
func (r *Registry) Create(ctx context.Context, guildID, voiceChannelID, textChannelID string) (s *Session, created bool, err error) {
	type result struct {
		sess    *Session
		created bool
	}

	v, err, _ := r.group.Do(guildID, func() (interface{}, error) {
		r.mu.RLock()
		existing, ok := r.sessions[guildID]
		r.mu.RUnlock()
		if ok {
			return result{sess: existing}, nil
		}

		h, err := r.engine.Join(ctx, guildID, voiceChannelID)
		if err != nil {
			return nil, err
		}

		q := queue.New(h, r.resolver)
		sess := newSession(guildID, voiceChannelID, textChannelID, h, q,
			r.notifier, r.presence, r.log.With().Str("guild", guildID).Logger())

		r.mu.Lock()
		r.sessions[guildID] = sess
		n := len(r.sessions)
		r.mu.Unlock()

		r.notifyCount(n)
		return result{sess: sess, created: true}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := v.(result)
	return res.sess, res.created, nil
}

// Get is a non-blocking lookup.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Destroy detaches and removes the guild's session. A second call (or a
// racing leave) gets ErrNotJoined, never a crash.
func (r *Registry) Destroy(guildID string) error {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if !ok {
		r.mu.Unlock()
		return ErrNotJoined
	}
	delete(r.sessions, guildID)
	n := len(r.sessions)
	r.mu.Unlock()

	s.Close()
	r.notifyCount(n)
	r.log.Info().Str("guild", guildID).Msg("session destroyed")
	return nil
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll tears down every session, for shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	r.notifyCount(0)
}

func (r *Registry) notifyCount(n int) {
	if r.onCount != nil {
		r.onCount(n)
	}
}
