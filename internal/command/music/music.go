// Package music holds the playback slash commands: join, leave, queue, list,
// pause, resume, skip and stop.
package music

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"skipjack/internal/config"
	"skipjack/internal/core"
	"skipjack/internal/discord"
	"skipjack/internal/session"
)

const (
	groupName    = "music"
	categoryName = "🎵 Music"

	notPlayingText = "Not playing in a voice channel."
)

// enqueueTimeout bounds source resolution so a hung fetch cannot pin an
// interaction forever.
const enqueueTimeout = 30 * time.Second

// Deps is everything the music commands share.
type Deps struct {
	Sessions *session.Registry
	Members  *discord.Members
	Presence session.Presence
	Cfg      *config.Config
	Log      zerolog.Logger

	// OnVote, when set, is called with the outcome label of every resolved
	// vote (feeds the votes counter).
	OnVote func(outcome string)
}

// RegisterAll wires the music commands into the registry, each wrapped in the
// given middleware chain.
func RegisterAll(d *Deps, mws ...core.Middleware) {
	for _, cmd := range []core.Command{
		&JoinCommand{deps: d},
		&LeaveCommand{deps: d},
		&QueueCommand{deps: d},
		&ListCommand{deps: d},
		&PlayPauseCommand{deps: d, resume: false},
		&PlayPauseCommand{deps: d, resume: true},
		NewSkipCommand(d),
		NewStopCommand(d),
	} {
		core.RegisterCommand(core.ApplyMiddlewares(cmd, mws...))
	}
}

func (d *Deps) countVote(outcome string) {
	if d.OnVote != nil {
		d.OnVote(outcome)
	}
}

func enqueueContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), enqueueTimeout)
}
