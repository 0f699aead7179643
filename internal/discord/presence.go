package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// GatewayPresence is the single owner of the bot-wide presence line. All
// updates funnel through one goroutine, so concurrent guilds cannot interleave
// partial updates and the last write always wins.
type GatewayPresence struct {
	updates chan string
	done    chan struct{}
}

func NewPresence(dg *discordgo.Session, log zerolog.Logger) *GatewayPresence {
	p := &GatewayPresence{
		updates: make(chan string, 8),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		for title := range p.updates {
			if err := dg.UpdateListeningStatus(title); err != nil {
				log.Warn().Err(err).Msg("presence update failed")
			}
		}
	}()
	return p
}

func (p *GatewayPresence) Listening(title string) { p.send(title) }

func (p *GatewayPresence) Reset() { p.send("") }

func (p *GatewayPresence) send(title string) {
	// Drop on a full buffer rather than block a playback goroutine.
	select {
	case p.updates <- title:
	default:
	}
}

// Close stops the owner goroutine. Pending updates are flushed first.
func (p *GatewayPresence) Close() {
	close(p.updates)
	<-p.done
}
