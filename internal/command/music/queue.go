package music

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"skipjack/internal/core"
	"skipjack/internal/music/resolver"
)

// QueueCommand resolves a source URL and appends it to the guild queue,
// starting playback when the queue was idle.
type QueueCommand struct {
	deps *Deps
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Queue a track by URL" }
func (c *QueueCommand) Group() string       { return groupName }
func (c *QueueCommand) Category() string    { return categoryName }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "URL of a video or audio source",
				Required:    true,
			},
		},
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, i := slash.Session, slash.Event

	if err := core.Defer(s, i, true); err != nil {
		return err
	}

	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return core.EditResponse(s, i, "Must provide a URL to a video or audio")
	}
	url := opts[0].StringValue()

	sess, ok := c.deps.Sessions.Get(i.GuildID)
	if !ok {
		return core.EditResponse(s, i, "Not in a voice channel to play in")
	}

	rctx, cancel := enqueueContext()
	defer cancel()

	track, pos, err := sess.Queue.Enqueue(rctx, url)
	if err != nil {
		if errors.Is(err, resolver.ErrNotURL) {
			return core.EditResponse(s, i, "Must provide a valid URL")
		}
		c.deps.Log.Error().Err(err).Str("guild", i.GuildID).Str("url", url).Msg("enqueue failed")
		return core.EditResponse(s, i, "Error sourcing ffmpeg")
	}

	// Position 1 started playing right away, so presence follows immediately
	// instead of waiting for the next track-finished event.
	if pos == 1 {
		c.deps.Presence.Listening(track.DisplayTitle())
	}

	return core.EditResponse(s, i, fmt.Sprintf("Queued **%s** at position %d", track.DisplayTitle(), pos))
}
