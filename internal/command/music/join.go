package music

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"skipjack/internal/core"
)

// JoinCommand attaches the bot to a voice channel. Joining a guild that
// already has a session is a no-op that reports the existing attachment.
type JoinCommand struct {
	deps *Deps
}

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Join a voice channel" }
func (c *JoinCommand) Group() string       { return groupName }
func (c *JoinCommand) Category() string    { return categoryName }

func (c *JoinCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Voice channel to join",
				Required:    true,
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildVoice,
				},
			},
		},
	}
}

func (c *JoinCommand) Run(ctx interface{}) error {
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
		return core.EditResponse(s, i, "Must provide a channel")
	}
	ch := opts[0].ChannelValue(s)
	if ch == nil || ch.Type != discordgo.ChannelTypeGuildVoice {
		return core.EditResponse(s, i, "Must be a voice channel")
	}

	_, created, err := c.deps.Sessions.Create(context.Background(), i.GuildID, ch.ID, i.ChannelID)
	if err != nil {
		c.deps.Log.Error().Err(err).Str("guild", i.GuildID).Msg("voice join failed")
		return core.EditResponse(s, i, "Error joining the channel")
	}
	if !created {
		c.deps.Log.Debug().Str("guild", i.GuildID).Msg("join on existing session")
	}

	return core.EditResponse(s, i, fmt.Sprintf("Joined <#%s>", ch.ID))
}
