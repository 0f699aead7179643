package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"skipjack/internal/core"
)

const listLimit = 10

// ListCommand shows the queue to the requester only.
type ListCommand struct {
	deps *Deps
}

func (c *ListCommand) Name() string        { return "list" }
func (c *ListCommand) Description() string { return "List the queued tracks" }
func (c *ListCommand) Group() string       { return groupName }
func (c *ListCommand) Category() string    { return categoryName }

func (c *ListCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ListCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, i := slash.Session, slash.Event

	sess, ok := c.deps.Sessions.Get(i.GuildID)
	if !ok {
		return core.RespondEphemeral(s, i, notPlayingText)
	}

	tracks := sess.Queue.List()
	shown := tracks
	if len(shown) > listLimit {
		shown = shown[:listLimit]
	}

	embeds := make([]*discordgo.MessageEmbed, 0, len(shown))
	for _, t := range shown {
		e := embed.NewEmbed().
			SetColor(core.EmbedColor).
			AddField("Title", t.DisplayTitle())
		if t.SourceURL != "" {
			e.AddField("URL", t.SourceURL)
		}
		e.AddField("Duration", core.FormatDuration(t.Duration))
		if t.Thumbnail != "" {
			e.SetThumbnail(t.Thumbnail)
		}
		embeds = append(embeds, e.MessageEmbed)
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: fmt.Sprintf("**%d track(s) in queue**\n%d first tracks:", len(tracks), len(shown)),
			Embeds:  embeds,
		},
	})
}
