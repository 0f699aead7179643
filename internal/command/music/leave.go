package music

import (
	"errors"

	"github.com/bwmarrin/discordgo"

	"skipjack/internal/core"
	"skipjack/internal/session"
)

// LeaveCommand detaches the bot, dropping the queue and any running vote's
// effect with it. Safe to repeat.
type LeaveCommand struct {
	deps *Deps
}

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Leave the voice channel" }
func (c *LeaveCommand) Group() string       { return groupName }
func (c *LeaveCommand) Category() string    { return categoryName }

func (c *LeaveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *LeaveCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, i := slash.Session, slash.Event

	if err := core.Defer(s, i, true); err != nil {
		return err
	}

	if err := c.deps.Sessions.Destroy(i.GuildID); err != nil {
		if errors.Is(err, session.ErrNotJoined) {
			return core.EditResponse(s, i, "Not in a voice channel")
		}
		return err
	}
	return core.EditResponse(s, i, "Left voice channel")
}
