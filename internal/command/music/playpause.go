package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"skipjack/internal/core"
)

// PlayPauseCommand covers both /pause and /resume; the two differ only in the
// engine call and the acknowledgment line.
type PlayPauseCommand struct {
	deps   *Deps
	resume bool
}

func (c *PlayPauseCommand) Name() string {
	if c.resume {
		return "resume"
	}
	return "pause"
}

func (c *PlayPauseCommand) Description() string {
	if c.resume {
		return "Resume the paused track"
	}
	return "Pause the current track"
}

func (c *PlayPauseCommand) Group() string    { return groupName }
func (c *PlayPauseCommand) Category() string { return categoryName }

func (c *PlayPauseCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PlayPauseCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, i := slash.Session, slash.Event

	if err := core.Defer(s, i, true); err != nil {
		return err
	}

	sess, ok := c.deps.Sessions.Get(i.GuildID)
	if !ok {
		return core.EditResponse(s, i, notPlayingText)
	}

	var err error
	var content string
	if c.resume {
		err = sess.Queue.Resume()
		content = fmt.Sprintf("▶️ <@%s> resumed current track", i.Member.User.ID)
	} else {
		err = sess.Queue.Pause()
		content = fmt.Sprintf("⏸ <@%s> paused current track", i.Member.User.ID)
	}
	if err != nil {
		return core.EditResponse(s, i, notPlayingText)
	}
	return core.EditResponse(s, i, content)
}
