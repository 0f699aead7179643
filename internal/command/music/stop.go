package music

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"skipjack/internal/core"
	"skipjack/internal/vote"
)

// StopCommand asks for confirmation before purging the queue. The prompt is
// ephemeral; a silent confirmation window counts as a cancel.
type StopCommand struct {
	deps *Deps

	mu     sync.Mutex
	active map[string]*vote.Session // by guild
}

func NewStopCommand(d *Deps) *StopCommand {
	return &StopCommand{deps: d, active: make(map[string]*vote.Session)}
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback and purge the queue" }
func (c *StopCommand) Group() string       { return groupName }
func (c *StopCommand) Category() string    { return categoryName }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StopCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, i := slash.Session, slash.Event

	if err := core.Defer(s, i, true); err != nil {
		return err
	}

	if _, ok := c.deps.Sessions.Get(i.GuildID); !ok {
		return core.EditResponse(s, i, notPlayingText)
	}

	// Claim the guild slot before building the confirmation; a racing second
	// /stop bounces instead of overwriting it.
	if !c.reserve(i.GuildID) {
		return core.EditResponse(s, i, "A stop confirmation is already pending.")
	}

	v := vote.NewConfirm(c.deps.Cfg.StopConfirmWindow)
	c.publish(i.GuildID, v)

	content := "You are about to stop playback and purge the queue"
	if _, err := core.EditResponseComplex(s, i, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &[]discordgo.MessageComponent{stopButtons()},
	}); err != nil {
		c.release(i.GuildID)
		return err
	}

	go c.finish(s, i, v)
	return nil
}

// reserve claims the guild's confirmation slot; check and claim share one
// critical section.
func (c *StopCommand) reserve(guildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, pending := c.active[guildID]; pending {
		return false
	}
	c.active[guildID] = nil
	return true
}

func (c *StopCommand) publish(guildID string, v *vote.Session) {
	c.mu.Lock()
	c.active[guildID] = v
	c.mu.Unlock()
}

func (c *StopCommand) release(guildID string) {
	c.mu.Lock()
	delete(c.active, guildID)
	c.mu.Unlock()
}

func (c *StopCommand) finish(s *discordgo.Session, i *discordgo.InteractionCreate, v *vote.Session) {
	<-v.Done()

	c.release(i.GuildID)

	outcome := v.Outcome()
	c.deps.countVote(outcome.String())

	content := "Canceled"
	if outcome == vote.OutcomeApproved {
		content = "Acknowledged"
		if sess, ok := c.deps.Sessions.Get(i.GuildID); ok {
			_ = sess.Queue.Stop()
		}
		// Everyone else learns about the purge from a public message.
		announce := fmt.Sprintf("⏹ <@%s> stopped and cleared queue", i.Member.User.ID)
		if _, err := s.ChannelMessageSend(i.ChannelID, announce); err != nil {
			c.deps.Log.Warn().Err(err).Str("guild", i.GuildID).Msg("failed to announce stop")
		}
	}

	if _, err := core.EditResponseComplex(s, i, &discordgo.WebhookEdit{
		Content:    &content,
		Components: &[]discordgo.MessageComponent{},
	}); err != nil {
		c.deps.Log.Warn().Err(err).Str("guild", i.GuildID).Msg("failed to close stop prompt")
	}
}

// Component resolves the confirmation on the first button press.
func (c *StopCommand) Component(ctx *core.ComponentContext) error {
	s, i := ctx.Session, ctx.Event

	c.mu.Lock()
	v := c.active[i.GuildID]
	c.mu.Unlock()
	if v == nil {
		// No confirmation, or one still being set up.
		return deferUpdate(s, i)
	}

	choice := vote.ChoiceReject
	if strings.HasSuffix(i.MessageComponentData().CustomID, ":proceed") {
		choice = vote.ChoiceApprove
	}

	voter := vote.Voter{ID: i.Member.User.ID, Name: i.Member.User.Username}
	v.Cast(voter, choice)
	return deferUpdate(s, i)
}

func stopButtons() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Cancel", Style: discordgo.DangerButton, CustomID: "stop:cancel"},
			discordgo.Button{Label: "Proceed", Style: discordgo.PrimaryButton, CustomID: "stop:proceed"},
		},
	}
}
