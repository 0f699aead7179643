package music

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"skipjack/internal/core"
	"skipjack/internal/vote"
)

// SkipCommand runs the public skip vote: the initiator counts as an approve,
// everyone else in the voice channel gets a time-boxed ballot. When nobody
// else is listening the track is skipped outright.
type SkipCommand struct {
	deps *Deps

	mu     sync.Mutex
	active map[string]*skipVote // by guild
}

type skipVote struct {
	session   *vote.Session
	initiator string
}

func NewSkipCommand(d *Deps) *SkipCommand {
	return &SkipCommand{deps: d, active: make(map[string]*skipVote)}
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Vote to skip the current track" }
func (c *SkipCommand) Group() string       { return groupName }
func (c *SkipCommand) Category() string    { return categoryName }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*core.SlashContext)
	if !ok {
		return nil
	}
	s, i := slash.Session, slash.Event

	// The vote tally is public by design.
	if err := core.Defer(s, i, false); err != nil {
		return err
	}

	sess, ok := c.deps.Sessions.Get(i.GuildID)
	if !ok {
		return core.EditResponse(s, i, notPlayingText)
	}

	// Claim the guild slot before building the vote, so a racing second
	// /skip bounces instead of overwriting this one's entry.
	if !c.reserve(i.GuildID) {
		return core.EditResponse(s, i, "A skip vote is already in progress.")
	}

	initiator := vote.Voter{ID: i.Member.User.ID, Name: i.Member.User.Username}
	eligible := c.deps.Members.ChannelVoters(i.GuildID, sess.VoiceChannelID)

	v := vote.New(initiator, eligible, c.deps.Cfg.SkipVoteWindow)
	if v.Resolved() {
		// Alone in the channel, no point collecting ballots.
		c.release(i.GuildID)
		c.deps.countVote(v.Outcome().String())
		_ = sess.Queue.Skip()
		return core.EditResponse(s, i, "⏭ Skipped current track")
	}

	sv := &skipVote{session: v, initiator: initiator.Name}
	c.publish(i.GuildID, sv)

	if _, err := core.EditResponseComplex(s, i, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{c.tallyEmbed(sv, v.Tally(), "")},
		Components: &[]discordgo.MessageComponent{skipButtons()},
	}); err != nil {
		c.release(i.GuildID)
		return err
	}

	go c.finish(s, i, sv)
	return nil
}

// reserve claims the guild's vote slot. The check and the claim share one
// critical section; the caller must release (or publish into) the slot.
func (c *SkipCommand) reserve(guildID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, running := c.active[guildID]; running {
		return false
	}
	c.active[guildID] = nil
	return true
}

func (c *SkipCommand) publish(guildID string, sv *skipVote) {
	c.mu.Lock()
	c.active[guildID] = sv
	c.mu.Unlock()
}

func (c *SkipCommand) release(guildID string) {
	c.mu.Lock()
	delete(c.active, guildID)
	c.mu.Unlock()
}

// finish waits out the vote, closes the tally message and applies the result
// against the queue as it stands at resolution time.
func (c *SkipCommand) finish(s *discordgo.Session, i *discordgo.InteractionCreate, sv *skipVote) {
	<-sv.session.Done()

	c.release(i.GuildID)

	outcome := sv.session.Outcome()
	c.deps.countVote(outcome.String())

	content := "Vote to skip failed."
	if outcome == vote.OutcomeApproved {
		content = "Vote to skip succeeded\n⏭ Skipped current track"
		// The session may have ended mid-vote; a stale approve is a no-op.
		if sess, ok := c.deps.Sessions.Get(i.GuildID); ok {
			_ = sess.Queue.Skip()
		}
	}

	if _, err := core.EditResponseComplex(s, i, &discordgo.WebhookEdit{
		Embeds:     &[]*discordgo.MessageEmbed{c.tallyEmbed(sv, sv.session.Tally(), "Vote has ended.")},
		Components: &[]discordgo.MessageComponent{},
	}); err != nil {
		c.deps.Log.Warn().Err(err).Str("guild", i.GuildID).Msg("failed to close vote message")
	}
	if err := core.Followup(s, i, content); err != nil {
		c.deps.Log.Warn().Err(err).Str("guild", i.GuildID).Msg("failed to post vote outcome")
	}
}

// Component handles the Yep/Nope buttons. Accepted ballots republish the
// tally; ballots from outside the voice channel snapshot are acknowledged
// without effect.
func (c *SkipCommand) Component(ctx *core.ComponentContext) error {
	s, i := ctx.Session, ctx.Event

	c.mu.Lock()
	sv := c.active[i.GuildID]
	c.mu.Unlock()
	if sv == nil {
		// No vote, or one still being set up.
		return deferUpdate(s, i)
	}

	choice := vote.ChoiceReject
	if strings.HasSuffix(i.MessageComponentData().CustomID, ":yep") {
		choice = vote.ChoiceApprove
	}

	voter := vote.Voter{ID: i.Member.User.ID, Name: i.Member.User.Username}
	if !sv.session.Cast(voter, choice) {
		return deferUpdate(s, i)
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{c.tallyEmbed(sv, sv.session.Tally(), "")},
			Components: []discordgo.MessageComponent{skipButtons()},
		},
	})
}

func (c *SkipCommand) tallyEmbed(sv *skipVote, t vote.Tally, description string) *discordgo.MessageEmbed {
	if description == "" {
		description = fmt.Sprintf("You have %d seconds to vote.", int(c.deps.Cfg.SkipVoteWindow.Seconds()))
	}
	return embed.NewEmbed().
		SetColor(core.EmbedColor).
		SetTitle(fmt.Sprintf("%s wants to skip current track, who's with them?", sv.initiator)).
		SetDescription(description).
		AddField("Nope", nameList(t.Rejected)).
		AddField("Yep", nameList(t.Approved)).
		InlineAllFields().
		MessageEmbed
}

func nameList(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, "\n")
}

func skipButtons() discordgo.MessageComponent {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Nope", Style: discordgo.DangerButton, CustomID: "skip:nope"},
			discordgo.Button{Label: "Yep", Style: discordgo.PrimaryButton, CustomID: "skip:yep"},
		},
	}
}

func deferUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
}
