package discord

import (
	"github.com/bwmarrin/discordgo"

	"skipjack/internal/vote"
)

// Members answers voice channel membership questions from gateway state,
// falling back to the REST API when the state cache misses.
type Members struct {
	dg *discordgo.Session
}

func NewMembers(dg *discordgo.Session) *Members {
	return &Members{dg: dg}
}

// UserVoiceChannel returns the voice channel the user currently occupies in
// the guild, or "" when they are not in one.
func (m *Members) UserVoiceChannel(guildID, userID string) string {
	g, err := m.dg.State.Guild(guildID)
	if err != nil {
		g, err = m.dg.Guild(guildID)
		if err != nil {
			return ""
		}
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}

// ChannelVoters lists the non-bot occupants of a voice channel as vote
// participants. The caller snapshots this at vote start; later joins or
// leaves do not change eligibility.
func (m *Members) ChannelVoters(guildID, channelID string) []vote.Voter {
	g, err := m.dg.State.Guild(guildID)
	if err != nil {
		g, err = m.dg.Guild(guildID)
		if err != nil {
			return nil
		}
	}

	var voters []vote.Voter
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		name, bot := m.userInfo(guildID, vs.UserID)
		if bot {
			continue
		}
		voters = append(voters, vote.Voter{ID: vs.UserID, Name: name})
	}
	return voters
}

func (m *Members) userInfo(guildID, userID string) (name string, bot bool) {
	if member, err := m.dg.State.Member(guildID, userID); err == nil && member.User != nil {
		return displayName(member), member.User.Bot
	}
	if member, err := m.dg.GuildMember(guildID, userID); err == nil && member.User != nil {
		return displayName(member), member.User.Bot
	}
	return userID, false
}

func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	return member.User.Username
}
