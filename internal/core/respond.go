package core

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

const EmbedColor = 0x1e90b0

// Respond sends the single initial acknowledgment for an interaction.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
		},
	})
}

func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// Defer acknowledges the interaction with a "thinking…" placeholder so the
// handler can take its time and edit the response later.
func Defer(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	}); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}
	return nil
}

// EditResponse updates the original (deferred) response content.
func EditResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}

// EditResponseComplex updates the original response with embeds and components.
// Pass an empty non-nil components slice to strip existing buttons.
func EditResponseComplex(s *discordgo.Session, i *discordgo.InteractionCreate, edit *discordgo.WebhookEdit) (*discordgo.Message, error) {
	return s.InteractionResponseEdit(i.Interaction, edit)
}

func Followup(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}

// FormatDuration renders a track duration for display. A zero duration means
// the source is live or unbounded.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "Live"
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
