// Package discord owns the gateway side: session lifecycle, slash command
// registration, and routing interactions into the command registry.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"skipjack/internal/config"
	"skipjack/internal/core"
)

type Bot struct {
	dg  *discordgo.Session
	cfg *config.Config
	log zerolog.Logger

	// onCommand, when set, is called once per dispatched slash command
	// (feeds the metrics counter).
	onCommand func(name string)
}

func New(cfg *config.Config, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &Bot{dg: dg, cfg: cfg, log: log}, nil
}

// Session exposes the underlying gateway session so the voice engine,
// notifier and presence can share it.
func (b *Bot) Session() *discordgo.Session { return b.dg }

func (b *Bot) OnCommand(fn func(name string)) { b.onCommand = fn }

// Run opens the gateway and blocks until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.log.Info().Msg("shutdown signal received, closing gateway")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if !b.cfg.InitSlashCommands {
		b.log.Info().Msg("slash command registration skipped")
	} else {
		for _, g := range r.Guilds {
			if err := b.registerCommands(g.ID); err != nil {
				b.log.Error().Err(err).Str("guild", g.ID).Msg("slash registration failed")
			}
		}
	}
	b.log.Info().Str("user", s.State.User.Username).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	b.log.Info().Str("guild", g.Guild.ID).Str("name", g.Guild.Name).Msg("joined guild")
	if err := b.registerCommands(g.Guild.ID); err != nil {
		b.log.Error().Err(err).Str("guild", g.Guild.ID).Msg("slash registration failed")
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.dispatchSlash(s, i)
	case discordgo.InteractionMessageComponent:
		b.dispatchComponent(s, i)
	}
}

// dispatchSlash guarantees exactly one initial acknowledgment: known commands
// own theirs, unknown names get the stock reply here.
func (b *Bot) dispatchSlash(s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name

	cmd, ok := core.GetCommand(name)
	if !ok {
		b.log.Warn().Str("command", name).Msg("unknown command")
		if err := core.RespondEphemeral(s, i, "not implemented :("); err != nil {
			b.log.Error().Err(err).Str("command", name).Msg("failed to acknowledge unknown command")
		}
		return
	}

	if b.onCommand != nil {
		b.onCommand(name)
	}

	if err := cmd.Run(&core.SlashContext{Session: s, Event: i}); err != nil {
		b.log.Error().Err(err).Str("command", name).Msg("command failed")
		// Best effort; the command may have acknowledged already.
		_ = core.RespondEphemeral(s, i, fmt.Sprintf("Error: %v", err))
	}
}

// dispatchComponent routes button presses by customID prefix, matching the
// owning command's name up to the first ':'.
func (b *Bot) dispatchComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	name, _, _ := strings.Cut(customID, ":")

	cmd, ok := core.GetCommand(name)
	if !ok {
		b.log.Warn().Str("custom_id", customID).Msg("no command for component")
		return
	}
	handler, ok := cmd.(core.ComponentHandler)
	if !ok {
		b.log.Warn().Str("command", name).Msg("command has no component handler")
		return
	}

	if err := handler.Component(&core.ComponentContext{Session: s, Event: i}); err != nil {
		b.log.Error().Err(err).Str("custom_id", customID).Msg("component handler failed")
	}
}

// registerCommands creates this bot's slash commands for one guild, paced
// under Discord's command-create rate limit.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return fmt.Errorf("failed to fetch self: %w", err)
		}
		appID = user.ID
	}

	limiter := rate.NewLimiter(rate.Every(time.Second/40), 1)
	for _, cmd := range core.AllCommands() {
		slash, ok := cmd.(core.SlashProvider)
		if !ok {
			continue
		}
		def := slash.SlashDefinition()
		if def == nil {
			continue
		}

		if err := limiter.Wait(context.Background()); err != nil {
			return err
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Str("command", def.Name).Msg("failed to create command")
			continue
		}
		b.log.Debug().Str("guild", guildID).Str("command", def.Name).Msg("command registered")
	}
	return nil
}
