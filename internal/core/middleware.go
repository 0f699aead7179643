package core

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type Middleware func(Command) Command

type WrappedCommand struct {
	Command
	Wrap func(ctx interface{}) error
}

func (w *WrappedCommand) Run(ctx interface{}) error {
	if w.Wrap != nil {
		return w.Wrap(ctx)
	}
	return w.Command.Run(ctx)
}

func (w *WrappedCommand) Component(ctx *ComponentContext) error {
	if ch, ok := w.Command.(ComponentHandler); ok {
		return ch.Component(ctx)
	}
	return nil
}

func (w *WrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func ApplyMiddlewares(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}

// WithGuildOnly rejects slash use outside a guild (DMs have no voice state).
func WithGuildOnly() Middleware {
	return func(next Command) Command {
		return &WrappedCommand{
			Command: next,
			Wrap: func(ctx interface{}) error {
				if slash, ok := ctx.(*SlashContext); ok {
					if slash.Event.GuildID == "" {
						return RespondEphemeral(slash.Session, slash.Event, "This command only works on a server.")
					}
				}
				return next.Run(ctx)
			},
		}
	}
}

// CommandRecorder persists a command-use record; implemented by the storage layer.
type CommandRecorder interface {
	RecordCommand(guildID, userID, username, command string) error
}

// WithCommandLog records every invocation to the logger and the audit store.
func WithCommandLog(log zerolog.Logger, rec CommandRecorder) Middleware {
	return func(next Command) Command {
		return &WrappedCommand{
			Command: next,
			Wrap: func(ctx interface{}) error {
				if slash, ok := ctx.(*SlashContext); ok && slash.Event.Member != nil {
					user := slash.Event.Member.User
					log.Info().
						Str("command", next.Name()).
						Str("guild", slash.Event.GuildID).
						Str("user", user.Username).
						Msg("command invoked")
					if rec != nil {
						if err := rec.RecordCommand(slash.Event.GuildID, user.ID, user.Username, next.Name()); err != nil {
							log.Warn().Err(err).Msg("failed to record command use")
						}
					}
				}
				return next.Run(ctx)
			},
		}
	}
}
