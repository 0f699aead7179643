package core

import (
	"github.com/bwmarrin/discordgo"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Category() string
	Run(ctx interface{}) error
}

// SlashProvider - how this command is registered with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// ComponentHandler - hook for button/select interactions beyond Run.
type ComponentHandler interface {
	Component(*ComponentContext) error
}

// SlashContext is what the runtime hands a command on a slash interaction.
type SlashContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}

// ComponentContext is handed to ComponentHandler on a component interaction.
type ComponentContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
}
