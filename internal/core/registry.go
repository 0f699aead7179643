package core

import "sort"

var registry = map[string]Command{}

// RegisterCommand indexes a command under its name. Registering the same
// name twice keeps the later command, which lets tests swap one out.
func RegisterCommand(cmd Command) {
	registry[cmd.Name()] = cmd
}

// GetCommand looks up a command by slash name.
func GetCommand(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

// AllCommands returns every registered command sorted by name, so the paced
// slash registration loop walks them in a stable order.
func AllCommands() []Command {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]Command, 0, len(names))
	for _, name := range names {
		list = append(list, registry[name])
	}
	return list
}
