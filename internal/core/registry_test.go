package core

import "testing"

type stubCommand struct {
	name string
	tag  string
}

func (c *stubCommand) Name() string          { return c.name }
func (c *stubCommand) Description() string   { return c.name }
func (c *stubCommand) Group() string         { return "test" }
func (c *stubCommand) Category() string      { return "test" }
func (c *stubCommand) Run(interface{}) error { return nil }

func resetRegistry() {
	registry = map[string]Command{}
}

func TestRegisterAndLookup(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	RegisterCommand(&stubCommand{name: "skip"})

	if _, ok := GetCommand("skip"); !ok {
		t.Fatal("registered command not found")
	}
	if _, ok := GetCommand("nope"); ok {
		t.Fatal("lookup of unregistered name succeeded")
	}
}

func TestLaterRegistrationWins(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	RegisterCommand(&stubCommand{name: "skip", tag: "old"})
	RegisterCommand(&stubCommand{name: "skip", tag: "new"})

	cmd, _ := GetCommand("skip")
	if cmd.(*stubCommand).tag != "new" {
		t.Fatal("earlier registration survived")
	}
	if got := len(AllCommands()); got != 1 {
		t.Fatalf("AllCommands len = %d, want 1", got)
	}
}

func TestAllCommandsSortedByName(t *testing.T) {
	resetRegistry()
	defer resetRegistry()

	for _, name := range []string{"stop", "join", "queue", "leave"} {
		RegisterCommand(&stubCommand{name: name})
	}

	want := []string{"join", "leave", "queue", "stop"}
	got := AllCommands()
	if len(got) != len(want) {
		t.Fatalf("AllCommands len = %d, want %d", len(got), len(want))
	}
	for n, cmd := range got {
		if cmd.Name() != want[n] {
			t.Fatalf("position %d = %q, want %q", n, cmd.Name(), want[n])
		}
	}
}
