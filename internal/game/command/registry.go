package command

import "fmt"

// Command defines a player-invocable verb.
type Command struct {
	// Name is the canonical verb.
	Name string
	// Aliases are alternate spellings.
	Aliases []string
	// Help is the one-line help text.
	Help string
	// Category groups the verb for help output.
	Category string
	// Handler executes the verb.
	Handler HandlerFunc
}

// Verb categories for help output.
const (
	CategoryMovement    = "movement"
	CategoryObservation = "observation"
	CategoryInventory   = "inventory"
	CategoryEquipment   = "equipment"
	CategorySocial      = "social"
	CategoryNPC         = "npc"
	CategoryQuests      = "quests"
	CategoryCombat      = "combat"
	CategoryMeta        = "meta"
)

// Registry maps verbs and aliases to command definitions. The verb set is
// closed: anything it cannot resolve is an unknown command.
type Registry struct {
	commands map[string]*Command
	ordered  []*Command
	aliases  map[string]string
}

// NewRegistry creates a Registry from the given commands.
//
// Precondition: no two commands may share a name or alias.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]*Command, len(cmds)),
		aliases:  make(map[string]string),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if _, exists := r.commands[cmd.Name]; exists {
			return nil, fmt.Errorf("duplicate command name: %q", cmd.Name)
		}
		if _, exists := r.aliases[cmd.Name]; exists {
			return nil, fmt.Errorf("command name %q conflicts with an existing alias", cmd.Name)
		}
		r.commands[cmd.Name] = cmd
		r.ordered = append(r.ordered, cmd)

		for _, alias := range cmd.Aliases {
			if _, exists := r.commands[alias]; exists {
				return nil, fmt.Errorf("alias %q conflicts with a command name", alias)
			}
			if existing, exists := r.aliases[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, cmd.Name)
			}
			r.aliases[alias] = cmd.Name
		}
	}
	return r, nil
}

// Resolve looks a verb up by name or alias.
//
// Postcondition: Returns (command, true) if the verb is in the closed set.
func (r *Registry) Resolve(verb string) (*Command, bool) {
	if cmd, ok := r.commands[verb]; ok {
		return cmd, true
	}
	if canonical, ok := r.aliases[verb]; ok {
		return r.commands[canonical], true
	}
	return nil, false
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.ordered...)
}
