package command

import (
	"fmt"
	"strings"

	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/session"
)

func handleHelp(r *Router, s *session.Session, in Input) []event.Event {
	name := s.Name()

	if len(in.Args) > 0 {
		verb := strings.ToLower(in.Args[0])
		cmd, ok := r.registry.Resolve(verb)
		if !ok {
			return warn(name, fmt.Sprintf("No such command %q.", verb))
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s - %s", cmd.Name, cmd.Help)
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, "\nAliases: %s", strings.Join(cmd.Aliases, ", "))
		}
		return []event.Event{event.ToCharacter(name, event.KindNormal, b.String())}
	}

	var b strings.Builder
	b.WriteString("Commands:")
	lastCategory := ""
	for _, cmd := range r.registry.Commands() {
		if cmd.Category != lastCategory {
			fmt.Fprintf(&b, "\n%s:", cmd.Category)
			lastCategory = cmd.Category
		}
		fmt.Fprintf(&b, "\n  %-10s %s", cmd.Name, cmd.Help)
	}
	return []event.Event{event.ToCharacter(name, event.KindNormal, b.String())}
}

func handleStats(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	derived := r.deps.Inventory.DerivedStats(c)
	maxHealth := r.deps.Inventory.EffectiveMaxHealth(c)

	var b strings.Builder
	fmt.Fprintf(&b, "%s, level %d", c.Name, c.Level)
	fmt.Fprintf(&b, "\nExperience: %d", c.Experience)
	fmt.Fprintf(&b, "\nHealth: %d/%d", c.Health, maxHealth)
	fmt.Fprintf(&b, "\nGold: %d", c.Gold)
	fmt.Fprintf(&b, "\nDamage: %d  Defense: %d  Speed: %d", derived.Damage, derived.Defense, derived.Speed)
	fmt.Fprintf(&b, "\nQuests completed: %d", len(c.CompletedQuests))
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, b.String())}
}

func handleHealth(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal,
		fmt.Sprintf("Health: %d/%d", c.Health, r.deps.Inventory.EffectiveMaxHealth(c)))}
}

func handleSave(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	r.deps.Quests.Reconcile(c)
	if err := r.deps.Characters.Save(c); err != nil {
		return warn(c.Name, "Saving failed. Try again in a moment.")
	}
	return []event.Event{event.ToCharacter(c.Name, event.KindSuccess, "Saved.")}
}

func handleQuit(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	r.save(c)
	evs := []event.Event{
		event.ToCharacter(c.Name, event.KindSystem, "Goodbye."),
		event.ToRoomExcept(c.RoomID(), c.Name, event.KindNormal, fmt.Sprintf("%s fades away.", c.Name)),
	}
	if r.deps.OnQuit != nil {
		r.deps.OnQuit(s)
	}
	return evs
}

func handlePassword(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	if len(in.Args) != 1 {
		return warn(c.Name, "Try 'password <new password>'.")
	}
	newPassword := in.Args[0]
	if len(newPassword) < r.deps.Cfg.PasswordMinLength {
		return warn(c.Name, fmt.Sprintf("Passwords must be at least %d characters.", r.deps.Cfg.PasswordMinLength))
	}
	if err := r.deps.Characters.SetPassword(c, newPassword); err != nil {
		return warn(c.Name, "Changing your password failed. Try again in a moment.")
	}
	return []event.Event{event.ToCharacter(c.Name, event.KindSuccess, "Password changed.")}
}
