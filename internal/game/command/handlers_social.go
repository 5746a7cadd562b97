package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/session"
)

func handleSay(r *Router, s *session.Session, in Input) []event.Event {
	if in.Raw == "" {
		return warn(s.Name(), "Say what?")
	}
	c := s.Character
	return []event.Event{
		event.ToCharacter(c.Name, event.KindChat, fmt.Sprintf("You say: %s", in.Raw)),
		event.ToRoomExcept(c.RoomID(), c.Name, event.KindChat, fmt.Sprintf("%s says: %s", c.Name, in.Raw)),
	}
}

func handleEmote(r *Router, s *session.Session, in Input) []event.Event {
	if in.Raw == "" {
		return warn(s.Name(), "Emote what?")
	}
	c := s.Character
	return []event.Event{
		event.ToRoom(c.RoomID(), event.KindChat, fmt.Sprintf("%s %s", c.Name, in.Raw)),
	}
}

func handleTell(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) < 2 {
		return warn(s.Name(), "Tell whom what? Try 'tell <player> <message>'.")
	}
	c := s.Character

	targetName, err := character.CanonicalName(in.Args[0], r.deps.Cfg.NameMinLength, r.deps.Cfg.NameMaxLength)
	if err != nil {
		return warn(c.Name, fmt.Sprintf("There is no player named %q.", in.Args[0]))
	}
	target, ok := r.deps.Sessions.FindByName(targetName)
	if !ok || !target.Playing() {
		return warn(c.Name, fmt.Sprintf("%s is not online.", targetName))
	}
	if targetName == c.Name {
		return warn(c.Name, "You mutter to yourself.")
	}

	msg := strings.TrimSpace(strings.TrimPrefix(in.Raw, in.Args[0]))
	target.LastWhisperFrom = c.Name
	return []event.Event{
		event.ToCharacter(c.Name, event.KindWhisper, fmt.Sprintf("You tell %s: %s", targetName, msg)),
		event.ToCharacter(targetName, event.KindWhisper, fmt.Sprintf("%s tells you: %s", c.Name, msg)),
	}
}

func handleReply(r *Router, s *session.Session, in Input) []event.Event {
	if in.Raw == "" {
		return warn(s.Name(), "Reply what?")
	}
	c := s.Character
	if s.LastWhisperFrom == "" {
		return warn(c.Name, "Nobody has whispered to you.")
	}
	target, ok := r.deps.Sessions.FindByName(s.LastWhisperFrom)
	if !ok || !target.Playing() {
		return warn(c.Name, fmt.Sprintf("%s is no longer online.", s.LastWhisperFrom))
	}

	target.LastWhisperFrom = c.Name
	return []event.Event{
		event.ToCharacter(c.Name, event.KindWhisper, fmt.Sprintf("You tell %s: %s", target.Name(), in.Raw)),
		event.ToCharacter(target.Name(), event.KindWhisper, fmt.Sprintf("%s tells you: %s", c.Name, in.Raw)),
	}
}

func handleWho(r *Router, s *session.Session, in Input) []event.Event {
	names := r.deps.Sessions.PlayingNames()
	sort.Strings(names)
	var b strings.Builder
	fmt.Fprintf(&b, "Online (%d):", len(names))
	for _, n := range names {
		fmt.Fprintf(&b, "\n  %s", n)
	}
	return []event.Event{event.ToCharacter(s.Name(), event.KindNormal, b.String())}
}

func handleFriends(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	if len(in.Args) == 0 {
		return r.listFriends(c)
	}

	sub := strings.ToLower(in.Args[0])
	switch sub {
	case "add", "remove", "note":
	default:
		return warn(c.Name, "Try 'friends', 'friends add <name>', 'friends remove <name>', or 'friends note <name> <text>'.")
	}
	if len(in.Args) < 2 {
		return warn(c.Name, fmt.Sprintf("friends %s whom?", sub))
	}

	name, err := character.CanonicalName(in.Args[1], r.deps.Cfg.NameMinLength, r.deps.Cfg.NameMaxLength)
	if err != nil {
		return warn(c.Name, fmt.Sprintf("%q is not a valid character name.", in.Args[1]))
	}

	switch sub {
	case "add":
		for _, f := range c.Friends {
			if f == name {
				return warn(c.Name, fmt.Sprintf("%s is already on your friends list.", name))
			}
		}
		c.Friends = append(c.Friends, name)
		r.save(c)
		return []event.Event{event.ToCharacter(c.Name, event.KindSuccess, fmt.Sprintf("%s added to your friends list.", name))}

	case "remove":
		for i, f := range c.Friends {
			if f == name {
				c.Friends = append(c.Friends[:i], c.Friends[i+1:]...)
				delete(c.FriendNotes, name)
				r.save(c)
				return []event.Event{event.ToCharacter(c.Name, event.KindSuccess, fmt.Sprintf("%s removed from your friends list.", name))}
			}
		}
		return warn(c.Name, fmt.Sprintf("%s is not on your friends list.", name))

	default: // note
		note := strings.TrimSpace(strings.Join(in.Args[2:], " "))
		if note == "" {
			return warn(c.Name, "Note what?")
		}
		if c.FriendNotes == nil {
			c.FriendNotes = make(map[string]string)
		}
		c.FriendNotes[name] = note
		r.save(c)
		return []event.Event{event.ToCharacter(c.Name, event.KindSuccess, fmt.Sprintf("Noted for %s.", name))}
	}
}

func (r *Router) listFriends(c *character.Character) []event.Event {
	if len(c.Friends) == 0 {
		return []event.Event{event.ToCharacter(c.Name, event.KindNormal, "Your friends list is empty.")}
	}
	var b strings.Builder
	b.WriteString("Friends:")
	for _, name := range c.Friends {
		status := "offline"
		if t, ok := r.deps.Sessions.FindByName(name); ok && t.Playing() {
			status = "online"
		}
		fmt.Fprintf(&b, "\n  %s (%s)", name, status)
		if note, ok := c.FriendNotes[name]; ok {
			fmt.Fprintf(&b, " - %s", note)
		}
	}
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, b.String())}
}
