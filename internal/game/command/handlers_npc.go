package command

import (
	"fmt"
	"strings"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/session"
)

func handleTalk(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Talk to whom?")
	}
	c := s.Character

	m, ok := BestMatch(in.Raw, r.npcCandidates(c.RoomID()))
	if !ok {
		return warn(c.Name, fmt.Sprintf("There is nobody called %q here.", in.Raw))
	}
	npc, _ := r.deps.Content.NPC(m.Candidate.ID)
	if npc.Hostile {
		return warn(c.Name, fmt.Sprintf("%s snarls at you and refuses to talk.", npc.Name))
	}

	evs := echoMatch(c.Name, m)
	if npc.Dialogue.Greeting != "" {
		evs = append(evs, event.ToCharacter(c.Name, event.KindNormal,
			fmt.Sprintf("%s says: %s", npc.Name, npc.Dialogue.Greeting)))
	}

	evs = append(evs, r.deliverCarriedItems(c, npc)...)
	evs = append(evs, r.questDialogue(c, npc)...)

	// Offer whatever this NPC has that the character qualifies for, numbered
	// so 'accept 1' works until the next unrelated command.
	offered := r.deps.Quests.OfferedBy(c, npc.ID)
	if len(offered) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "%s has work for you:", npc.Name)
		ids := make([]string, 0, len(offered))
		for i, q := range offered {
			ids = append(ids, q.ID)
			fmt.Fprintf(&b, "\n  %d. %s", i+1, q.Name)
			if q.Dialogue.Offer != "" {
				fmt.Fprintf(&b, " - %s", q.Dialogue.Offer)
			}
		}
		b.WriteString("\nUse 'accept <number>' to take a quest.")
		s.SetContext(session.CtxOfferedQuests, ids, "accept", "ask")
		evs = append(evs, event.ToCharacter(c.Name, event.KindNormal, b.String()))
	}

	if len(evs) == 0 {
		evs = append(evs, event.ToCharacter(c.Name, event.KindNormal,
			fmt.Sprintf("%s has nothing to say.", npc.Name)))
	}
	return evs
}

// deliverCarriedItems advances deliver objectives whose recipient is this
// NPC, consuming one carried target item per satisfied unit.
func (r *Router) deliverCarriedItems(c *character.Character, npc *content.NPC) []event.Event {
	var evs []event.Event
	saved := false
	for _, aq := range c.ActiveQuests {
		q, ok := r.deps.Content.Quest(aq.QuestID)
		if !ok || q.TurnInNPCID() != npc.ID {
			continue
		}
		for i := range aq.Objectives {
			obj := &aq.Objectives[i]
			if obj.Type != content.ObjectiveDeliver || obj.Satisfied() {
				continue
			}
			for !obj.Satisfied() && r.deps.Inventory.Has(c, obj.Target, 1) {
				if err := r.deps.Inventory.Remove(c, obj.Target, 1); err != nil {
					break
				}
				obj.Current++
				saved = true
				evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess,
					fmt.Sprintf("You deliver %s to %s.", r.itemName(obj.Target), npc.Name)))
			}
		}
	}
	if saved {
		r.save(c)
	}
	return evs
}

// questDialogue speaks the progress or completion line for active quests
// tied to this NPC.
func (r *Router) questDialogue(c *character.Character, npc *content.NPC) []event.Event {
	var evs []event.Event
	for _, aq := range c.ActiveQuests {
		q, ok := r.deps.Content.Quest(aq.QuestID)
		if !ok || q.TurnInNPCID() != npc.ID {
			continue
		}
		if aq.Complete() {
			line := q.Dialogue.Complete
			if line == "" {
				line = "You have done what I asked."
			}
			evs = append(evs, event.ToCharacter(c.Name, event.KindNormal,
				fmt.Sprintf("%s says: %s", npc.Name, line)))
			evs = append(evs, event.ToCharacter(c.Name, event.KindNormal,
				fmt.Sprintf("(You can turn in %q.)", q.Name)))
		} else if q.Dialogue.Progress != "" {
			evs = append(evs, event.ToCharacter(c.Name, event.KindNormal,
				fmt.Sprintf("%s says: %s", npc.Name, q.Dialogue.Progress)))
		}
	}
	return evs
}

func handleAsk(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character

	aboutAt := -1
	for i, a := range in.Args {
		if strings.EqualFold(a, "about") {
			aboutAt = i
			break
		}
	}
	if aboutAt < 1 || aboutAt == len(in.Args)-1 {
		return warn(c.Name, "Ask whom about what? Try 'ask <npc> about <topic>'.")
	}
	npcQuery := strings.Join(in.Args[:aboutAt], " ")
	topic := strings.Join(in.Args[aboutAt+1:], " ")

	m, ok := BestMatch(npcQuery, r.npcCandidates(c.RoomID()))
	if !ok {
		return warn(c.Name, fmt.Sprintf("There is nobody called %q here.", npcQuery))
	}
	npc, _ := r.deps.Content.NPC(m.Candidate.ID)
	if npc.Hostile {
		return warn(c.Name, fmt.Sprintf("%s snarls at you and refuses to talk.", npc.Name))
	}

	evs := echoMatch(c.Name, m)
	reply, known := npc.ResponseFor(topic)
	if !known {
		return append(evs, event.ToCharacter(c.Name, event.KindNormal,
			fmt.Sprintf("%s shrugs. They know nothing about that.", npc.Name)))
	}
	return append(evs, event.ToCharacter(c.Name, event.KindNormal,
		fmt.Sprintf("%s says: %s", npc.Name, reply)))
}

func handleBind(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character
	room, ok := r.deps.Content.Room(c.RoomID())
	if !ok {
		return warn(c.Name, "There is nothing to bind to here.")
	}

	for _, npcID := range room.NPCs {
		npc, found := r.deps.Content.NPC(npcID)
		if !found || !npc.HomestoneBinder {
			continue
		}
		loc := c.Location()
		c.Homestone = &loc
		r.save(c)
		return []event.Event{event.ToCharacter(c.Name, event.KindSuccess,
			fmt.Sprintf("%s binds your homestone. You will return here if you fall.", npc.Name))}
	}
	return warn(c.Name, "Nobody here can bind your homestone.")
}
