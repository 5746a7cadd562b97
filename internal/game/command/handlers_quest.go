package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/quest"
	"github.com/thornvale/mud/internal/game/session"
)

func handleQuest(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return r.listQuests(s)
	}
	switch strings.ToLower(in.Args[0]) {
	case "list":
		return r.listQuests(s)
	case "info":
		if len(in.Args) < 2 {
			return warn(s.Name(), "Quest info on what? Try 'quest info <name>'.")
		}
		return r.questInfo(s, strings.Join(in.Args[1:], " "))
	case "complete":
		if len(in.Args) < 2 {
			return warn(s.Name(), "Complete which quest? Try 'quest complete <name>'.")
		}
		return r.turnInQuest(s, strings.Join(in.Args[1:], " "))
	default:
		return r.questInfo(s, in.Raw)
	}
}

// listQuests renders the quest log and numbers the entries so 'abandon 2'
// works until the next unrelated command.
func (r *Router) listQuests(s *session.Session) []event.Event {
	c := s.Character
	if len(c.ActiveQuests) == 0 {
		return []event.Event{event.ToCharacter(c.Name, event.KindNormal, "You have no active quests.")}
	}

	var b strings.Builder
	b.WriteString("Active quests:")
	ids := make([]string, 0, len(c.ActiveQuests))
	for i, aq := range c.ActiveQuests {
		ids = append(ids, aq.QuestID)
		name := aq.QuestID
		if q, ok := r.deps.Content.Quest(aq.QuestID); ok {
			name = q.Name
		}
		status := ""
		if aq.Complete() {
			status = " (complete)"
		}
		fmt.Fprintf(&b, "\n  %d. %s%s", i+1, name, status)
		for _, obj := range aq.Objectives {
			fmt.Fprintf(&b, "\n     %s %s: %d/%d", obj.Type, r.objectiveTargetName(obj), obj.Current, obj.Quantity)
		}
	}
	s.SetContext(session.CtxActiveQuestsNumbered, ids, "abandon", "quest")
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, b.String())}
}

func (r *Router) questInfo(s *session.Session, ref string) []event.Event {
	c := s.Character
	aq, ok := r.resolveActiveQuest(s, ref)
	if !ok {
		return warn(c.Name, fmt.Sprintf("You have no active quest matching %q.", ref))
	}
	q, found := r.deps.Content.Quest(aq.QuestID)
	if !found {
		return warn(c.Name, "That quest no longer exists.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s", q.Name, q.Description)
	for _, obj := range aq.Objectives {
		fmt.Fprintf(&b, "\n  %s %s: %d/%d", obj.Type, r.objectiveTargetName(obj), obj.Current, obj.Quantity)
	}
	if turnIn, ok := r.deps.Content.NPC(q.TurnInNPCID()); ok {
		fmt.Fprintf(&b, "\nReturn to %s when finished.", turnIn.Name)
	}
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal, b.String())}
}

func handleAccept(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Accept what? Talk to a quest giver first.")
	}
	c := s.Character

	questID, ok := r.resolveOfferedQuest(s, in.Raw)
	if !ok {
		return warn(c.Name, fmt.Sprintf("Nobody here is offering %q.", in.Raw))
	}
	q, found := r.deps.Content.Quest(questID)
	if !found {
		return warn(c.Name, "That quest no longer exists.")
	}
	if !r.npcInRoom(c.RoomID(), q.GiverNPC) {
		return warn(c.Name, "The quest giver isn't here.")
	}

	if err := r.deps.Quests.Accept(c, questID); err != nil {
		switch {
		case errors.Is(err, quest.ErrAlreadyActive):
			return warn(c.Name, fmt.Sprintf("You already accepted %q.", q.Name))
		case errors.Is(err, quest.ErrAlreadyCompleted):
			return warn(c.Name, fmt.Sprintf("You already finished %q.", q.Name))
		case errors.Is(err, quest.ErrRequirementsUnmet):
			return warn(c.Name, fmt.Sprintf("You don't meet the requirements for %q.", q.Name))
		default:
			return warn(c.Name, fmt.Sprintf("You can't accept %q right now.", q.Name))
		}
	}
	r.save(c)
	return []event.Event{event.ToCharacter(c.Name, event.KindSuccess,
		fmt.Sprintf("Quest accepted: %s.", q.Name))}
}

func handleAbandon(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Abandon which quest? Try 'quest' to list them.")
	}
	c := s.Character

	aq, ok := r.resolveActiveQuest(s, in.Raw)
	if !ok {
		return warn(c.Name, fmt.Sprintf("You have no active quest matching %q.", in.Raw))
	}
	name := aq.QuestID
	if q, found := r.deps.Content.Quest(aq.QuestID); found {
		name = q.Name
	}

	if err := r.deps.Quests.Abandon(c, aq.QuestID); err != nil {
		return warn(c.Name, fmt.Sprintf("You can't abandon %q.", name))
	}
	r.save(c)
	return []event.Event{event.ToCharacter(c.Name, event.KindNormal,
		fmt.Sprintf("Quest abandoned: %s.", name))}
}

func handleTurnIn(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 || !strings.EqualFold(in.Args[0], "in") {
		return warn(s.Name(), "Try 'turn in <quest>'.")
	}
	if len(in.Args) < 2 {
		return warn(s.Name(), "Turn in which quest? Try 'turn in <quest>'.")
	}
	return r.turnInQuest(s, strings.Join(in.Args[1:], " "))
}

// turnInQuest completes an active quest at its turn-in NPC. Shared by
// 'turn in <quest>' and 'quest complete <quest>'.
func (r *Router) turnInQuest(s *session.Session, ref string) []event.Event {
	c := s.Character
	aq, ok := r.resolveActiveQuest(s, ref)
	if !ok {
		return warn(c.Name, fmt.Sprintf("You have no active quest matching %q.", ref))
	}
	q, found := r.deps.Content.Quest(aq.QuestID)
	if !found {
		return warn(c.Name, "That quest no longer exists.")
	}

	npcID := q.TurnInNPCID()
	if !r.npcInRoom(c.RoomID(), npcID) {
		name := npcID
		if npc, ok := r.deps.Content.NPC(npcID); ok {
			name = npc.Name
		}
		return warn(c.Name, fmt.Sprintf("%s isn't here.", name))
	}

	res, err := r.deps.Quests.TurnIn(c, aq.QuestID, npcID)
	if err != nil {
		switch {
		case errors.Is(err, quest.ErrObjectivesIncomplete):
			return warn(c.Name, fmt.Sprintf("You haven't finished %q yet.", q.Name))
		default:
			return warn(c.Name, fmt.Sprintf("You can't turn in %q right now.", q.Name))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Quest complete: %s!", res.Quest.Name)
	if res.Experience > 0 {
		fmt.Fprintf(&b, "\nYou gain %d experience.", res.Experience)
	}
	if res.Gold > 0 {
		fmt.Fprintf(&b, "\nYou receive %d gold.", res.Gold)
	}
	for _, itemID := range res.Items {
		fmt.Fprintf(&b, "\nYou receive %s.", r.itemName(itemID))
	}
	evs := []event.Event{event.ToCharacter(c.Name, event.KindSuccess, b.String())}
	for i := 0; i < res.LevelsGained; i++ {
		evs = append(evs, event.ToCharacter(c.Name, event.KindSuccess,
			fmt.Sprintf("You are now level %d!", c.Level-res.LevelsGained+i+1)))
	}
	r.save(c)
	return evs
}

// resolveOfferedQuest maps a number from the last offer listing, or a fuzzy
// name across everything offered by NPCs in the room, to a quest id.
func (r *Router) resolveOfferedQuest(s *session.Session, ref string) (string, bool) {
	offered := s.ContextValues(session.CtxOfferedQuests)
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		if n >= 1 && n <= len(offered) {
			return offered[n-1], true
		}
		return "", false
	}

	var cands []Candidate
	seen := make(map[string]bool)
	addQuest := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		if q, ok := r.deps.Content.Quest(id); ok {
			cands = append(cands, Candidate{ID: id, Name: q.Name})
		}
	}
	for _, id := range offered {
		addQuest(id)
	}
	if room, ok := r.deps.Content.Room(s.Character.RoomID()); ok {
		for _, npcID := range room.NPCs {
			for _, q := range r.deps.Quests.OfferedBy(s.Character, npcID) {
				addQuest(q.ID)
			}
		}
	}
	m, ok := BestMatch(ref, cands)
	if !ok {
		return "", false
	}
	return m.Candidate.ID, true
}

// resolveActiveQuest maps a number from the last quest listing, or a fuzzy
// name over the quest log, to an active quest entry.
func (r *Router) resolveActiveQuest(s *session.Session, ref string) (*character.ActiveQuest, bool) {
	c := s.Character
	if n, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		numbered := s.ContextValues(session.CtxActiveQuestsNumbered)
		if n >= 1 && n <= len(numbered) {
			return c.ActiveQuest(numbered[n-1])
		}
		return nil, false
	}

	var cands []Candidate
	for _, aq := range c.ActiveQuests {
		name := aq.QuestID
		if q, ok := r.deps.Content.Quest(aq.QuestID); ok {
			name = q.Name
		}
		cands = append(cands, Candidate{ID: aq.QuestID, Name: name})
	}
	m, ok := BestMatch(ref, cands)
	if !ok {
		return nil, false
	}
	return c.ActiveQuest(m.Candidate.ID)
}

// npcInRoom reports whether the NPC template is placed in the room.
func (r *Router) npcInRoom(roomID, npcID string) bool {
	room, ok := r.deps.Content.Room(roomID)
	if !ok {
		return false
	}
	for _, id := range room.NPCs {
		if id == npcID {
			return true
		}
	}
	return false
}

// objectiveTargetName resolves an objective target to a display name.
func (r *Router) objectiveTargetName(obj character.ObjectiveProgress) string {
	switch obj.Type {
	case content.ObjectiveCollect, content.ObjectiveDeliver:
		return r.itemName(obj.Target)
	case content.ObjectiveKill:
		if tmpl, ok := r.deps.Content.Enemy(obj.Target); ok {
			return tmpl.Name
		}
	case content.ObjectiveVisit:
		if room, ok := r.deps.Content.Room(obj.Target); ok {
			return room.Name
		}
	}
	return obj.Target
}
