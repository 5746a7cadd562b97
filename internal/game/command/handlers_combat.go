package command

import (
	"errors"
	"fmt"

	"github.com/thornvale/mud/internal/game/combat"
	"github.com/thornvale/mud/internal/game/event"
	"github.com/thornvale/mud/internal/game/session"
)

func handleAttack(r *Router, s *session.Session, in Input) []event.Event {
	if len(in.Args) == 0 {
		return warn(s.Name(), "Attack what?")
	}
	c := s.Character

	m, ok := BestMatch(in.Raw, r.enemyCandidates(s))
	if !ok {
		return warn(c.Name, fmt.Sprintf("There is no %q here to fight.", in.Raw))
	}
	inst, found := r.deps.World.Enemies().Get(m.Candidate.ID)
	if !found {
		return warn(c.Name, fmt.Sprintf("There is no %q here to fight.", in.Raw))
	}

	evs := echoMatch(c.Name, m)
	combatEvs, err := r.deps.Combat.Attack(c, inst, in.Now)
	if err != nil {
		switch {
		case errors.Is(err, combat.ErrTargetDead):
			return warn(c.Name, fmt.Sprintf("The %s is already dead.", inst.Name))
		case errors.Is(err, combat.ErrAlreadyInCombat):
			return warn(c.Name, "You are already fighting!")
		default:
			return warn(c.Name, "You can't attack that.")
		}
	}
	r.save(c)
	return append(evs, combatEvs...)
}

func handleFlee(r *Router, s *session.Session, in Input) []event.Event {
	c := s.Character

	fled, evs, err := r.deps.Combat.Flee(c, in.Now)
	if err != nil {
		if errors.Is(err, combat.ErrNotInCombat) {
			return warn(c.Name, "You are not in combat.")
		}
		return warn(c.Name, "You can't flee right now.")
	}
	if fled {
		evs = append(evs, r.lookAround(s)...)
	}
	return evs
}
