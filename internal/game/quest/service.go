// Package quest implements quest acceptance, passive progress tracking,
// abandonment, and turn-in against the loaded quest templates.
package quest

import (
	"errors"
	"fmt"

	"github.com/thornvale/mud/internal/game/character"
	"github.com/thornvale/mud/internal/game/content"
	"github.com/thornvale/mud/internal/game/inventory"
)

var (
	// ErrUnknownQuest indicates a quest id with no template.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrAlreadyActive indicates the quest is already in the active log.
	ErrAlreadyActive = errors.New("quest already accepted")
	// ErrAlreadyCompleted indicates a non-repeatable quest done before.
	ErrAlreadyCompleted = errors.New("quest already completed")
	// ErrRequirementsUnmet indicates a failed level, quest, or item prereq.
	ErrRequirementsUnmet = errors.New("quest requirements not met")
	// ErrNotActive indicates an operation on a quest not in the active log.
	ErrNotActive = errors.New("quest is not active")
	// ErrObjectivesIncomplete indicates a turn-in before every objective is
	// satisfied.
	ErrObjectivesIncomplete = errors.New("quest objectives incomplete")
	// ErrWrongNPC indicates a turn-in at an NPC that does not accept it.
	ErrWrongNPC = errors.New("that is not who you report to")
)

// Service manages quest state on characters. Co-location with NPCs is the
// caller's concern; the service checks everything else.
type Service struct {
	content *content.Store
	inv     *inventory.Service
}

// NewService creates a quest service.
//
// Precondition: store and inv must be non-nil.
func NewService(store *content.Store, inv *inventory.Service) *Service {
	return &Service{content: store, inv: inv}
}

// CanAccept checks every acceptance precondition except giver co-location.
//
// Postcondition: Returns nil iff Accept would succeed right now.
func (s *Service) CanAccept(c *character.Character, questID string) error {
	q, ok := s.content.Quest(questID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuest, questID)
	}
	if _, active := c.ActiveQuest(questID); active {
		return fmt.Errorf("%w: %q", ErrAlreadyActive, questID)
	}
	if !q.Repeatable && c.HasCompleted(questID) {
		return fmt.Errorf("%w: %q", ErrAlreadyCompleted, questID)
	}
	if c.Level < q.Level {
		return fmt.Errorf("%w: requires level %d", ErrRequirementsUnmet, q.Level)
	}
	for _, pre := range q.Prereqs.Quests {
		if !c.HasCompleted(pre) {
			return fmt.Errorf("%w: complete %q first", ErrRequirementsUnmet, pre)
		}
	}
	for _, item := range q.Prereqs.Items {
		if c.InventoryCount(item) < 1 {
			return fmt.Errorf("%w: requires %q", ErrRequirementsUnmet, item)
		}
	}
	return nil
}

// OfferedBy returns the quests an NPC offers that the character could
// accept right now, in the NPC's declared order.
//
// Postcondition: Every returned quest passes CanAccept.
func (s *Service) OfferedBy(c *character.Character, npcID string) []*content.Quest {
	npc, ok := s.content.NPC(npcID)
	if !ok {
		return nil
	}
	var out []*content.Quest
	for _, questID := range npc.Quests {
		if s.CanAccept(c, questID) != nil {
			continue
		}
		if q, ok := s.content.Quest(questID); ok {
			out = append(out, q)
		}
	}
	return out
}

// Accept adds the quest to the active log with zeroed objectives, grants
// any giver-supplied starter items, and reconciles collect progress.
//
// Precondition: the caller has verified the character is co-located with
// the quest's giver NPC.
func (s *Service) Accept(c *character.Character, questID string) error {
	if err := s.CanAccept(c, questID); err != nil {
		return err
	}
	q, _ := s.content.Quest(questID)

	aq := &character.ActiveQuest{QuestID: questID}
	for _, obj := range q.Objectives {
		aq.Objectives = append(aq.Objectives, character.ObjectiveProgress{
			Type:              obj.Type,
			Target:            obj.Target,
			Quantity:          obj.Quantity,
			GivenByQuestGiver: obj.GivenByQuestGiver,
		})
	}
	c.ActiveQuests = append(c.ActiveQuests, aq)

	for _, obj := range q.Objectives {
		if obj.Type == content.ObjectiveCollect && obj.GivenByQuestGiver {
			if err := s.inv.Add(c, obj.Target, obj.Quantity); err != nil {
				// Starter items that do not fit are skipped; the player can
				// still collect them in the world.
				continue
			}
		}
	}
	s.Reconcile(c)
	return nil
}

// Abandon removes the quest from the active log and reclaims any starter
// items the giver handed out, up to the objective quantity.
//
// Postcondition: the quest is not active; completion is never recorded.
func (s *Service) Abandon(c *character.Character, questID string) error {
	aq, ok := c.ActiveQuest(questID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotActive, questID)
	}

	for _, obj := range aq.Objectives {
		if obj.Type != content.ObjectiveCollect || !obj.GivenByQuestGiver {
			continue
		}
		reclaim := obj.Quantity
		if have := c.InventoryCount(obj.Target); have < reclaim {
			reclaim = have
		}
		if reclaim > 0 {
			_ = s.inv.Remove(c, obj.Target, reclaim)
		}
	}

	for i, q := range c.ActiveQuests {
		if q.QuestID == questID {
			c.ActiveQuests = append(c.ActiveQuests[:i], c.ActiveQuests[i+1:]...)
			break
		}
	}
	return nil
}

// RecordProgress advances every matching objective across all active
// quests by amount, capped at the objective quantity. No quest completes
// automatically; reaching quantity only makes it eligible for turn-in.
//
// Precondition: amount >= 0.
func (s *Service) RecordProgress(c *character.Character, objectiveType, targetID string, amount int) {
	for _, aq := range c.ActiveQuests {
		for i := range aq.Objectives {
			obj := &aq.Objectives[i]
			if obj.Type != objectiveType || obj.Target != targetID {
				continue
			}
			obj.Current += amount
			if obj.Current > obj.Quantity {
				obj.Current = obj.Quantity
			}
		}
	}
}

// Reconcile synchronizes every collect objective with the live inventory:
// current becomes min(carried, quantity). Dropping tracked items lowers
// progress; picking them up raises it.
//
// Postcondition: Idempotent; a second call changes nothing.
func (s *Service) Reconcile(c *character.Character) {
	for _, aq := range c.ActiveQuests {
		for i := range aq.Objectives {
			obj := &aq.Objectives[i]
			if obj.Type != content.ObjectiveCollect {
				continue
			}
			have := c.InventoryCount(obj.Target)
			if have > obj.Quantity {
				have = obj.Quantity
			}
			obj.Current = have
		}
	}
}

// TurnInResult summarizes the rewards granted by a successful turn-in.
type TurnInResult struct {
	Quest        *content.Quest
	Experience   int
	Gold         int
	Items        []string
	LevelsGained int
}

// TurnIn completes an active quest at the given NPC. The operation is
// atomic: collect targets are consumed and rewards granted together, or
// nothing changes.
//
// Precondition: the caller has verified the character is co-located with
// npcID.
func (s *Service) TurnIn(c *character.Character, questID, npcID string) (*TurnInResult, error) {
	q, ok := s.content.Quest(questID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuest, questID)
	}
	aq, active := c.ActiveQuest(questID)
	if !active {
		return nil, fmt.Errorf("%w: %q", ErrNotActive, questID)
	}
	if q.TurnInNPCID() != npcID {
		return nil, fmt.Errorf("%w: see %q", ErrWrongNPC, q.TurnInNPCID())
	}
	if !aq.Complete() {
		return nil, fmt.Errorf("%w: %q", ErrObjectivesIncomplete, questID)
	}

	// Snapshot the inventory so reward-capacity failures roll back cleanly.
	saved := make([]character.InventoryEntry, len(c.Inventory))
	copy(saved, c.Inventory)

	for _, obj := range aq.Objectives {
		if obj.Type != content.ObjectiveCollect {
			continue
		}
		if err := s.inv.Remove(c, obj.Target, obj.Quantity); err != nil {
			c.Inventory = saved
			return nil, fmt.Errorf("consuming %q: %w", obj.Target, err)
		}
	}
	for _, itemID := range q.Rewards.Items {
		if err := s.inv.Add(c, itemID, 1); err != nil {
			c.Inventory = saved
			return nil, fmt.Errorf("granting reward %q: %w", itemID, err)
		}
	}

	c.Gold += q.Rewards.Gold
	levels := c.GrantExperience(q.Rewards.Experience)

	for i, active := range c.ActiveQuests {
		if active.QuestID == questID {
			c.ActiveQuests = append(c.ActiveQuests[:i], c.ActiveQuests[i+1:]...)
			break
		}
	}
	if !c.HasCompleted(questID) {
		c.CompletedQuests = append(c.CompletedQuests, questID)
	}
	s.Reconcile(c)

	return &TurnInResult{
		Quest:        q,
		Experience:   q.Rewards.Experience,
		Gold:         q.Rewards.Gold,
		Items:        append([]string(nil), q.Rewards.Items...),
		LevelsGained: levels,
	}, nil
}
