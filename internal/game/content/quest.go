package content

import (
	"fmt"
)

// Quest objective type constants.
const (
	ObjectiveKill    = "kill"
	ObjectiveCollect = "collect"
	ObjectiveVisit   = "visit"
	ObjectiveDeliver = "deliver"
)

// validObjectiveTypes is the closed set of objective types.
var validObjectiveTypes = map[string]bool{
	ObjectiveKill:    true,
	ObjectiveCollect: true,
	ObjectiveVisit:   true,
	ObjectiveDeliver: true,
}

// Objective is one typed goal within a quest.
type Objective struct {
	Type string `yaml:"type"`
	// Target is the entity id the objective counts: an enemy id for kill,
	// item id for collect/deliver, room id for visit.
	Target string `yaml:"target"`
	// Quantity is the amount required; defaults to 1 when absent.
	Quantity int `yaml:"quantity"`
	// GivenByQuestGiver marks collect targets handed out on accept.
	GivenByQuestGiver bool `yaml:"given_by_quest_giver"`
}

// QuestRewards are granted on turn-in.
type QuestRewards struct {
	Experience int      `yaml:"experience"`
	Gold       int      `yaml:"gold"`
	Items      []string `yaml:"items"`
}

// QuestDialogue holds the giver's speech for each quest stage.
type QuestDialogue struct {
	Offer    string `yaml:"offer"`
	Progress string `yaml:"progress"`
	Complete string `yaml:"complete"`
}

// QuestPrereqs gate quest acceptance.
type QuestPrereqs struct {
	// Quests lists quest ids that must be completed first.
	Quests []string `yaml:"quests"`
	// Items lists item ids that must be present in inventory.
	Items []string `yaml:"items"`
}

// Quest is an immutable quest template. ID is assigned by the loader from
// the file base name.
type Quest struct {
	ID          string `yaml:"-"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// GiverNPC offers the quest.
	GiverNPC string `yaml:"giver_npc"`
	// TurnInNPC accepts completion; empty means the giver.
	TurnInNPC string `yaml:"turn_in_npc"`
	// Level is the minimum character level.
	Level      int           `yaml:"level"`
	Objectives []Objective   `yaml:"objectives"`
	Rewards    QuestRewards  `yaml:"rewards"`
	Dialogue   QuestDialogue `yaml:"dialogue"`
	Prereqs    QuestPrereqs  `yaml:"prereqs"`
	Repeatable bool          `yaml:"repeatable"`
}

// TurnInNPCID returns the NPC that accepts completion, defaulting to the giver.
//
// Postcondition: Returns a non-empty id for a validated quest.
func (q *Quest) TurnInNPCID() string {
	if q.TurnInNPC != "" {
		return q.TurnInNPC
	}
	return q.GiverNPC
}

// Validate checks quest template invariants.
//
// Precondition: q must not be nil and must have ID assigned.
// Postcondition: Returns nil iff the template is well formed; every objective
// has a known type, a target, and quantity >= 1 after defaulting.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quest: id must not be empty")
	}
	if q.Name == "" {
		return fmt.Errorf("quest %q: name must not be empty", q.ID)
	}
	if q.GiverNPC == "" {
		return fmt.Errorf("quest %q: giver_npc must not be empty", q.ID)
	}
	if q.Level < 0 {
		return fmt.Errorf("quest %q: level must be >= 0", q.ID)
	}
	if len(q.Objectives) == 0 {
		return fmt.Errorf("quest %q: must define at least one objective", q.ID)
	}
	for i := range q.Objectives {
		obj := &q.Objectives[i]
		if !validObjectiveTypes[obj.Type] {
			return fmt.Errorf("quest %q: objective[%d] type must be one of [kill, collect, visit, deliver], got %q", q.ID, i, obj.Type)
		}
		if obj.Target == "" {
			return fmt.Errorf("quest %q: objective[%d] target must not be empty", q.ID, i)
		}
		if obj.Quantity == 0 {
			obj.Quantity = 1
		}
		if obj.Quantity < 1 {
			return fmt.Errorf("quest %q: objective[%d] quantity must be >= 1", q.ID, i)
		}
		if obj.GivenByQuestGiver && obj.Type != ObjectiveCollect {
			return fmt.Errorf("quest %q: objective[%d] given_by_quest_giver only applies to collect objectives", q.ID, i)
		}
	}
	if q.Rewards.Experience < 0 || q.Rewards.Gold < 0 {
		return fmt.Errorf("quest %q: rewards must be >= 0", q.ID)
	}
	return nil
}
